package cartstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ticket-storefront/internal/models"
)

// MemoryStore is an in-process cart store used in tests and single-node
// development setups.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory cart store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*models.Cart, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, models.ErrCartNotFound
	}

	var cart models.Cart
	if err := json.Unmarshal(entry.data, &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, cart *models.Cart, ttl time.Duration) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[key] = memoryEntry{data: data, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}
