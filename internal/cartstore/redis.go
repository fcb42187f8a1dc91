package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ticket-storefront/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps carts in Redis with a per-cart TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed cart store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*models.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return &cart, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, cart *models.Cart, ttl time.Duration) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cart: %w", err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, cartKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

func cartKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}
