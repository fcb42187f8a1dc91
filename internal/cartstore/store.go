// Package cartstore holds draft carts between the selection screen and the
// checkout screen. The session carries only an opaque cart key; the cart
// itself lives in the store with a bounded lifetime, and the checkout side
// treats what it reads as read-only.
package cartstore

import (
	"context"
	"time"

	"ticket-storefront/internal/models"
)

// DefaultTTL is how long a handed-off cart stays retrievable.
const DefaultTTL = 15 * time.Minute

// Store persists draft carts across the selection-to-checkout handoff.
type Store interface {
	// Get returns the cart for key, or models.ErrCartNotFound.
	Get(ctx context.Context, key string) (*models.Cart, error)

	// Put stores the cart under key with the given lifetime.
	Put(ctx context.Context, key string, cart *models.Cart, ttl time.Duration) error

	// Delete removes the cart. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
