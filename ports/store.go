package ports

import (
	"context"
	"time"
)

// EphemeralStore is a string-keyed store with per-key expiration. It is the
// single source of truth for nonce and token state; implementations must not
// cache entries outside the store itself.
type EphemeralStore interface {
	// SetWithTTL stores a value under key, replacing any previous value and
	// resetting the expiry.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value for key, or core.ErrNotFound if the key is absent
	// or expired.
	Get(ctx context.Context, key string) (string, error)

	// Take atomically reads and deletes the value for key, so that no two
	// callers can observe the same entry. Returns core.ErrNotFound if the key
	// is absent or expired.
	Take(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
