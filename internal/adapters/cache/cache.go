// Package cache provides the TTL-backed key-value store that carries
// idempotency flags and memoized results across process restarts.
package cache

import (
	"context"
	"time"
)

// Store is the single storage abstraction under both cache capabilities.
// Entries whose expiry has passed read as absent; implementations must give
// read-your-write visibility within one process.
type Store interface {
	// Get returns the value for key, reporting presence. An expired entry is
	// absent, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes value under key, expiring after ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
