package cache

import (
	"context"
	"time"
)

// Store is the byte-level cache backend behind StatsCache.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the cached value and whether it was present and unexpired
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores a value with a TTL
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key
	Delete(ctx context.Context, key string) error

	// Close releases backend resources
	Close() error
}
