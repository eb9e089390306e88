// Package cache stores rendered graph artifacts keyed by content hash.
//
// Renders are cached under a key derived from the DOT text. [MemoryCache]
// backs the HTTP API, [FileCache] backs the CLI across runs and [NullCache]
// disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-slice store with optional expiry. Implementations are
// safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// RenderKey returns the cache key for dot rendered to format.
func RenderKey(format, dot string) string {
	return "render:" + format + ":" + Hash([]byte(dot))
}
