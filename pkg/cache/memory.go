package cache

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryCache keeps up to a fixed number of entries in memory and evicts the
// oldest insertion when full.
type MemoryCache struct {
	mu      sync.Mutex
	max     int
	entries map[string]memoryEntry
	order   []string // insertion order, oldest first
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates a cache holding at most size entries (at least 1).
func NewMemoryCache(size int) *MemoryCache {
	return &MemoryCache{
		max:     max(size, 1),
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.remove(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{data: slices.Clone(data)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	for len(c.order) >= c.max {
		c.remove(c.order[0])
	}
	c.entries[key] = e
	c.order = append(c.order, key)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error { return nil }

func (c *MemoryCache) remove(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	if i := slices.Index(c.order, key); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

var _ Cache = (*MemoryCache)(nil)
