// Package cache provides a small in-process TTL cache used to avoid
// re-fetching weather and re-scoring risk for a region on every dashboard
// request. Entries expire lazily on read; there is no background sweeper.
package cache

import (
	"sync"
	"time"

	"droughtwatch/internal/types"
)

// TTLCache is a concurrency-safe map with per-entry expiry. The zero value
// is not usable; construct with New.
type TTLCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   types.Clock
	entries map[string]entry[V]
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a TTLCache with the given entry lifetime. A nil clock falls
// back to the real clock; tests inject a fake to control expiry.
func New[V any](ttl time.Duration, clock types.Clock) *TTLCache[V] {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &TTLCache[V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key and whether it was present and fresh.
// An expired entry is deleted on access and reported as a miss.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.clock.Now().After(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the cache's TTL, replacing any existing
// entry. A non-positive TTL disables caching entirely: Set becomes a no-op
// so every Get is a miss.
func (c *TTLCache[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

// Invalidate removes the entry for key if present.
func (c *TTLCache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of stored entries, expired ones included.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
