package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TTL is a capacity-bounded token→value cache. Entries older than the
// configured time-to-live are misses even if capacity would allow keeping
// them; once full, the least recently used entry is evicted to make room.
// Eviction is silent and insertion never fails. Safe for concurrent use.
type TTL[V any] struct {
	lru *expirable.LRU[string, V]
}

// NewTTL creates a cache holding at most capacity entries for at most ttl.
func NewTTL[V any](capacity int, ttl time.Duration) *TTL[V] {
	return &TTL[V]{lru: expirable.NewLRU[string, V](capacity, nil, ttl)}
}

// Get returns the live entry for key, if any.
func (c *TTL[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Put inserts or replaces the entry for key, evicting as needed.
func (c *TTL[V]) Put(key string, value V) {
	c.lru.Add(key, value)
}

// Remove drops the entry for key and reports whether it was present.
func (c *TTL[V]) Remove(key string) bool {
	return c.lru.Remove(key)
}

// Len returns the number of entries currently held.
func (c *TTL[V]) Len() int {
	return c.lru.Len()
}
