package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a fixed-capacity least-recently-used cache. It backs the pattern
// engine's compiled-matcher cache (keyed by pattern text) and each
// checker's decision cache (keyed by path).
type LRU[K comparable, V any] struct {
	inner *lru.Cache[K, V]
}

// NewLRU creates an LRU cache with the given capacity. Capacity must be
// positive.
func NewLRU[K comparable, V any](capacity int) (*LRU[K, V], error) {
	inner, err := lru.New[K, V](capacity)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{inner: inner}, nil
}

// Get returns the cached value for key, if present; accessing a key
// refreshes its recency.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	return c.inner.Get(key)
}

// Add inserts or updates key, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *LRU[K, V]) Add(key K, value V) {
	c.inner.Add(key, value)
}

// Remove deletes key if present; a no-op if absent.
func (c *LRU[K, V]) Remove(key K) {
	c.inner.Remove(key)
}

// Purge empties the cache, used when the owning pattern set or filesystem
// generation changes and every cached decision is invalidated at once.
func (c *LRU[K, V]) Purge() {
	c.inner.Purge()
}

// Len returns the number of entries currently cached.
func (c *LRU[K, V]) Len() int {
	return c.inner.Len()
}
