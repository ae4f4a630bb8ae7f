// Package cache provides a thread-safe LRU cache for compiled queries.
//
// The cache is used by the compiler when the WithCaching option is enabled.
// It avoids re-compiling the same query tree on every call, which matters
// when the same tree is decoded again for every request.
//
// # Example
//
//	c := cache.New[*compiler.Query](1024)
//	q, err := c.GetOrCompile(fingerprint, compile)
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Cache is a thread-safe LRU (Least Recently Used) cache keyed by string.
// Once the capacity is reached, the least recently accessed entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache[V any] struct {
	capacity int
	lru      *lru.Cache[string, V]
	group    singleflight.Group
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, a default of 256 is used.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = 256
	}
	l, err := lru.New[string, V](capacity)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &Cache[V]{
		capacity: capacity,
		lru:      l,
	}
}

// Get retrieves a value from the cache and marks it most recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Set inserts or replaces a value.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// GetOrCompile retrieves the value for key from cache, or calls compile()
// to create it, caches the result, and returns it.
// Concurrent callers for the same missing key share one compile call.
// Errors are not cached.
func (c *Cache[V]) GetOrCompile(key string, compile func() (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
		v, err := compile()
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

// Clear removes all entries from the cache.
func (c *Cache[V]) Clear() {
	c.lru.Purge()
}
