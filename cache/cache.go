package cache

import (
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt int64 // UnixNano, 0 means no expiration
}

func (it item[V]) expired(now int64) bool {
	return it.expiresAt != 0 && now > it.expiresAt
}

// Cache is a thread-safe, generic key/value cache with optional TTL.
// Expired items are dropped lazily on access and eagerly by Purge.
type Cache[K comparable, V any] struct {
	mu         sync.RWMutex
	items      map[K]item[V]
	defaultTTL time.Duration
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithDefaultTTL sets the Time-To-Live applied by Set. Zero means items
// never expire.
func WithDefaultTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.defaultTTL = ttl
	}
}

// New creates a Cache with the given options.
func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		items: make(map[K]item[V]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores value under key with the default TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL. A TTL of zero
// means the item never expires.
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	c.mu.Lock()
	c.items[key] = item[V]{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Get returns the value stored under key, and whether a live entry exists.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	if it.expired(time.Now().UnixNano()) {
		c.Delete(key)
		var zero V
		return zero, false
	}
	return it.value, true
}

// Delete removes the entry stored under key, if any.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len returns the number of entries, including not-yet-purged expired ones.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns the keys of all live entries.
func (c *Cache[K, V]) Keys() []K {
	now := time.Now().UnixNano()
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]K, 0, len(c.items))
	for k, it := range c.items {
		if !it.expired(now) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Purge removes all expired entries and returns how many were dropped.
func (c *Cache[K, V]) Purge() int {
	now := time.Now().UnixNano()
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for k, it := range c.items {
		if it.expired(now) {
			delete(c.items, k)
			dropped++
		}
	}
	return dropped
}
