// Package cache holds a small generic TTL cache.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache maps keys to values that expire ttl after their last access.
type Cache[K comparable, V any] struct {
	items map[K]*item[V]
	ttl   time.Duration
	clock clockwork.Clock
	mutex sync.Mutex
}

// New creates a cache. A nil clock means the real clock.
func New[K comparable, V any](ttl time.Duration, clock clockwork.Clock) *Cache[K, V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache[K, V]{
		items: make(map[K]*item[V]),
		ttl:   ttl,
		clock: clock,
	}
}

// Get returns the value for key. Getting an item extends its TTL.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var zero V
	it, found := c.items[key]
	if !found {
		return zero, false
	}
	now := c.clock.Now()
	if now.After(it.expiresAt) {
		delete(c.items, key)
		return zero, false
	}
	it.expiresAt = now.Add(c.ttl)
	return it.value, true
}

// Set stores value under key.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &item[V]{value: value, expiresAt: c.clock.Now().Add(c.ttl)}
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[K]*item[V])
}

// Len reports the number of entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}
