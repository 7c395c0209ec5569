// Package routecache provides the bounded LRU+TTL cache that short-circuits
// repeated routing queries. The cache is a pure optimization layer: it lives
// in memory only and is rebuilt empty on restart.
package routecache

import (
	"container/list"
	"sync"
	"time"
)

// Defaults for the routing cache bounds.
const (
	DefaultMaxEntries = 1000
	DefaultTTL        = time.Hour
)

// Cache is a bounded, TTL-bound LRU map from normalized query to a cached
// value. Safe for concurrent use; only map mutation is locked, never the
// caller's compute step, so two concurrent misses computing the same key is
// an accepted last-write-wins race.
type Cache[V any] struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	lru        *list.List // front = most recently used
	maxEntries int
	ttl        time.Duration

	// now is swappable for TTL tests.
	now func() time.Time
}

type cacheEntry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
}

// New creates a cache with the given bounds. Non-positive arguments fall
// back to the defaults.
func New[V any](maxEntries int, ttl time.Duration) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{
		entries:    make(map[string]*list.Element),
		lru:        list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns the cached value for key if present and within TTL, marking
// it most recently used. Expiry is checked lazily here; an expired entry is
// evicted and reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	entry := el.Value.(*cacheEntry[V])
	if c.now().Sub(entry.insertedAt) > c.ttl {
		c.removeLocked(el)
		return zero, false
	}

	c.lru.MoveToFront(el)
	return entry.value, true
}

// Put stores a value, replacing any existing entry for key and evicting the
// least recently used entry once the size bound is exceeded.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry[V])
		entry.value = value
		entry.insertedAt = c.now()
		c.lru.MoveToFront(el)
		return
	}

	el := c.lru.PushFront(&cacheEntry[V]{key: key, value: value, insertedAt: c.now()})
	c.entries[key] = el

	for len(c.entries) > c.maxEntries {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
	}
}

// Len returns the number of live entries (expired entries not yet touched
// by Get still count).
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear empties the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

func (c *Cache[V]) removeLocked(el *list.Element) {
	entry := el.Value.(*cacheEntry[V])
	delete(c.entries, entry.key)
	c.lru.Remove(el)
}
