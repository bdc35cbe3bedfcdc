// Package cache provides a small TTL + capacity bounded memoization store.
// Eviction under capacity pressure is strictly insertion-ordered: the entry
// inserted earliest goes first, regardless of how often it was read.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
}

// Cache is safe for concurrent readers and writers. The zero value is not
// usable; construct with New.
type Cache[V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // front = oldest inserted

	now func() time.Time // test hook
}

// New builds a cache holding at most maxEntries values for at most ttl each.
func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	return &Cache[V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// Get returns the cached value for key. An expired entry is discarded and
// reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if c.now().Sub(e.insertedAt) >= c.ttl {
		c.removeLocked(el)
		return zero, false
	}
	return e.value, true
}

// Put inserts or replaces the value for key. When the insert would exceed
// capacity, the earliest-inserted entry is evicted first.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}
	for c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.removeLocked(c.order.Front())
	}
	el := c.order.PushBack(&entry[V]{key: key, value: value, insertedAt: c.now()})
	c.entries[key] = el
}

// Len reports the current number of entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) removeLocked(el *list.Element) {
	if el == nil {
		return
	}
	e := el.Value.(*entry[V])
	delete(c.entries, e.key)
	c.order.Remove(el)
}
