package lexicon

import (
	"container/list"
	"sync"
)

// LRUCache is a thread-safe generic cache with least-recently-used eviction.
// A capacity of zero or less disables eviction entirely. The resolver uses
// one instance for resolved values; the type is exported because it is
// useful on its own.
type LRUCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[K]*list.Element
	onEvict  func(K, V)
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRUCache creates an LRU cache holding at most capacity items.
// Capacity zero or less means unbounded.
func NewLRUCache[K comparable, V any](capacity int) *LRUCache[K, V] {
	return &LRUCache[K, V]{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[K]*list.Element),
	}
}

// SetEvictCallback registers a callback invoked with each entry evicted by
// capacity pressure. It is not invoked by Remove or Clear.
func (c *LRUCache[K, V]) SetEvictCallback(fn func(K, V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Get returns the cached value and marks it most recently used.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*lruEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Put stores a value, replacing any existing entry for the key. When the
// cache is over capacity the least recently used entry is evicted.
func (c *LRUCache[K, V]) Put(key K, value V) {
	var (
		evictedKey K
		evictedVal V
		evicted    bool
	)

	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*lruEntry[K, V]).value = value
		c.mu.Unlock()
		return
	}
	c.items[key] = c.ll.PushFront(&lruEntry[K, V]{key: key, value: value})
	if c.capacity > 0 && c.ll.Len() > c.capacity {
		el := c.ll.Back()
		entry := el.Value.(*lruEntry[K, V])
		c.ll.Remove(el)
		delete(c.items, entry.key)
		evictedKey, evictedVal, evicted = entry.key, entry.value, true
	}
	onEvict := c.onEvict
	c.mu.Unlock()

	// Callback runs outside the lock so it may safely use the cache.
	if evicted && onEvict != nil {
		onEvict(evictedKey, evictedVal)
	}
}

// Remove deletes the entry for key and returns the removed value.
func (c *LRUCache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*lruEntry[K, V])
		c.ll.Remove(el)
		delete(c.items, key)
		return entry.value, true
	}
	var zero V
	return zero, false
}

// Clear drops every entry without invoking the eviction callback.
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	clear(c.items)
}

// Len returns the number of cached entries.
func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
