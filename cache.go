package mathexec

import (
	"container/list"
	"sync"
)

// DefaultCacheSize is the capacity of a cache created with a non-positive
// size.
const DefaultCacheSize = 256

type cacheEntry struct {
	key  string
	expr *Expr
}

// Cache is an LRU cache of compiled expressions keyed by their text. Once
// the capacity is reached, the least recently used entry is evicted. A Cache
// is safe for concurrent use.
//
// Compiled expressions depend on the registry that compiled them, so a
// cache must only be used with one registry.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// NewCache creates a cache holding up to capacity expressions.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a compiled expression and marks it as most recently used.
func (c *Cache) Get(key string) (*Expr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).expr, true
}

// Set inserts or replaces a compiled expression.
func (c *Cache) Set(key string, expr *Expr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).expr = expr
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}
	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, expr: expr})
}

// GetOrCompile retrieves the expression for key, or calls compile to create
// and cache it. Errors are not cached. The second result reports whether the
// expression came from the cache.
func (c *Cache) GetOrCompile(key string, compile func() (*Expr, error)) (*Expr, bool, error) {
	if expr, ok := c.Get(key); ok {
		return expr, true, nil
	}
	expr, err := compile()
	if err != nil {
		return nil, false, err
	}
	c.Set(key, expr)
	return expr, false, nil
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of cached expressions.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes one expression from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all expressions from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry. c.mu must be held.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*cacheEntry).key)
}
