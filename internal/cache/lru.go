package cache

import (
	"container/list"
	"sync"
	"time"
)

// EvictReason tells an eviction hook why an entry left the cache.
type EvictReason string

const (
	EvictExpired  EvictReason = "expired"
	EvictCapacity EvictReason = "capacity"
	EvictDeleted  EvictReason = "deleted"
)

// LRU cache with sliding TTL and size-based eviction
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	now     func() time.Time
	onEvict func(key string, data T, reason EvictReason)
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

// NewLRUCache creates a new LRU cache with TTL
func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
}

// OnEvict installs a hook called, outside the cache lock, for every entry
// that leaves the cache.
func (c *LRUCache[T]) OnEvict(fn func(key string, data T, reason EvictReason)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

type eviction[T any] struct {
	key    string
	data   T
	reason EvictReason
}

func (c *LRUCache[T]) notify(evicted []eviction[T]) {
	c.mu.Lock()
	fn := c.onEvict
	c.mu.Unlock()
	if fn == nil {
		return
	}
	for _, e := range evicted {
		fn(e.key, e.data, e.reason)
	}
}

// Get retrieves a value from the cache and extends its expiry
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	var zero T
	elem, exists := c.items[key]
	if !exists {
		c.mu.Unlock()
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	now := c.now()
	if now.After(item.expiresAt) {
		c.removeElement(elem)
		c.mu.Unlock()
		c.notify([]eviction[T]{{item.key, item.data, EvictExpired}})
		return zero, false
	}

	item.expiresAt = now.Add(c.ttl)
	c.lru.MoveToFront(elem)
	c.mu.Unlock()
	return item.data, true
}

// Set stores a value in the cache
func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	evicted := c.set(key, data)
	c.mu.Unlock()
	c.notify(evicted)
}

// GetOrCreate returns the live value of key, creating and storing it with
// create when missing. created reports which case happened.
func (c *LRUCache[T]) GetOrCreate(key string, create func() T) (data T, created bool) {
	if v, ok := c.Get(key); ok {
		return v, false
	}
	c.mu.Lock()
	// another caller may have created it meanwhile
	if elem, ok := c.items[key]; ok {
		item := elem.Value.(*cacheItem[T])
		if !c.now().After(item.expiresAt) {
			c.mu.Unlock()
			return item.data, false
		}
	}
	data = create()
	evicted := c.set(key, data)
	c.mu.Unlock()
	c.notify(evicted)
	return data, true
}

func (c *LRUCache[T]) set(key string, data T) []eviction[T] {
	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: c.now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return nil
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	var evicted []eviction[T]
	for c.lru.Len() > c.maxSize {
		oldest := c.lru.Back()
		old := oldest.Value.(*cacheItem[T])
		c.removeElement(oldest)
		evicted = append(evicted, eviction[T]{old.key, old.data, EvictCapacity})
	}
	return evicted
}

// Delete removes a key from the cache
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	elem, exists := c.items[key]
	if !exists {
		c.mu.Unlock()
		return
	}
	item := elem.Value.(*cacheItem[T])
	c.removeElement(elem)
	c.mu.Unlock()
	c.notify([]eviction[T]{{item.key, item.data, EvictDeleted}})
}

func (c *LRUCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries and returns count of removed items
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	now := c.now()
	var evicted []eviction[T]
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		item := elem.Value.(*cacheItem[T])
		if now.After(item.expiresAt) {
			c.removeElement(elem)
			evicted = append(evicted, eviction[T]{item.key, item.data, EvictExpired})
		}
		elem = prev
	}
	c.mu.Unlock()
	c.notify(evicted)
	return len(evicted)
}

// Size returns the current number of items in the cache
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
