// Package memo implements a thread-safe bounded LRU used to memoise exact
// coefficients such as Clebsch-Gordan values and basis-change matrices.
package memo

import (
	"container/list"
	"sync"
)

// Options configures a Cache.
type Options struct {
	Capacity int // max entries before LRU eviction (default 4096)
}

// DefaultOptions returns production-ready defaults.
func DefaultOptions() Options {
	return Options{Capacity: 4096}
}

// Stats is a point-in-time snapshot of cache metrics.
type Stats struct {
	Entries   int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Sets      uint64
	Evictions uint64
	HitRate   float64
}

type entry struct {
	key   string
	value any
}

// Cache is a thread-safe LRU keyed by canonical strings.
type Cache struct {
	mu       sync.Mutex
	lru      *list.List
	index    map[string]*list.Element
	capacity int

	hits      uint64
	misses    uint64
	sets      uint64
	evictions uint64
}

// New creates a Cache.
// Panics if Capacity <= 0.
func New(opts Options) *Cache {
	if opts.Capacity <= 0 {
		panic("memo: Options.Capacity must be positive")
	}
	return &Cache{
		lru:      list.New(),
		index:    make(map[string]*list.Element),
		capacity: opts.Capacity,
	}
}

// Set stores value under key.
// An existing key is updated in place and promoted to most-recently-used.
// If the cache is at capacity the least-recently-used entry is evicted first.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sets++

	if elem, ok := c.index[key]; ok {
		elem.Value.(*entry).value = value
		c.lru.MoveToFront(elem)
		return
	}

	if c.lru.Len() >= c.capacity {
		c.evictLocked()
	}
	c.index[key] = c.lru.PushFront(&entry{key: key, value: value})
}

// Get returns the value stored under key and promotes it on a hit.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.lru.MoveToFront(elem)
	c.hits++
	return elem.Value.(*entry).value, true
}

// GetOrCompute returns the cached value for key, calling compute on a miss.
// Errors are returned to the caller and never cached. compute runs without
// the lock held, so concurrent misses on one key may compute twice.
func (c *Cache) GetOrCompute(key string, compute func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.Set(key, v)
	return v, nil
}

// Resize changes the capacity, evicting least-recently-used entries as needed.
// Panics if capacity <= 0.
func (c *Cache) Resize(capacity int) {
	if capacity <= 0 {
		panic("memo: capacity must be positive")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = capacity
	for c.lru.Len() > c.capacity {
		c.evictLocked()
	}
}

// Purge removes every entry. Counters are kept.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Init()
	c.index = make(map[string]*list.Element)
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	n := c.lru.Len()
	c.mu.Unlock()
	return n
}

// Stats returns a point-in-time snapshot of cache metrics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return Stats{
		Entries:   c.lru.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Sets:      c.sets,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}

func (c *Cache) evictLocked() {
	if back := c.lru.Back(); back != nil {
		c.removeLocked(back)
		c.evictions++
	}
}

func (c *Cache) removeLocked(elem *list.Element) {
	delete(c.index, elem.Value.(*entry).key)
	c.lru.Remove(elem)
}
