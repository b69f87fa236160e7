// Package cache provides the layered caching for the scope engine: a
// generic fingerprint-validated LRU+TTL cache, a background sweeper, a
// per-editor state cache owning render resources, and a memory-pressure
// monitor that escalates cleanup aggressiveness.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Entry is one cache entry. Entries are read-only after creation and
// replaced wholesale on invalidation; an LRU "touch" reinserts a copy at
// the MRU end rather than mutating in place.
type Entry[V any] struct {
	Key            string
	Fingerprint    uint64
	Value          V
	CreatedAt      time.Time
	LastAccessedAt time.Time
	AccessCount    int
	SizeBytes      int
}

// Stats is a point-in-time snapshot of one cache's counters.
type Stats struct {
	Name      string
	Entries   int
	SizeBytes int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a fingerprint-validated LRU cache with TTL expiry.
//
// Content identity, not wall-clock time, is the authoritative validity
// signal: a fingerprint mismatch on Get always evicts the entry and
// reports a miss. TTL is a secondary, coarser eviction signal layered on
// top, applied on Get and by Sweep.
type Cache[V any] struct {
	mu        sync.Mutex
	name      string
	capacity  int
	ttl       time.Duration
	order     *list.List // front is most recently used
	items     map[string]*list.Element
	hits      uint64
	misses    uint64
	evictions uint64

	// onEvict is called (outside the hot path, inside the lock) whenever
	// an entry leaves the cache for any reason.
	onEvict func(key string, value V)

	// now is injectable for tests.
	now func() time.Time
}

// New creates a cache with the given capacity and TTL.
func New[V any](name string, capacity int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		name:     name,
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// SetOnEvict registers an eviction callback. Must be called before use.
func (c *Cache[V]) SetOnEvict(fn func(key string, value V)) {
	c.onEvict = fn
}

// Get returns the cached value for key if its fingerprint matches and its
// TTL has not elapsed. A stale or mismatched entry is evicted and reported
// as a miss.
func (c *Cache[V]) Get(key string, fingerprint uint64) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}

	entry := elem.Value.(Entry[V])
	if entry.Fingerprint != fingerprint || c.expired(entry) {
		c.removeElement(elem)
		c.misses++
		return zero, false
	}

	// Touch: replace with an updated copy at the MRU end.
	c.order.Remove(elem)
	entry.LastAccessedAt = c.now()
	entry.AccessCount++
	c.items[key] = c.order.PushFront(entry)

	c.hits++
	return entry.Value, true
}

// Set inserts a value at the MRU position, evicting the least recently
// used entry first if the cache is at capacity. An existing entry under
// the same key is replaced wholesale.
func (c *Cache[V]) Set(key string, value V, fingerprint uint64, sizeBytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}

	for c.capacity > 0 && len(c.items) >= c.capacity {
		c.evictLRU()
	}

	nowTime := c.now()
	entry := Entry[V]{
		Key:            key,
		Fingerprint:    fingerprint,
		Value:          value,
		CreatedAt:      nowTime,
		LastAccessedAt: nowTime,
		SizeBytes:      sizeBytes,
	}
	c.items[key] = c.order.PushFront(entry)
}

// Invalidate removes the entry for key. Returns true if one was present.
func (c *Cache[V]) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	return true
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, elem := range c.items {
		c.fireEvict(elem)
	}
	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// Sweep removes all TTL-expired entries regardless of capacity pressure,
// returning the number removed.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if c.expired(elem.Value.(Entry[V])) {
			c.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// RemoveOldest removes up to n entries starting from the LRU end,
// returning the number removed. Used by the memory monitor.
func (c *Cache[V]) RemoveOldest(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for removed < n {
		elem := c.order.Back()
		if elem == nil {
			break
		}
		c.removeElement(elem)
		removed++
	}
	return removed
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// SizeBytes returns the aggregate size estimate of all entries, per the
// sizes supplied at Set time.
func (c *Cache[V]) SizeBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		total += elem.Value.(Entry[V]).SizeBytes
	}
	return total
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		total += elem.Value.(Entry[V]).SizeBytes
	}

	return Stats{
		Name:      c.name,
		Entries:   len(c.items),
		SizeBytes: total,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// Capacity returns the current entry capacity.
func (c *Cache[V]) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// SetCapacity changes the entry capacity, evicting LRU entries if the
// cache is now over it.
func (c *Cache[V]) SetCapacity(capacity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.capacity = capacity
	for c.capacity > 0 && len(c.items) > c.capacity {
		c.evictLRU()
	}
}

// TTL returns the current TTL.
func (c *Cache[V]) TTL() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl
}

// SetTTL changes the TTL for subsequent expiry checks.
func (c *Cache[V]) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

func (c *Cache[V]) expired(entry Entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(entry.CreatedAt) > c.ttl
}

func (c *Cache[V]) evictLRU() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	c.removeElement(elem)
	c.evictions++
}

func (c *Cache[V]) removeElement(elem *list.Element) {
	entry := elem.Value.(Entry[V])
	c.order.Remove(elem)
	delete(c.items, entry.Key)
	c.fireEvict(elem)
}

func (c *Cache[V]) fireEvict(elem *list.Element) {
	if c.onEvict == nil {
		return
	}
	entry := elem.Value.(Entry[V])
	c.onEvict(entry.Key, entry.Value)
}
