package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/colsel/internal/resource"
)

// Evictor releases a cached entry's payload. It returns false when the entry
// cannot be evicted right now; the entry then stays cached. Evictors run
// with the cache lock held and must not call back into the cache.
type Evictor func() bool

// LRU tracks resident entries by size and evicts the least recently used
// ones once the capacity is exceeded. It does not hold the payloads; each
// entry carries an Evictor that drops its payload.
type LRU[K comparable] struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[K]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type entry[K comparable] struct {
	key   K
	size  int64
	evict Evictor
}

// NewLRU creates an LRU with the given capacity in bytes. A capacity <= 0
// never evicts. If rc is provided, an entry's size is released back to it
// when the entry leaves the cache: Add takes over a reservation the caller
// already holds.
func NewLRU[K comparable](capacity int64, rc *resource.Controller) *LRU[K] {
	return &LRU[K]{
		capacity:  capacity,
		items:     make(map[K]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Add records key as most recently used. An existing entry for key is
// replaced and its size released first.
func (c *LRU[K]) Add(key K, size int64, evict Evictor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
	el := c.evictList.PushFront(&entry[K]{key: key, size: size, evict: evict})
	c.items[key] = el
	c.size += size
	c.evict(el)
}

// Touch marks key as recently used and counts a hit, or counts a miss when
// key is not cached. It reports whether key is cached.
func (c *LRU[K]) Touch(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(el)
		return true
	}
	c.misses.Add(1)
	return false
}

// Remove drops key without calling its Evictor.
func (c *LRU[K]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if ok {
		c.removeElement(el)
	}
	return ok
}

// evict walks from the least recently used end until the cache fits,
// skipping keep and entries whose Evictor refuses.
func (c *LRU[K]) evict(keep *list.Element) {
	if c.capacity <= 0 {
		return
	}
	for el := c.evictList.Back(); el != nil && c.size > c.capacity; {
		prev := el.Prev()
		if el != keep && el.Value.(*entry[K]).evict() {
			c.removeElement(el)
			c.evictions.Add(1)
		}
		el = prev
	}
}

func (c *LRU[K]) removeElement(el *list.Element) {
	c.evictList.Remove(el)
	ent := el.Value.(*entry[K])
	delete(c.items, ent.key)
	c.size -= ent.size
	if c.rc != nil {
		c.rc.ReleaseMemory(ent.size)
	}
}

// Size returns the current size of the cache in bytes.
func (c *LRU[K]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	Bytes     int64
}

// Stats returns a snapshot of the hit, miss and eviction counts and of the
// current contents.
func (c *LRU[K]) Stats() Stats {
	c.mu.Lock()
	entries, size := c.evictList.Len(), c.size
	c.mu.Unlock()
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   entries,
		Bytes:     size,
	}
}
