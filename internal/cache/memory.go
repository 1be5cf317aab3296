package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryCache is a size-bounded LRU cache. A capacity of zero disables it:
// every Put is dropped and every Get misses.
type MemoryCache struct {
	capacity int64
	size     int64

	items    map[string]*list.Element
	eviction *list.List

	mu    sync.Mutex
	stats Stats
}

type entry struct {
	key    string
	value  []byte
	stored time.Time
}

// NewMemoryCache creates a cache holding at most capacity bytes.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get returns the value for key and marks it recently used.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	c.eviction.MoveToFront(elem)
	c.stats.Hits++
	return elem.Value.(*entry).value, true
}

// Put stores value under key, evicting least recently used entries to make
// room. The cache keeps a reference to value; callers must not modify it.
func (c *MemoryCache) Put(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := int64(len(value))
	if size > c.capacity {
		if elem, ok := c.items[key]; ok {
			c.remove(elem)
		}
		return ErrItemTooLarge
	}

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry)
		c.size += size - int64(len(e.value))
		e.value = value
		e.stored = time.Now()
		c.eviction.MoveToFront(elem)
	} else {
		c.items[key] = c.eviction.PushFront(&entry{key: key, value: value, stored: time.Now()})
		c.size += size
	}

	for c.size > c.capacity && c.eviction.Len() > 1 {
		c.remove(c.eviction.Back())
		c.stats.Evictions++
	}
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// Purge removes every entry. It is called when settings that are baked into
// cached documents change.
func (c *MemoryCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	c.size = 0
	c.stats.LastPurge = time.Now()
}

// Prune removes entries stored longer than maxAge ago and returns how many
// were removed.
func (c *MemoryCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry).stored.Before(cutoff) {
			c.remove(elem)
			pruned++
		}
		elem = prev
	}
	return pruned
}

// Len returns the number of entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Size returns the current size in bytes.
func (c *MemoryCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = c.size
	stats.ItemCount = int64(len(c.items))
	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}
	return stats
}

// remove must be called with the lock held.
func (c *MemoryCache) remove(elem *list.Element) {
	c.eviction.Remove(elem)
	e := elem.Value.(*entry)
	delete(c.items, e.key)
	c.size -= int64(len(e.value))
}
