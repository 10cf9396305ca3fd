// Package cache provides a thread-safe LRU cache for compiled lambda programs.
//
// The evaluator uses it when the WithCaching option is enabled, so the
// same expression text is tokenized and compiled once no matter how many
// trees it is evaluated against. Compiled programs are immutable, so a
// cached program can be shared by concurrent evaluations.
//
// # Example
//
//	c := cache.New(1024)
//	prog, err := c.GetOrCompile("@/*/?name", compile)
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/sandrolain/golambda/pkg/types"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 256

type entry struct {
	key  string
	prog *types.Program
}

// Cache is an LRU cache of compiled programs keyed by expression text.
// Once the capacity is reached, the least recently used entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a snapshot of cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
	Len    int
}

// New creates a new LRU cache with the given capacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the program compiled from source and marks it most recently
// used.
func (c *Cache) Get(source string) (*types.Program, bool) {
	c.mu.RLock()
	el, ok := c.items[source]
	front := ok && c.ll.Front() == el
	c.mu.RUnlock()
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	if !front {
		// Re-check under the write lock; the entry may have been evicted.
		c.mu.Lock()
		el, ok = c.items[source]
		if ok {
			c.ll.MoveToFront(el)
		}
		c.mu.Unlock()
		if !ok {
			c.misses.Add(1)
			return nil, false
		}
	}
	c.hits.Add(1)
	return el.Value.(*entry).prog, true
}

// Set inserts or replaces the program for source.
func (c *Cache) Set(source string, prog *types.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[source]; ok {
		el.Value.(*entry).prog = prog
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}
	c.items[source] = c.ll.PushFront(&entry{key: source, prog: prog})
}

// GetOrCompile returns the cached program for source, or calls compile and
// caches its result. Compilation errors are not cached.
func (c *Cache) GetOrCompile(source string, compile func() (*types.Program, error)) (*types.Program, error) {
	if prog, ok := c.Get(source); ok {
		return prog, nil
	}
	prog, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(source, prog)
	return prog, nil
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Capacity returns the maximum number of cached programs.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns hit and miss counters since creation or the last Clear.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Len: c.Len()}
}

// Invalidate removes the program for source.
func (c *Cache) Invalidate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[source]; ok {
		c.ll.Remove(el)
		delete(c.items, source)
	}
}

// Clear removes every entry and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
	c.hits.Store(0)
	c.misses.Store(0)
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held for writing.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
