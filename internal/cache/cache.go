// Package cache provides a small thread-safe LRU cache.
//
// The stream server keeps encoded still images in it, keyed by the view
// they were rendered for, so repeated snapshot requests are served without
// iterating again.
//
//	stills := cache.New[Key, []byte](32)
//	png, err := stills.GetOrCreate(key, render)
//	st := stills.Stats()
package cache

import (
	"errors"
	"sync"
)

// ErrCreatePanicked is returned to callers that waited on a create call
// which panicked.
var ErrCreatePanicked = errors.New("cache: create panicked")

// Cache is a generic LRU cache with a soft limit. When an insertion takes
// it over the limit, the least recently used quarter of the entries is
// evicted.
//
// Cache is safe for concurrent use and must not be copied after creation.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[V]
	inflight map[K]*call[V]
	limit    int
	tick     int64 // monotonic access counter

	hits   uint64
	misses uint64
}

type entry[V any] struct {
	value V
	atime int64
}

// call is a create in progress. done is closed once value and err are set.
type call[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// Stats contains cache statistics.
type Stats struct {
	Len      int
	Capacity int
	Hits     uint64
	Misses   uint64
}

// New creates a cache holding about limit entries. A limit of 0 means
// unlimited.
func New[K comparable, V any](limit int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*entry[V]),
		inflight: make(map[K]*call[V]),
		limit:    max(limit, 0),
	}
}

// GetOrCreate returns the cached value for key, calling create on a miss.
//
// create runs without the cache lock held, so hits and creates for other
// keys proceed meanwhile. Concurrent misses on one key share a single
// create call. A failed create is not cached.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	if v, ok := c.lookup(key); ok {
		c.mu.Unlock()
		return v, nil
	}
	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-cl.done
		return cl.value, cl.err
	}
	cl := &call[V]{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()

	finished := false
	defer func() {
		if !finished {
			cl.err = ErrCreatePanicked
		}
		c.mu.Lock()
		delete(c.inflight, key)
		if cl.err == nil {
			c.store(key, cl.value)
		}
		c.mu.Unlock()
		close(cl.done)
	}()

	cl.value, cl.err = create()
	finished = true
	return cl.value, cl.err
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Len:      len(c.entries),
		Capacity: c.limit,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}

// lookup requires c.mu.
func (c *Cache[K, V]) lookup(key K) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.tick++
	e.atime = c.tick
	return e.value, true
}

// store requires c.mu.
func (c *Cache[K, V]) store(key K, value V) {
	c.tick++
	c.entries[key] = &entry[V]{value: value, atime: c.tick}
	if c.limit > 0 && len(c.entries) > c.limit {
		c.evictOldest()
	}
}

// evictOldest shrinks the cache to three quarters of its limit, oldest
// entries first. It requires c.mu.
func (c *Cache[K, V]) evictOldest() {
	target := max(c.limit*3/4, 1)
	toEvict := len(c.entries) - target
	if toEvict <= 0 {
		return
	}

	type aged struct {
		key   K
		atime int64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.atime})
	}

	// Partial selection sort; only the evicted prefix is ordered.
	for i := 0; i < toEvict; i++ {
		oldest := i
		for j := i + 1; j < len(all); j++ {
			if all[j].atime < all[oldest].atime {
				oldest = j
			}
		}
		all[i], all[oldest] = all[oldest], all[i]
		delete(c.entries, all[i].key)
	}
}
