// Package embedcache provides a TTL and size bounded memo of text
// embeddings keyed by (content, model).
//
// Entries expire ttl after their last write; an expired entry is
// indistinguishable from an absent one. When the cache is full the
// least-recently-used entry is evicted, with recency updated on both
// reads and writes.
package embedcache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dshills/semsort/pkg/types"
)

// Defaults applied when the constructor is given zero values.
const (
	DefaultMaxSize = 10000
	DefaultTTL     = 30 * time.Minute
)

// entry is the cached value for one (content, model) pair.
type entry struct {
	vector    []float32
	model     string
	createdAt time.Time
}

// Stats holds cumulative cache counters since creation or the last reset.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// Cache memoizes embedding vectors per (content, model). All operations
// are safe for concurrent use; the underlying LRU is internally locked
// and counters are atomic, so no partial state is ever observable.
type Cache struct {
	lru *expirable.LRU[string, entry]

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	mu     sync.Mutex
	closed bool
}

// New creates a cache bounded to maxSize entries with the given TTL.
// Non-positive arguments fall back to the package defaults.
func New(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &Cache{}
	c.lru = expirable.NewLRU[string, entry](maxSize, func(string, entry) {
		c.evictions.Add(1)
	}, ttl)

	return c
}

// Set stores or overwrites the vector for (content, model), resetting the
// entry's creation time. Inserting into a full cache evicts the
// least-recently-used entry first. The vector is copied so later caller
// mutations cannot pollute the cache.
func (c *Cache) Set(content, model string, vector []float32) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	stored := make([]float32, len(vector))
	copy(stored, vector)

	c.lru.Add(cacheKey(content, model), entry{
		vector:    stored,
		model:     model,
		createdAt: time.Now(),
	})
}

// Get returns a copy of the cached vector for (content, model). An entry
// older than the TTL is treated as a miss; hit/miss counters are updated
// either way.
func (c *Cache) Get(content, model string) ([]float32, bool) {
	ent, ok := c.lru.Get(cacheKey(content, model))
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)

	result := make([]float32, len(ent.vector))
	copy(result, ent.vector)
	return result, true
}

// Contains reports whether an un-expired entry exists without updating
// recency or the hit/miss counters.
func (c *Cache) Contains(content, model string) bool {
	return c.lru.Contains(cacheKey(content, model))
}

// Stats returns a snapshot of the cumulative counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.lru.Len(),
	}
}

// ResetStats zeroes the cumulative counters without touching entries.
func (c *Cache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Shutdown drops all entries. Safe to call multiple times; subsequent
// writes are ignored.
func (c *Cache) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.lru.Purge()
}

// cacheKey builds the composite key for a (content, model) pair. Content
// is hashed so arbitrarily large texts stay cheap to key.
func cacheKey(content, model string) string {
	return types.ContentKey(content) + ":" + model
}
