package client

import (
	"sync"
	"sync/atomic"
)

// StatementCache keeps rendered INSERT statements with LRU eviction, keyed
// by the layout signature of a batch.
type StatementCache struct {
	statements  map[uint64]string
	accessOrder []uint64
	maxSize     int
	stats       *CacheStats
	mu          sync.Mutex
}

// CacheStats tracks statement cache performance metrics.
type CacheStats struct {
	Hits        atomic.Int64
	Misses      atomic.Int64
	Evictions   atomic.Int64
	CurrentSize atomic.Int64
}

// CacheStatsSnapshot is a point-in-time copy of CacheStats.
type CacheStatsSnapshot struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	CurrentSize int64
}

// NewStatementCache creates a new statement cache with the specified maximum
// size. A size of zero or less yields a cache that stores nothing.
func NewStatementCache(maxSize int) *StatementCache {
	if maxSize < 0 {
		maxSize = 0
	}
	return &StatementCache{
		statements:  make(map[uint64]string, maxSize),
		accessOrder: make([]uint64, 0, maxSize),
		maxSize:     maxSize,
		stats:       &CacheStats{},
	}
}

// Get retrieves a statement from the cache.
func (c *StatementCache) Get(key uint64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stmt, ok := c.statements[key]
	if !ok {
		c.stats.Misses.Add(1)
		return "", false
	}

	c.stats.Hits.Add(1)
	c.removeFromAccessOrder(key)
	c.accessOrder = append(c.accessOrder, key)
	return stmt, true
}

// Add stores a statement, evicting the least recently used entry if the
// cache is full.
func (c *StatementCache) Add(key uint64, stmt string) {
	if c.maxSize == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.statements[key]; exists {
		c.statements[key] = stmt
		c.removeFromAccessOrder(key)
		c.accessOrder = append(c.accessOrder, key)
		return
	}

	if len(c.accessOrder) >= c.maxSize {
		c.evictLRU()
	}

	c.statements[key] = stmt
	c.accessOrder = append(c.accessOrder, key)
	c.stats.CurrentSize.Store(int64(len(c.accessOrder)))
}

// Clear removes all statements from the cache.
func (c *StatementCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.statements = make(map[uint64]string, c.maxSize)
	c.accessOrder = make([]uint64, 0, c.maxSize)
	c.stats.CurrentSize.Store(0)
}

// Len returns the number of cached statements.
func (c *StatementCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.accessOrder)
}

// Stats returns a copy of the cache statistics.
func (c *StatementCache) Stats() CacheStatsSnapshot {
	return CacheStatsSnapshot{
		Hits:        c.stats.Hits.Load(),
		Misses:      c.stats.Misses.Load(),
		Evictions:   c.stats.Evictions.Load(),
		CurrentSize: c.stats.CurrentSize.Load(),
	}
}

// evictLRU evicts the least recently used statement from the cache.
// Must be called with c.mu locked.
func (c *StatementCache) evictLRU() {
	if len(c.accessOrder) == 0 {
		return
	}

	lru := c.accessOrder[0]
	delete(c.statements, lru)
	c.accessOrder = c.accessOrder[1:]
	c.stats.Evictions.Add(1)
	c.stats.CurrentSize.Store(int64(len(c.accessOrder)))
}

// removeFromAccessOrder removes a key from the access order list.
// Must be called with c.mu locked.
func (c *StatementCache) removeFromAccessOrder(key uint64) {
	for i, k := range c.accessOrder {
		if k == key {
			c.accessOrder = append(c.accessOrder[:i], c.accessOrder[i+1:]...)
			break
		}
	}
}
