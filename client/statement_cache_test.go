package client

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatementCacheHitMiss(t *testing.T) {
	cache := NewStatementCache(2)

	_, ok := cache.Get(1)
	assert.False(t, ok)

	cache.Add(1, "one")
	stmt, ok := cache.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "one", stmt)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.CurrentSize)
}

func TestStatementCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewStatementCache(2)

	cache.Add(1, "one")
	cache.Add(2, "two")
	_, _ = cache.Get(1) // 2 is now least recently used
	cache.Add(3, "three")

	_, ok := cache.Get(2)
	assert.False(t, ok)
	_, ok = cache.Get(1)
	assert.True(t, ok)
	_, ok = cache.Get(3)
	assert.True(t, ok)

	assert.Equal(t, int64(1), cache.Stats().Evictions)
	assert.Equal(t, 2, cache.Len())
}

func TestStatementCacheReplace(t *testing.T) {
	cache := NewStatementCache(2)
	cache.Add(1, "one")
	cache.Add(1, "uno")

	stmt, _ := cache.Get(1)
	assert.Equal(t, "uno", stmt)
	assert.Equal(t, 1, cache.Len())
}

func TestStatementCacheDisabled(t *testing.T) {
	for _, size := range []int{0, -5} {
		cache := NewStatementCache(size)
		cache.Add(1, "one")
		_, ok := cache.Get(1)
		assert.False(t, ok)
		assert.Equal(t, 0, cache.Len())
	}
}

func TestStatementCacheClear(t *testing.T) {
	cache := NewStatementCache(4)
	cache.Add(1, "one")
	cache.Add(2, "two")
	cache.Clear()

	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, int64(0), cache.Stats().CurrentSize)
}

func TestStatementCacheConcurrentAccess(t *testing.T) {
	cache := NewStatementCache(8)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := uint64(i % 4)
			if _, ok := cache.Get(key); !ok {
				cache.Add(key, "stmt")
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), 4)
}
