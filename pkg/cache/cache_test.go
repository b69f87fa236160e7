package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastndev/bracketlens/pkg/cache"
)

func TestCacheGetMiss(t *testing.T) {
	t.Parallel()

	c := cache.New[string]("test", 4, time.Minute)

	_, ok := c.Get("absent", 1)
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestCacheFingerprintValidation(t *testing.T) {
	t.Parallel()

	c := cache.New[string]("test", 4, time.Minute)
	c.Set("doc", "parsed", 100, 10)

	got, ok := c.Get("doc", 100)
	require.True(t, ok)
	assert.Equal(t, "parsed", got)

	// A fingerprint mismatch is a miss and evicts the stale entry.
	_, ok = c.Get("doc", 200)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	_, ok = c.Get("doc", 100)
	assert.False(t, ok, "stale entry must not come back")
}

func TestCacheTTLExpiry(t *testing.T) {
	t.Parallel()

	c := cache.New[int]("test", 4, 10*time.Millisecond)
	c.Set("k", 1, 7, 1)

	time.Sleep(25 * time.Millisecond)

	_, ok := c.Get("k", 7)
	assert.False(t, ok, "expired entry must miss")
	assert.Equal(t, 0, c.Len())
}

func TestCacheSweep(t *testing.T) {
	t.Parallel()

	c := cache.New[int]("test", 8, 10*time.Millisecond)
	c.Set("a", 1, 1, 1)
	c.Set("b", 2, 2, 1)

	time.Sleep(25 * time.Millisecond)
	c.Set("c", 3, 3, 1)

	removed := c.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())

	got, ok := c.Get("c", 3)
	require.True(t, ok)
	assert.Equal(t, 3, got)
}

func TestCacheLRUEviction(t *testing.T) {
	t.Parallel()

	c := cache.New[int]("test", 2, time.Minute)
	c.Set("a", 1, 1, 1)
	c.Set("b", 2, 2, 1)

	// Touch "a" so "b" becomes least recently used.
	_, ok := c.Get("a", 1)
	require.True(t, ok)

	c.Set("c", 3, 3, 1)

	_, ok = c.Get("a", 1)
	assert.True(t, ok, "recently used entry evicted")
	_, ok = c.Get("b", 2)
	assert.False(t, ok, "LRU entry should have been evicted")

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Evictions)
}

func TestCacheRemoveOldest(t *testing.T) {
	t.Parallel()

	c := cache.New[int]("test", 8, time.Minute)
	c.Set("a", 1, 1, 1)
	c.Set("b", 2, 2, 1)
	c.Set("c", 3, 3, 1)

	removed := c.RemoveOldest(2)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())

	// The most recently used entry survives.
	_, ok := c.Get("c", 3)
	assert.True(t, ok)
}

func TestCacheOnEvict(t *testing.T) {
	t.Parallel()

	var evicted []string
	c := cache.New[int]("test", 1, time.Minute)
	c.SetOnEvict(func(key string, _ int) {
		evicted = append(evicted, key)
	})

	c.Set("a", 1, 1, 1)
	c.Set("b", 2, 2, 1) // evicts a
	c.Invalidate("b")
	c.Set("c", 3, 3, 1)
	c.Clear()

	assert.Equal(t, []string{"a", "b", "c"}, evicted)
}

func TestCacheSizeBytes(t *testing.T) {
	t.Parallel()

	c := cache.New[int]("test", 8, time.Minute)
	c.Set("a", 1, 1, 100)
	c.Set("b", 2, 2, 50)
	assert.Equal(t, 150, c.SizeBytes())

	c.Set("a", 3, 3, 25) // replace
	assert.Equal(t, 75, c.SizeBytes())

	c.Invalidate("b")
	assert.Equal(t, 25, c.SizeBytes())
}

func TestCacheSetCapacityShrinks(t *testing.T) {
	t.Parallel()

	c := cache.New[int]("test", 4, time.Minute)
	for i, key := range []string{"a", "b", "c", "d"} {
		c.Set(key, i, uint64(i), 1)
	}

	c.SetCapacity(2)
	assert.Equal(t, 2, c.Capacity())
	assert.LessOrEqual(t, c.Len(), 2)
}
