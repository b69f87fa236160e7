package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastndev/bracketlens/pkg/cache"
)

// fillCache inserts n entries of sizeBytes each.
func fillCache(c *cache.Cache[int], n, sizeBytes int) {
	for i := 0; i < n; i++ {
		c.Set(string(rune('a'+i)), i, uint64(i), sizeBytes)
	}
}

func testThresholds() cache.Thresholds {
	return cache.Thresholds{Medium: 100, High: 200, Critical: 400}
}

func TestMonitorClassify(t *testing.T) {
	t.Parallel()

	m := cache.NewMonitor(testThresholds(), time.Minute, nil)

	assert.Equal(t, cache.TierLow, m.Classify(0))
	assert.Equal(t, cache.TierLow, m.Classify(99))
	assert.Equal(t, cache.TierMedium, m.Classify(100))
	assert.Equal(t, cache.TierHigh, m.Classify(200))
	assert.Equal(t, cache.TierCritical, m.Classify(400))
	assert.Equal(t, cache.TierCritical, m.Classify(5000))
}

func TestMonitorUsage(t *testing.T) {
	t.Parallel()

	a := cache.New[int]("a", 10, time.Minute)
	b := cache.New[int]("b", 10, time.Minute)
	fillCache(a, 2, 30)
	fillCache(b, 1, 15)

	m := cache.NewMonitor(testThresholds(), time.Minute, nil, a, b)
	assert.Equal(t, 75, m.Usage())
}

func TestMonitorMediumShrinksCapacity(t *testing.T) {
	t.Parallel()

	c := cache.New[int]("c", 8, time.Minute)
	fillCache(c, 4, 30) // 120 bytes: medium

	m := cache.NewMonitor(testThresholds(), time.Minute, nil, c)
	tier := m.Check()

	require.Equal(t, cache.TierMedium, tier)
	assert.Equal(t, 6, c.Capacity(), "expected capacity shrunk by 25 percent")
	assert.False(t, m.LowMemoryMode())
}

func TestMonitorHighRemovesHalf(t *testing.T) {
	t.Parallel()

	c := cache.New[int]("c", 16, time.Minute)
	fillCache(c, 8, 30) // 240 bytes: high

	notified := 0
	m := cache.NewMonitor(testThresholds(), time.Minute, func(tier cache.PressureTier) {
		notified++
		assert.Equal(t, cache.TierHigh, tier)
	}, c)

	tier := m.Check()
	require.Equal(t, cache.TierHigh, tier)
	assert.Equal(t, 4, c.Len(), "expected half the entries removed")
	assert.Equal(t, 1, notified)
	assert.False(t, m.LowMemoryMode())
}

func TestMonitorNotifyCooldown(t *testing.T) {
	t.Parallel()

	c := cache.New[int]("c", 64, time.Minute)
	notified := 0
	m := cache.NewMonitor(testThresholds(), time.Minute, func(cache.PressureTier) {
		notified++
	}, c)

	fillCache(c, 16, 30) // 480 bytes: critical
	m.Check()
	fillCache(c, 16, 30)
	m.Check()

	assert.Equal(t, 1, notified, "second notification inside cool-down window")
}

func TestMonitorCriticalEntersLowMemoryMode(t *testing.T) {
	t.Parallel()

	c := cache.New[int]("c", 16, time.Minute)
	fillCache(c, 16, 30) // 480 bytes: critical

	m := cache.NewMonitor(testThresholds(), time.Minute, nil, c)
	tier := m.Check()

	require.Equal(t, cache.TierCritical, tier)
	assert.Equal(t, 4, c.Len(), "expected three quarters removed")
	assert.True(t, m.LowMemoryMode())
	assert.Equal(t, 8, c.Capacity(), "expected capacity halved in low-memory mode")
	assert.Equal(t, 30*time.Second, c.TTL(), "expected TTL halved")

	m.Restore()
	assert.False(t, m.LowMemoryMode())
	assert.Equal(t, 16, c.Capacity())
	assert.Equal(t, time.Minute, c.TTL())
}

func TestMonitorLowTierIsPassive(t *testing.T) {
	t.Parallel()

	c := cache.New[int]("c", 8, time.Minute)
	fillCache(c, 2, 10)

	m := cache.NewMonitor(testThresholds(), time.Minute, nil, c)
	tier := m.Check()

	assert.Equal(t, cache.TierLow, tier)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 8, c.Capacity())
}

func TestSweeperSweepNow(t *testing.T) {
	t.Parallel()

	a := cache.New[int]("a", 8, 10*time.Millisecond)
	b := cache.New[int]("b", 8, time.Minute)
	fillCache(a, 3, 1)
	fillCache(b, 2, 1)

	time.Sleep(25 * time.Millisecond)

	s := cache.NewSweeper(time.Minute, a, b)
	removed := s.SweepNow()

	assert.Equal(t, 3, removed)
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 2, b.Len())
}
