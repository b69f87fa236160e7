package cache

import (
	"sync"
	"time"
)

// PressureTier classifies aggregate cache memory usage.
type PressureTier int

const (
	TierLow PressureTier = iota
	TierMedium
	TierHigh
	TierCritical
)

// String returns the tier name.
func (t PressureTier) String() string {
	switch t {
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	case TierCritical:
		return "critical"
	default:
		return "low"
	}
}

// Thresholds are the aggregate byte boundaries between pressure tiers.
type Thresholds struct {
	Medium   int
	High     int
	Critical int
}

// DefaultThresholds are tuned for an editor-embedded engine.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Medium:   16 << 20,
		High:     48 << 20,
		Critical: 96 << 20,
	}
}

// Monitor defaults.
const (
	DefaultMonitorInterval   = 2 * time.Minute
	DefaultNotifyCooldown    = 10 * time.Minute
	mediumShrinkPercent      = 25
	highRemoveFraction       = 2 // keep 1/2
	criticalRemoveFraction   = 4 // keep 1/4
	criticalTTLShrinkDivisor = 2
	lowMemoryCapacityDivisor = 2
)

// Monitor estimates aggregate byte usage across caches on its own
// interval (longer than the sweep interval) and escalates cleanup by
// pressure tier:
//
//   - medium: shrink capacities by a fixed percentage and sweep now
//   - high: remove roughly half of all entries (oldest first) and surface
//     a non-blocking notification once per cool-down window
//   - critical: remove roughly three quarters, shrink TTLs, and enter a
//     persistent low-memory mode halving capacities until restored
type Monitor struct {
	mu         sync.Mutex
	caches     []Sweepable
	thresholds Thresholds
	interval   time.Duration
	cooldown   time.Duration

	// notify surfaces a non-blocking pressure advisory; may be nil.
	notify func(tier PressureTier)

	lastNotified  time.Time
	lowMemoryMode bool
	baseCapacity  map[Sweepable]int
	baseTTL       map[Sweepable]time.Duration

	ticker *time.Ticker
	done   chan struct{}
	now    func() time.Time
}

// NewMonitor creates a memory monitor over the given caches.
func NewMonitor(thresholds Thresholds, interval time.Duration, notify func(PressureTier), caches ...Sweepable) *Monitor {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}

	m := &Monitor{
		caches:       caches,
		thresholds:   thresholds,
		interval:     interval,
		cooldown:     DefaultNotifyCooldown,
		notify:       notify,
		baseCapacity: make(map[Sweepable]int, len(caches)),
		baseTTL:      make(map[Sweepable]time.Duration, len(caches)),
		now:          time.Now,
	}
	for _, c := range caches {
		m.baseCapacity[c] = c.Capacity()
		m.baseTTL[c] = c.TTL()
	}
	return m
}

// Usage returns the aggregate size estimate across all caches. Sizes are
// per-entry-type heuristics supplied at Set time, not exact measurement.
func (m *Monitor) Usage() int {
	total := 0
	for _, c := range m.caches {
		total += c.SizeBytes()
	}
	return total
}

// Classify maps a usage estimate to a pressure tier.
func (m *Monitor) Classify(usage int) PressureTier {
	switch {
	case usage >= m.thresholds.Critical:
		return TierCritical
	case usage >= m.thresholds.High:
		return TierHigh
	case usage >= m.thresholds.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// Check runs one monitor pass: classify current usage and apply the
// tier's cleanup actions. Returns the observed tier.
func (m *Monitor) Check() PressureTier {
	m.mu.Lock()
	defer m.mu.Unlock()

	tier := m.Classify(m.Usage())

	switch tier {
	case TierMedium:
		m.shrinkCapacities(mediumShrinkPercent)
		m.sweepAll()
	case TierHigh:
		m.removeFraction(highRemoveFraction)
		m.maybeNotify(tier)
	case TierCritical:
		m.removeFraction(criticalRemoveFraction)
		m.shrinkTTLs()
		m.enterLowMemoryModeLocked()
		m.maybeNotify(tier)
	}

	return tier
}

// LowMemoryMode reports whether the persistent low-memory mode is active.
func (m *Monitor) LowMemoryMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lowMemoryMode
}

// Restore leaves low-memory mode and restores the original capacities and
// TTLs.
func (m *Monitor) Restore() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lowMemoryMode {
		return
	}
	m.lowMemoryMode = false
	for _, c := range m.caches {
		c.SetCapacity(m.baseCapacity[c])
		c.SetTTL(m.baseTTL[c])
	}
}

// Start launches the background monitor loop.
func (m *Monitor) Start() {
	if m.done != nil {
		return
	}
	m.ticker = time.NewTicker(m.interval)
	m.done = make(chan struct{})

	go func() {
		for {
			select {
			case <-m.ticker.C:
				m.Check()
			case <-m.done:
				return
			}
		}
	}()
}

// Stop halts the background loop. Safe to call when not started.
func (m *Monitor) Stop() {
	if m.done == nil {
		return
	}
	m.ticker.Stop()
	close(m.done)
	m.done = nil
}

func (m *Monitor) sweepAll() {
	for _, c := range m.caches {
		c.Sweep()
	}
}

func (m *Monitor) shrinkCapacities(percent int) {
	for _, c := range m.caches {
		current := c.Capacity()
		if current <= 0 {
			continue
		}
		shrunk := current - current*percent/100
		if shrunk < 1 {
			shrunk = 1
		}
		c.SetCapacity(shrunk)
	}
}

// removeFraction removes all but 1/keep of each cache's entries,
// oldest-first.
func (m *Monitor) removeFraction(keep int) {
	for _, c := range m.caches {
		n := c.Len()
		if remove := n - n/keep; remove > 0 {
			c.RemoveOldest(remove)
		}
	}
}

func (m *Monitor) shrinkTTLs() {
	for _, c := range m.caches {
		if ttl := c.TTL(); ttl > 0 {
			c.SetTTL(ttl / criticalTTLShrinkDivisor)
		}
	}
}

func (m *Monitor) enterLowMemoryModeLocked() {
	if m.lowMemoryMode {
		return
	}
	m.lowMemoryMode = true
	for _, c := range m.caches {
		base := m.baseCapacity[c]
		if base > 0 {
			c.SetCapacity(base / lowMemoryCapacityDivisor)
		}
	}
}

func (m *Monitor) maybeNotify(tier PressureTier) {
	if m.notify == nil {
		return
	}
	if m.now().Sub(m.lastNotified) < m.cooldown {
		return
	}
	m.lastNotified = m.now()
	m.notify(tier)
}
