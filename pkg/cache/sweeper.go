package cache

import (
	"time"
)

// Sweepable is the surface the sweeper and memory monitor need from a
// cache, independent of its value type.
type Sweepable interface {
	Sweep() int
	RemoveOldest(n int) int
	Len() int
	SizeBytes() int
	Capacity() int
	SetCapacity(capacity int)
	TTL() time.Duration
	SetTTL(ttl time.Duration)
	Stats() Stats
	Clear()
}

// DefaultSweepInterval is the default background sweep cadence.
const DefaultSweepInterval = 30 * time.Second

// Sweeper purges TTL-expired entries from a set of caches on a fixed
// interval, regardless of capacity pressure.
type Sweeper struct {
	caches   []Sweepable
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
}

// NewSweeper creates a sweeper over the given caches.
// interval <= 0 selects the default.
func NewSweeper(interval time.Duration, caches ...Sweepable) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		caches:   caches,
		interval: interval,
	}
}

// SweepNow runs one sweep pass immediately, returning the total number of
// entries removed.
func (s *Sweeper) SweepNow() int {
	removed := 0
	for _, c := range s.caches {
		removed += c.Sweep()
	}
	return removed
}

// Start launches the background sweep loop. Calling Start twice is a
// no-op until Stop.
func (s *Sweeper) Start() {
	if s.done != nil {
		return
	}
	s.ticker = time.NewTicker(s.interval)
	s.done = make(chan struct{})

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.SweepNow()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop halts the background loop. Safe to call when not started.
func (s *Sweeper) Stop() {
	if s.done == nil {
		return
	}
	s.ticker.Stop()
	close(s.done)
	s.done = nil
}
