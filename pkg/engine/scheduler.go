package engine

import (
	"math"
	"sync"
	"time"
)

// debounceBaseUnit is the document size at which the debounce delay
// starts scaling; smaller documents get the base delay.
const debounceBaseUnit = 16 << 10

// unfocusedDelayFactor multiplies the delay for editors that are not
// focused; background editors can wait.
const unfocusedDelayFactor = 2

// scheduler coalesces re-parse requests per editor key. A new request
// for the same key supersedes any pending one, so a typing burst
// produces a single parse after the burst ends.
type scheduler struct {
	mu     sync.Mutex
	base   time.Duration
	max    time.Duration
	timers map[string]*time.Timer
}

func newScheduler(base, max time.Duration) *scheduler {
	if base <= 0 {
		base = 150 * time.Millisecond
	}
	if max <= 0 {
		max = 2 * time.Second
	}
	return &scheduler{
		base:   base,
		max:    max,
		timers: make(map[string]*time.Timer),
	}
}

// setWindow replaces the debounce bounds on a config reload.
func (s *scheduler) setWindow(base, max time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if base > 0 {
		s.base = base
	}
	if max > 0 {
		s.max = max
	}
}

// delay computes the debounce delay: the base delay, scaled by the
// square root of the document size above the base unit, doubled for
// unfocused editors, and capped at the maximum.
func (s *scheduler) delay(sizeBytes int, focused bool) time.Duration {
	s.mu.Lock()
	base, max := s.base, s.max
	s.mu.Unlock()

	d := base
	if sizeBytes > debounceBaseUnit {
		d = time.Duration(float64(base) * math.Sqrt(float64(sizeBytes)/debounceBaseUnit))
	}
	if !focused {
		d *= unfocusedDelayFactor
	}
	if d > max {
		d = max
	}
	return d
}

// schedule arms fn to run after the computed delay, superseding any
// pending request for the same key. Returns the delay used.
func (s *scheduler) schedule(key string, sizeBytes int, focused bool, fn func()) time.Duration {
	d := s.delay(sizeBytes, focused)

	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[key]; ok {
		timer.Stop()
	}
	s.timers[key] = time.AfterFunc(d, func() {
		s.forget(key)
		fn()
	})
	return d
}

// cancel drops any pending request for the key.
func (s *scheduler) cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[key]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.timers, key)
	return true
}

// stopAll drops every pending request.
func (s *scheduler) stopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}

func (s *scheduler) forget(key string) {
	s.mu.Lock()
	delete(s.timers, key)
	s.mu.Unlock()
}
