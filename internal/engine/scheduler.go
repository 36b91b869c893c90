package engine

import (
	"sync"
	"time"
)

// Scheduler fires a callback at a fixed interval. Re-arming cancels the
// previous timer before the new one starts, so intervals never overlap, and
// Disarm deterministically stops any pending fire. The engine itself has no
// notion of wall-clock time beyond this type.
type Scheduler struct {
	mu       sync.Mutex
	timer    *time.Timer
	interval time.Duration
	fn       func()
	armed    bool
}

// Arm starts (or restarts) the interval clock.
func (s *Scheduler) Arm(interval time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.interval = interval
	s.fn = fn
	s.armed = true
	s.timer = time.AfterFunc(interval, s.fire)
}

// Disarm cancels the clock and any pending fire.
func (s *Scheduler) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Armed reports whether the clock is running.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// Interval returns the current tick interval (zero when disarmed).
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return 0
	}
	return s.interval
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if !s.armed {
		s.mu.Unlock()
		return
	}
	fn := s.fn
	s.timer = time.AfterFunc(s.interval, s.fire)
	s.mu.Unlock()

	fn()
}
