package mocks

import (
	"time"

	"github.com/mcoot/racesync/internal/dependencies/clock"
)

// MockScheduler is a deterministic Scheduler driven by a MockClock.
// Callbacks only run when Advance is called.
type MockScheduler struct {
	clock   *MockClock
	pending []scheduledFunc
	seq     int
}

type scheduledFunc struct {
	at  time.Time
	seq int
	fn  func()
}

// Ensure MockScheduler implements Scheduler
var _ clock.Scheduler = (*MockScheduler)(nil)

// NewMockScheduler creates a MockScheduler sharing the given clock
func NewMockScheduler(c *MockClock) *MockScheduler {
	return &MockScheduler{clock: c}
}

// AfterFunc records fn to run once the clock passes now+d
func (s *MockScheduler) AfterFunc(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	s.seq++
	s.pending = append(s.pending, scheduledFunc{
		at:  s.clock.Now().Add(d),
		seq: s.seq,
		fn:  fn,
	})
}

// Advance moves the clock forward, running due callbacks in due-time order.
// Callbacks scheduled while advancing run too if they fall inside the window.
func (s *MockScheduler) Advance(d time.Duration) {
	target := s.clock.Now().Add(d)
	for {
		idx := s.nextDue(target)
		if idx < 0 {
			break
		}
		next := s.pending[idx]
		s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
		s.clock.Set(next.at)
		next.fn()
	}
	s.clock.Set(target)
}

// Pending returns the number of callbacks waiting to run
func (s *MockScheduler) Pending() int {
	return len(s.pending)
}

func (s *MockScheduler) nextDue(target time.Time) int {
	idx := -1
	for i, p := range s.pending {
		if p.at.After(target) {
			continue
		}
		if idx < 0 || p.at.Before(s.pending[idx].at) ||
			(p.at.Equal(s.pending[idx].at) && p.seq < s.pending[idx].seq) {
			idx = i
		}
	}
	return idx
}
