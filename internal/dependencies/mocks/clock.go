package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/racesync/internal/dependencies/clock"
)

// Epoch is the default start time for MockClock
var Epoch = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

// MockClock is a manually driven Clock. It may be read from any goroutine.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to t
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward without running any scheduled callbacks.
// Use MockScheduler.Advance to fire timers.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
