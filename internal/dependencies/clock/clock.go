package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// Scheduler runs a callback once after a delay
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// TimerScheduler fires callbacks from real timers and hands them to post,
// which is expected to run them on the owning goroutine.
type TimerScheduler struct {
	post func(fn func())
}

// NewTimerScheduler creates a TimerScheduler that delivers through post
func NewTimerScheduler(post func(fn func())) *TimerScheduler {
	return &TimerScheduler{post: post}
}

// AfterFunc schedules fn to be posted after d
func (s *TimerScheduler) AfterFunc(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	time.AfterFunc(d, func() {
		s.post(fn)
	})
}

// UnixMilli returns the clock's current time in milliseconds since the epoch
func UnixMilli(c Clock) int64 {
	return c.Now().UnixMilli()
}
