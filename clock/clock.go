// Package clock abstracts elapsed-time measurement and deferred scheduling.
//
// Production code uses System, which measures monotonic milliseconds since
// construction and schedules with time.AfterFunc. Tests use Manual, which
// advances only when told to and fires due callbacks deterministically.
package clock

import "time"

// Clock supplies monotonically non-decreasing elapsed time in milliseconds.
type Clock interface {
	// Now returns elapsed milliseconds, rounded to the nearest millisecond.
	Now() int64
}

// Handle refers to a pending scheduled callback.
type Handle interface {
	// Cancel stops the callback if it has not fired yet.
	// Returns true if the callback was prevented from running.
	Cancel() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	// ScheduleAfter runs fn once after d has elapsed. Non-positive delays
	// fire as soon as possible. The callback runs on a scheduler-owned
	// goroutine with no ordering guarantee beyond the requested delay.
	ScheduleAfter(d time.Duration, fn func()) Handle
}

// System implements Clock and Scheduler on top of the runtime clock.
// The zero value is not usable; construct with NewSystem.
type System struct {
	start time.Time
}

// NewSystem creates a System whose elapsed time starts at zero.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// Now returns milliseconds since construction.
func (s *System) Now() int64 {
	return time.Since(s.start).Round(time.Millisecond).Milliseconds()
}

// ScheduleAfter runs fn after d using time.AfterFunc.
func (s *System) ScheduleAfter(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	return timerHandle{timer: time.AfterFunc(d, fn)}
}

type timerHandle struct {
	timer *time.Timer
}

func (h timerHandle) Cancel() bool {
	return h.timer.Stop()
}
