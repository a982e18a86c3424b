// Package schedule provides the delayed task queue used to drive flash
// notification timers. Production code runs on the wall clock; tests and the
// headless timeline run on a manual clock that only moves when told to.
package schedule

import (
	"time"
)

// Timer is a handle to a scheduled task.
type Timer interface {
	// Stop cancels the task. It returns false if the task already ran or was stopped.
	Stop() bool
}

// Scheduler runs functions after a delay.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time
	// AfterFunc runs fn once d has elapsed. A non-positive d runs fn as soon as possible.
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealScheduler schedules on the wall clock with time.AfterFunc.
// Callbacks run on their own goroutines.
type RealScheduler struct{}

// NewRealScheduler creates a wall-clock scheduler.
func NewRealScheduler() *RealScheduler {
	return &RealScheduler{}
}

// Now returns time.Now().
func (RealScheduler) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (RealScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	return time.AfterFunc(d, fn)
}
