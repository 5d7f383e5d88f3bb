package search

import "time"

// Scheduler runs f once after d. The returned function cancels the call and reports whether it did so
// before f started.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// TimerScheduler schedules with [time.AfterFunc].
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}
