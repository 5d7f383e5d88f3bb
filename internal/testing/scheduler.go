package testing

import (
	"sync"
	"time"
)

// FakeScheduler records scheduled callbacks and runs them only when told to.
//
// It satisfies the search coordinator's scheduler without importing it.
type FakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

// AfterFunc schedules fn and returns a stop function with [time.Timer.Stop] semantics.
func (s *FakeScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := &fakeTimer{delay: d, fn: fn}
	s.timers = append(s.timers, timer)

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if timer.stopped || timer.fired {
			return false
		}
		timer.stopped = true
		return true
	}
}

// Fire runs every timer that is neither stopped nor fired and returns how many ran.
func (s *FakeScheduler) Fire() int {
	s.mu.Lock()
	var due []func()
	for _, timer := range s.timers {
		if !timer.stopped && !timer.fired {
			timer.fired = true
			due = append(due, timer.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range due {
		fn()
	}
	return len(due)
}

// Pending returns the number of timers waiting to fire.
func (s *FakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, timer := range s.timers {
		if !timer.stopped && !timer.fired {
			n++
		}
	}
	return n
}

// Scheduled returns the number of timers created so far.
func (s *FakeScheduler) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// LastDelay returns the delay of the most recent timer.
func (s *FakeScheduler) LastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return 0
	}
	return s.timers[len(s.timers)-1].delay
}
