package race

import "time"

// Timer is a handle to a periodic callback.
type Timer interface {
	Stop()
}

// Scheduler arms periodic callbacks. Implementations must invoke fn on the
// goroutine that owns the Race.
type Scheduler interface {
	Every(interval time.Duration, fn func(now time.Time)) Timer
}

// ManualScheduler fires callbacks in virtual time when Advance is called.
type ManualScheduler struct {
	now     time.Time
	entries []*manualEntry
}

type manualEntry struct {
	interval time.Duration
	next     time.Time
	fn       func(time.Time)
	stopped  bool
}

func (e *manualEntry) Stop() {
	e.stopped = true
}

// NewManualScheduler returns a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Every implements Scheduler.
func (s *ManualScheduler) Every(interval time.Duration, fn func(time.Time)) Timer {
	if interval <= 0 {
		interval = time.Millisecond
	}
	e := &manualEntry{interval: interval, next: s.now.Add(interval), fn: fn}
	s.entries = append(s.entries, e)
	return e
}

// Now returns the virtual clock.
func (s *ManualScheduler) Now() time.Time {
	return s.now
}

// Active returns the number of timers that have not been stopped.
func (s *ManualScheduler) Active() int {
	s.prune()
	return len(s.entries)
}

// Advance moves the clock forward by d, firing due callbacks in time order.
// Callbacks due at the same instant fire in registration order.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now.Add(d)
	for {
		e := s.nextDue(target)
		if e == nil {
			break
		}
		s.now = e.next
		e.next = e.next.Add(e.interval)
		e.fn(s.now)
	}
	s.now = target
	s.prune()
}

func (s *ManualScheduler) nextDue(target time.Time) *manualEntry {
	var due *manualEntry
	for _, e := range s.entries {
		if e.stopped || e.next.After(target) {
			continue
		}
		if due == nil || e.next.Before(due.next) {
			due = e
		}
	}
	return due
}

func (s *ManualScheduler) prune() {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !e.stopped {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = nil
	}
	s.entries = kept
}
