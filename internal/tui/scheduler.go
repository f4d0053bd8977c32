package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typerace/internal/race"
)

// timerFired is posted by a ticker goroutine; the callback runs in Update.
type timerFired struct {
	timer *chanTimer
	at    time.Time
}

type chanTimer struct {
	fn   func(time.Time)
	quit chan struct{}
	once sync.Once
	// stopped is only touched on the update goroutine.
	stopped bool
}

// Stop halts the ticker goroutine. Messages already queued are dropped by fire.
func (t *chanTimer) Stop() {
	t.stopped = true
	t.once.Do(func() {
		close(t.quit)
	})
}

func (t *chanTimer) fire(at time.Time) {
	if t.stopped {
		return
	}
	t.fn(at)
}

// chanScheduler runs one ticker goroutine per timer and funnels ticks into
// the Bubble Tea loop through events.
type chanScheduler struct {
	events chan timerFired
	timers []*chanTimer
}

func newChanScheduler() *chanScheduler {
	return &chanScheduler{events: make(chan timerFired, 16)}
}

// Every implements race.Scheduler.
func (s *chanScheduler) Every(interval time.Duration, fn func(time.Time)) race.Timer {
	t := &chanTimer{fn: fn, quit: make(chan struct{})}
	s.prune()
	s.timers = append(s.timers, t)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.quit:
				return
			case now := <-ticker.C:
				select {
				case s.events <- timerFired{timer: t, at: now}:
				case <-t.quit:
					return
				}
			}
		}
	}()
	return t
}

func (s *chanScheduler) stopAll() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

func (s *chanScheduler) prune() {
	kept := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			kept = append(kept, t)
		}
	}
	s.timers = kept
}

func waitForTimer(events <-chan timerFired) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}
