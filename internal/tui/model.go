// Package tui provides the Bubble Tea race interface.
package tui

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typerace/internal/model"
	"github.com/verte-zerg/typerace/internal/race"
	"github.com/verte-zerg/typerace/internal/stats"
	"github.com/verte-zerg/typerace/internal/store"
)

// Model implements the Bubble Tea race UI.
type Model struct {
	race  *race.Race
	sched *chanScheduler
	store *store.Store
	keys  keyMap
	now   func() time.Time

	width  int
	height int

	input   []rune
	errMsg  string
	history []model.RaceRecord
	summary stats.Summary
}

// NewModel constructs a race TUI model. st may be nil to disable history.
func NewModel(cfg model.Config, src race.PassageSource, rnd *rand.Rand, st *store.Store) (*Model, error) {
	return newModel(src, race.Options{
		Opponents: cfg.Opponents,
		Pace:      cfg.Pace,
		Rand:      rnd,
	}, st)
}

func newModel(src race.PassageSource, opts race.Options, st *store.Store) (*Model, error) {
	m := &Model{
		sched: newChanScheduler(),
		store: st,
		keys:  defaultKeyMap(),
		now:   time.Now,
	}
	if opts.Scheduler == nil {
		opts.Scheduler = m.sched
	}
	opts.OnEnd = m.recordResult
	r, err := race.New(src, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create race: %w", err)
	}
	m.race = r
	m.loadHistory()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitForTimer(m.sched.events)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerFired:
		msg.timer.fire(msg.at)
		return m, waitForTimer(m.sched.events)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.sched.stopAll()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reset):
		m.reset()
		return m, nil
	case key.Matches(msg, m.keys.Finish):
		if m.race.State() == race.Running {
			if err := m.race.Finish(m.now()); err != nil {
				m.errMsg = err.Error()
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.Start):
		switch m.race.State() {
		case race.Idle:
			m.start()
		case race.Ended:
			m.reset()
		}
		return m, nil
	case key.Matches(msg, m.keys.Backspace):
		m.handleBackspace()
		return m, nil
	}
	switch msg.Type {
	case tea.KeySpace:
		m.handleRunes([]rune{' '})
	case tea.KeyRunes:
		m.handleRunes(msg.Runes)
	}
	return m, nil
}

func (m *Model) start() {
	if err := m.race.Start(m.now()); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
}

func (m *Model) reset() {
	m.input = nil
	if err := m.race.Reset(); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
}

func (m *Model) handleRunes(runes []rune) {
	switch m.race.State() {
	case race.Ended:
		return
	case race.Idle:
		// Typing doubles as the start command.
		m.start()
	}
	limit := len(m.race.Passage())
	for _, r := range runes {
		if len(m.input) >= limit {
			break
		}
		m.input = append(m.input, r)
	}
	m.race.Keystroke(string(m.input), m.now())
}

func (m *Model) handleBackspace() {
	if m.race.State() != race.Running || len(m.input) == 0 {
		return
	}
	m.input = m.input[:len(m.input)-1]
	m.race.Keystroke(string(m.input), m.now())
}

func (m *Model) loadHistory() {
	if m.store == nil {
		return
	}
	races, err := m.store.ListRaces(context.Background(), model.StatsConfig{})
	if err != nil {
		logErrf("failed to load race history: %v\n", err)
		return
	}
	m.history = races
	m.summary = stats.Summarize(races)
}

func (m *Model) recordResult(res race.Result) {
	rec := recordFromResult(res)
	m.history = append(m.history, rec)
	m.summary = stats.Summarize(m.history)
	if m.store == nil {
		return
	}
	if _, err := m.store.InsertRace(context.Background(), rec); err != nil {
		logErrf("failed to save race: %v\n", err)
	}
}

func recordFromResult(res race.Result) model.RaceRecord {
	opponents := len(res.Standings) - 1
	if opponents < 0 {
		opponents = 0
	}
	return model.RaceRecord{
		StartedAt:      res.StartedAt,
		EndedAt:        res.EndedAt,
		PassageChars:   utf8.RuneCountInString(res.Passage),
		Opponents:      opponents,
		WPM:            res.Stats.WPM,
		Accuracy:       res.Stats.Accuracy,
		Errors:         res.Stats.Errors,
		ElapsedSeconds: res.Stats.ElapsedSeconds,
		Place:          res.Place,
		Winner:         res.Winner.Name,
		Finished:       res.Finished,
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
