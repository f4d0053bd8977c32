// Package race implements the race simulation, scoring, and lifecycle.
package race

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"
)

const (
	// TickInterval is the opponent simulation cadence.
	TickInterval = 100 * time.Millisecond
	// ClockInterval is the elapsed-time and live WPM refresh cadence.
	ClockInterval = time.Second

	// HumanID identifies the human competitor.
	HumanID = 0
	// HumanName is the display name of the human competitor.
	HumanName = "You"
)

var (
	// ErrNotIdle is returned when starting a race that is not idle.
	ErrNotIdle = errors.New("race is not idle")
	// ErrNotRunning is returned when finishing a race that is not running.
	ErrNotRunning = errors.New("race is not running")
	// ErrEmptyPassage is returned when the passage source yields no text.
	ErrEmptyPassage = errors.New("passage is empty")
)

// State is the race lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PassageSource supplies one passage per race.
type PassageSource interface {
	Next() string
}

// Competitor is a participant whose completion is tracked.
type Competitor struct {
	ID      int
	Name    string
	Percent int
}

// IsHuman reports whether c is the human competitor.
func (c Competitor) IsHuman() bool {
	return c.ID == HumanID
}

// Stats are the human's final typing statistics.
type Stats struct {
	WPM            int
	Accuracy       int
	Errors         int
	ElapsedSeconds int
}

// Result is the frozen outcome of an ended race.
type Result struct {
	Stats     Stats
	Place     int
	Winner    Competitor
	Standings []Competitor
	Passage   string
	StartedAt time.Time
	EndedAt   time.Time
	// Finished is true when the human reached 100%.
	Finished bool
}

// Options configure a Race.
type Options struct {
	Opponents int
	Pace      float64
	Rand      *rand.Rand
	Scheduler Scheduler
	// OnEnd is called once per race, after timers are stopped.
	OnEnd func(Result)
}

// Race coordinates one human and its simulated opponents through the
// Idle, Running and Ended states. It is not safe for concurrent use; the
// scheduler delivers ticks on the owning goroutine.
type Race struct {
	opts   Options
	source PassageSource

	state    State
	passage  []rune
	profiles []Profile
	sim      *Simulator

	typed      []rune
	eval       Evaluation
	human      int
	startedAt  time.Time
	firstKeyAt time.Time
	elapsed    time.Duration
	liveWPM    int

	result Result
	timers []Timer
}

// New creates an idle race with a passage and opponents selected.
func New(source PassageSource, opts Options) (*Race, error) {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Opponents < 0 {
		opts.Opponents = 0
	}
	r := &Race{opts: opts, source: source}
	if err := r.Reset(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reset moves the race to Idle from any state, picks a new passage and
// re-randomizes the opponents. An empty passage still leaves the race Idle
// with its previous passage and returns ErrEmptyPassage.
func (r *Race) Reset() error {
	r.stopTimers()
	r.state = Idle
	r.typed = nil
	r.eval = Evaluation{Accuracy: 100}
	r.human = 0
	r.startedAt = time.Time{}
	r.firstKeyAt = time.Time{}
	r.elapsed = 0
	r.liveWPM = 0
	r.result = Result{}

	passage := []rune(r.source.Next())
	if len(passage) == 0 {
		if r.sim != nil {
			r.sim = NewSimulator(r.profiles, len(r.passage), r.opts.Rand)
		}
		return ErrEmptyPassage
	}
	r.passage = passage
	r.profiles = NewProfiles(r.opts.Rand, r.opts.Opponents, r.opts.Pace)
	r.sim = NewSimulator(r.profiles, len(passage), r.opts.Rand)
	return nil
}

// Start moves an idle race to Running and arms its timers.
func (r *Race) Start(now time.Time) error {
	if r.state != Idle {
		return fmt.Errorf("cannot start %s race: %w", r.state, ErrNotIdle)
	}
	r.state = Running
	r.startedAt = now
	if r.opts.Scheduler != nil {
		r.timers = append(r.timers,
			r.opts.Scheduler.Every(TickInterval, r.Tick),
			r.opts.Scheduler.Every(ClockInterval, r.refreshClock),
		)
	}
	return nil
}

// Tick advances the opponents to now and ends the race when one finishes.
func (r *Race) Tick(now time.Time) {
	if r.state != Running {
		return
	}
	finished := r.sim.Advance(now.Sub(r.startedAt))
	if len(finished) == 0 {
		return
	}
	r.end(now, r.leaderAtFull(), false)
}

// Keystroke evaluates the full typed buffer.
func (r *Race) Keystroke(text string, now time.Time) {
	if r.state != Running {
		return
	}
	if r.firstKeyAt.IsZero() && text != "" {
		r.firstKeyAt = now
	}
	r.typed = []rune(text)
	r.eval = Evaluate(r.passage, r.typed)
	if r.eval.Percent > r.human {
		r.human = r.eval.Percent
	}
	if r.eval.Percent >= 100 || r.eval.Typed >= len(r.passage) {
		r.end(now, r.competitor(HumanID), true)
	}
}

// Finish ends a running race on the human's request.
func (r *Race) Finish(now time.Time) error {
	if r.state != Running {
		return fmt.Errorf("cannot finish %s race: %w", r.state, ErrNotRunning)
	}
	r.end(now, r.Ranking()[0], false)
	return nil
}

func (r *Race) refreshClock(now time.Time) {
	if r.state != Running {
		return
	}
	r.elapsed = now.Sub(r.startedAt)
	r.liveWPM = r.wpmAt(now)
}

func (r *Race) end(now time.Time, winner Competitor, finished bool) {
	r.stopTimers()
	r.state = Ended
	r.elapsed = now.Sub(r.startedAt)
	r.liveWPM = r.wpmAt(now)

	standings := r.Ranking()
	r.result = Result{
		Stats: Stats{
			WPM:            r.liveWPM,
			Accuracy:       Accuracy(r.eval.Errors, len(r.passage)),
			Errors:         r.eval.Errors,
			ElapsedSeconds: int(r.elapsed / time.Second),
		},
		Place:     placeOf(standings),
		Winner:    winner,
		Standings: standings,
		Passage:   string(r.passage),
		StartedAt: r.startedAt,
		EndedAt:   now,
		Finished:  finished,
	}
	if r.opts.OnEnd != nil {
		r.opts.OnEnd(r.result)
	}
}

func (r *Race) stopTimers() {
	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = nil
}

func (r *Race) wpmAt(now time.Time) int {
	if r.firstKeyAt.IsZero() {
		return 0
	}
	return WPM(string(r.typed), now.Sub(r.firstKeyAt))
}

// leaderAtFull returns the first competitor at 100 in ranking order.
func (r *Race) leaderAtFull() Competitor {
	for _, c := range r.Ranking() {
		if c.Percent >= 100 {
			return c
		}
	}
	return r.Ranking()[0]
}

func (r *Race) competitor(id int) Competitor {
	if id == HumanID {
		return Competitor{ID: HumanID, Name: HumanName, Percent: r.human}
	}
	return Competitor{ID: id, Name: r.profiles[id-1].Name, Percent: r.sim.Percent(id - 1)}
}

// Competitors returns the human followed by the opponents in profile order.
func (r *Race) Competitors() []Competitor {
	out := make([]Competitor, 0, len(r.profiles)+1)
	for id := 0; id <= len(r.profiles); id++ {
		out = append(out, r.competitor(id))
	}
	return out
}

// Ranking returns competitors by completion, descending. Equal percents
// keep their input order.
func (r *Race) Ranking() []Competitor {
	ranked := r.Competitors()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Percent > ranked[j].Percent
	})
	return ranked
}

// Place returns the human's 1-based position in the current ranking.
func (r *Race) Place() int {
	return placeOf(r.Ranking())
}

func placeOf(ranking []Competitor) int {
	for i, c := range ranking {
		if c.IsHuman() {
			return i + 1
		}
	}
	return len(ranking)
}

// State returns the lifecycle state.
func (r *Race) State() State {
	return r.state
}

// Passage returns the passage for this race.
func (r *Race) Passage() []rune {
	return r.passage
}

// Typed returns the last evaluated buffer.
func (r *Race) Typed() []rune {
	return r.typed
}

// Evaluation returns the live evaluation of the typed buffer.
func (r *Race) Evaluation() Evaluation {
	return r.eval
}

// Profiles returns this race's opponents.
func (r *Race) Profiles() []Profile {
	return r.profiles
}

// ElapsedSeconds returns whole seconds since start as of the last clock tick.
func (r *Race) ElapsedSeconds() int {
	return int(r.elapsed / time.Second)
}

// LiveWPM returns the WPM computed on the last clock tick or keystroke end.
func (r *Race) LiveWPM() int {
	return r.liveWPM
}

// Result returns the final outcome; ok is false until the race has ended.
func (r *Race) Result() (Result, bool) {
	if r.state != Ended {
		return Result{}, false
	}
	return r.result, true
}
