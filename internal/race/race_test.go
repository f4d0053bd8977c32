package race

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"
)

type fixedSource struct {
	passages []string
	next     int
}

func (f *fixedSource) Next() string {
	p := f.passages[f.next%len(f.passages)]
	f.next++
	return p
}

func newTestRace(t *testing.T, passages []string, opponents int) (*Race, *ManualScheduler, *[]Result) {
	t.Helper()
	sched := NewManualScheduler(time.Unix(1000, 0))
	var results []Result
	r, err := New(&fixedSource{passages: passages}, Options{
		Opponents: opponents,
		Pace:      1,
		Rand:      rand.New(rand.NewSource(11)),
		Scheduler: sched,
		OnEnd: func(res Result) {
			results = append(results, res)
		},
	})
	if err != nil {
		t.Fatalf("new race: %v", err)
	}
	return r, sched, &results
}

func TestRaceLifecycle(t *testing.T) {
	r, sched, results := newTestRace(t, []string{"cat"}, 3)
	if r.State() != Idle {
		t.Fatalf("expected idle, got %s", r.State())
	}

	r.Keystroke("c", sched.Now())
	if len(r.Typed()) != 0 {
		t.Fatalf("expected keystroke to be ignored while idle")
	}

	if err := r.Start(sched.Now()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if sched.Active() != 2 {
		t.Fatalf("expected 2 timers, got %d", sched.Active())
	}
	if err := r.Start(sched.Now()); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("expected ErrNotIdle, got %v", err)
	}

	sched.Advance(30 * time.Second)
	if r.State() != Ended {
		t.Fatalf("expected opponents to finish a 3 char passage, got %s", r.State())
	}
	if len(*results) != 1 {
		t.Fatalf("expected one result, got %d", len(*results))
	}
	if err := r.Start(sched.Now()); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("expected ended race to refuse start, got %v", err)
	}
}

func TestRaceHumanFinishes(t *testing.T) {
	r, sched, results := newTestRace(t, []string{"cat"}, 3)
	if err := r.Start(sched.Now()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Keystroke("c", sched.Now())
	sched.Advance(50 * time.Millisecond)
	r.Keystroke("ca", sched.Now())
	r.Keystroke("cat", sched.Now())

	if r.State() != Ended {
		t.Fatalf("expected ended, got %s", r.State())
	}
	if sched.Active() != 0 {
		t.Fatalf("expected timers to be stopped, got %d", sched.Active())
	}
	res, ok := r.Result()
	if !ok {
		t.Fatalf("expected result")
	}
	if !res.Finished || !res.Winner.IsHuman() || res.Place != 1 {
		t.Fatalf("expected human win, got %+v", res)
	}
	if res.Stats.Errors != 0 || res.Stats.Accuracy != 100 {
		t.Fatalf("unexpected stats: %+v", res.Stats)
	}
	if len(*results) != 1 {
		t.Fatalf("expected OnEnd once, got %d", len(*results))
	}
}

func TestRaceFinalAccuracyAgainstPassage(t *testing.T) {
	r, sched, _ := newTestRace(t, []string{"cat"}, 0)
	if err := r.Start(sched.Now()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Keystroke("cbt", sched.Now())
	res, ok := r.Result()
	if !ok {
		t.Fatalf("expected race to end")
	}
	if res.Stats.Errors != 1 || res.Stats.Accuracy != 67 {
		t.Fatalf("unexpected stats: %+v", res.Stats)
	}
}

func TestRaceOpponentWins(t *testing.T) {
	passage := strings.Repeat("abcd ", 20)
	r, sched, results := newTestRace(t, []string{passage}, 3)
	if err := r.Start(sched.Now()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Keystroke("abcd", sched.Now())

	for i := 0; i < 600 && r.State() == Running; i++ {
		sched.Advance(TickInterval)
	}
	if r.State() != Ended {
		t.Fatalf("expected an opponent to finish")
	}
	res, _ := r.Result()
	if res.Winner.IsHuman() || res.Winner.Percent != 100 {
		t.Fatalf("expected an opponent winner at 100, got %+v", res.Winner)
	}
	if res.Finished {
		t.Fatalf("human did not finish the passage")
	}
	if res.Place != 4 {
		t.Fatalf("expected human last, got place %d", res.Place)
	}

	frozen := r.Competitors()
	sched.Advance(10 * time.Second)
	r.Keystroke(passage, sched.Now())
	after := r.Competitors()
	for i := range frozen {
		if frozen[i].Percent != after[i].Percent {
			t.Fatalf("competitor %d moved after end: %d -> %d", i, frozen[i].Percent, after[i].Percent)
		}
	}
	if len(*results) != 1 {
		t.Fatalf("expected race to end once, got %d", len(*results))
	}
}

func TestRaceHumanPercentNeverDecreases(t *testing.T) {
	r, sched, _ := newTestRace(t, []string{"abcdefghij"}, 1)
	if err := r.Start(sched.Now()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Keystroke("abcde", sched.Now())
	r.Keystroke("abc", sched.Now())
	human := r.Competitors()[0]
	if human.Percent != 50 {
		t.Fatalf("expected high-water mark 50, got %d", human.Percent)
	}
	if r.Evaluation().Percent != 30 {
		t.Fatalf("expected live evaluation 30, got %d", r.Evaluation().Percent)
	}
}

func TestRaceRankingTieBreak(t *testing.T) {
	r, sched, _ := newTestRace(t, []string{"abcdefghij"}, 3)
	ranking := r.Ranking()
	for i, c := range ranking {
		if c.ID != i {
			t.Fatalf("expected input order on ties, got %+v", ranking)
		}
	}
	if err := r.Start(sched.Now()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Keystroke("abc", sched.Now())
	ranking = r.Ranking()
	if !ranking[0].IsHuman() {
		t.Fatalf("expected human to lead, got %+v", ranking)
	}
	if r.Place() != 1 {
		t.Fatalf("expected place 1, got %d", r.Place())
	}
	seen := map[int]bool{}
	for i, c := range ranking {
		seen[c.ID] = true
		if i > 0 && ranking[i-1].Percent < c.Percent {
			t.Fatalf("ranking not descending: %+v", ranking)
		}
	}
	if len(seen) != 4 {
		t.Fatalf("ranking is not a permutation: %+v", ranking)
	}
}

func TestRaceFinishAndReset(t *testing.T) {
	first := "first " + strings.Repeat("x", 200)
	r, sched, results := newTestRace(t, []string{first, "second passage"}, 2)
	if err := r.Finish(sched.Now()); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
	if err := r.Start(sched.Now()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Keystroke("first", sched.Now())
	sched.Advance(2500 * time.Millisecond)
	if r.ElapsedSeconds() != 2 {
		t.Fatalf("expected 2 elapsed seconds, got %d", r.ElapsedSeconds())
	}
	if err := r.Finish(sched.Now()); err != nil {
		t.Fatalf("finish: %v", err)
	}
	res, ok := r.Result()
	if !ok || res.Stats.ElapsedSeconds != 2 || res.Stats.WPM != 24 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(*results) != 1 {
		t.Fatalf("expected OnEnd once, got %d", len(*results))
	}

	profiles := r.Profiles()
	if err := r.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if r.State() != Idle {
		t.Fatalf("expected idle after reset, got %s", r.State())
	}
	if string(r.Passage()) != "second passage" {
		t.Fatalf("expected next passage, got %q", string(r.Passage()))
	}
	if _, ok := r.Result(); ok {
		t.Fatalf("expected result cleared after reset")
	}
	if r.Profiles()[0].Speed == profiles[0].Speed {
		t.Fatalf("expected opponents to be re-randomized")
	}
	for _, c := range r.Competitors() {
		if c.Percent != 0 {
			t.Fatalf("expected percents cleared, got %+v", c)
		}
	}
}

func TestRaceResetCancelsTimers(t *testing.T) {
	r, sched, results := newTestRace(t, []string{"some passage text"}, 2)
	if err := r.Start(sched.Now()); err != nil {
		t.Fatalf("start: %v", err)
	}
	sched.Advance(time.Second)
	if err := r.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if sched.Active() != 0 {
		t.Fatalf("expected timers cancelled on reset, got %d", sched.Active())
	}
	sched.Advance(time.Minute)
	for _, c := range r.Competitors() {
		if c.Percent != 0 {
			t.Fatalf("stale tick mutated state: %+v", c)
		}
	}
	if len(*results) != 0 {
		t.Fatalf("expected no result after reset, got %d", len(*results))
	}
}

func TestNewRejectsEmptyPassage(t *testing.T) {
	if _, err := New(&fixedSource{passages: []string{""}}, Options{}); !errors.Is(err, ErrEmptyPassage) {
		t.Fatalf("expected ErrEmptyPassage, got %v", err)
	}
}

func TestRaceEndsWhenCompletionRoundsToFull(t *testing.T) {
	passage := strings.Repeat("abcd ", 40)
	r, sched, results := newTestRace(t, []string{passage}, 3)
	if err := r.Start(sched.Now()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Keystroke(passage[:198], sched.Now())
	if r.State() != Running {
		t.Fatalf("expected race running at 99%%, got %s", r.State())
	}
	r.Keystroke(passage[:199], sched.Now())
	if r.State() != Ended {
		t.Fatalf("expected race to end at 100%%, got %s", r.State())
	}
	res, _ := r.Result()
	if !res.Winner.IsHuman() || !res.Finished || res.Winner.Percent != 100 {
		t.Fatalf("expected human win at 100, got %+v", res)
	}
	if len(*results) != 1 {
		t.Fatalf("expected OnEnd once, got %d", len(*results))
	}
}

func TestRaceResetWithEmptyPassageStillStops(t *testing.T) {
	r, sched, results := newTestRace(t, []string{"first passage", ""}, 2)
	if err := r.Start(sched.Now()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Keystroke("first", sched.Now())
	sched.Advance(time.Second)

	if err := r.Reset(); !errors.Is(err, ErrEmptyPassage) {
		t.Fatalf("expected ErrEmptyPassage, got %v", err)
	}
	if r.State() != Idle {
		t.Fatalf("expected idle after reset, got %s", r.State())
	}
	if sched.Active() != 0 {
		t.Fatalf("expected timers cancelled, got %d", sched.Active())
	}
	if string(r.Passage()) != "first passage" || len(r.Typed()) != 0 {
		t.Fatalf("expected previous passage kept and input cleared, got %q %q", string(r.Passage()), string(r.Typed()))
	}
	for _, c := range r.Competitors() {
		if c.Percent != 0 {
			t.Fatalf("expected percents cleared, got %+v", c)
		}
	}
	sched.Advance(time.Minute)
	if len(*results) != 0 {
		t.Fatalf("expected no result after reset, got %d", len(*results))
	}
	if err := r.Start(sched.Now()); err != nil {
		t.Fatalf("expected restart after failed reset: %v", err)
	}
}
