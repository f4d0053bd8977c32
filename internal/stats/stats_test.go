package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/typerace/internal/model"
)

func TestSummarize(t *testing.T) {
	races := []model.RaceRecord{
		{WPM: 40, Accuracy: 90, Place: 1, Finished: true},
		{WPM: 60, Accuracy: 100, Place: 3},
	}
	sum := Summarize(races)
	if sum.Races != 2 || sum.Wins != 1 || sum.Finished != 1 || sum.BestWPM != 60 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.AvgWPM != 50 || sum.AvgAccuracy != 95 || sum.AvgPlace != 2 {
		t.Fatalf("unexpected averages: %+v", sum)
	}
	if sum.WinRate() != 0.5 {
		t.Fatalf("expected win rate 0.5, got %v", sum.WinRate())
	}
	if (Summary{}).WinRate() != 0 {
		t.Fatalf("expected zero win rate for no races")
	}
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 8: "8th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 102: "102nd"}
	for place, want := range cases {
		if got := Ordinal(place); got != want {
			t.Fatalf("Ordinal(%d) = %q, want %q", place, got, want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[int]string{0: "0:00", 7: "0:07", 65: "1:05", 600: "10:00", -3: "0:00"}
	for seconds, want := range cases {
		if got := FormatClock(seconds); got != want {
			t.Fatalf("FormatClock(%d) = %q, want %q", seconds, got, want)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{10, 20, 30, 40}
	got := MovingAverage(values, 2)
	want := []float64{10, 15, 25, 35}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	same := MovingAverage(values, 1)
	same[0] = 99
	if values[0] != 10 {
		t.Fatalf("expected window 1 to copy input")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	line := Sparkline([]float64{0, 50, 100})
	if len(line) != 3 || line[0] != ' ' || line[2] != '@' {
		t.Fatalf("unexpected sparkline %q", line)
	}
}

func TestRenderCurvesFitsWidth(t *testing.T) {
	races := make([]model.RaceRecord, 50)
	for i := range races {
		races[i] = model.RaceRecord{WPM: i, Accuracy: 90, Place: 1 + i%4}
	}
	var buf bytes.Buffer
	if err := RenderCurves(&buf, races, 5, 30); err != nil {
		t.Fatalf("RenderCurves failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected title and three curves, got %q", buf.String())
	}
	for _, line := range lines[1:] {
		if len(line) > 30 {
			t.Fatalf("curve wider than 30 columns: %q", line)
		}
	}
}
