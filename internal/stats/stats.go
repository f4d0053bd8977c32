// Package stats contains race history calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/typerace/internal/model"
)

const (
	sparkChars          = " .:-=+*#%@"
	terminalWidthBackup = 80
	curveLabelWidth     = 10
)

// Summary aggregates a set of races.
type Summary struct {
	Races       int
	Wins        int
	Finished    int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	AvgPlace    float64
}

// WinRate returns the share of races won, 0-1.
func (s Summary) WinRate() float64 {
	if s.Races == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Races)
}

// Summarize aggregates races.
func Summarize(races []model.RaceRecord) Summary {
	sum := Summary{Races: len(races)}
	if len(races) == 0 {
		return sum
	}
	var totalWPM, totalAcc, totalPlace float64
	for _, r := range races {
		totalWPM += float64(r.WPM)
		totalAcc += float64(r.Accuracy)
		totalPlace += float64(r.Place)
		if r.WPM > sum.BestWPM {
			sum.BestWPM = r.WPM
		}
		if r.Won() {
			sum.Wins++
		}
		if r.Finished {
			sum.Finished++
		}
	}
	count := float64(len(races))
	sum.AvgWPM = totalWPM / count
	sum.AvgAccuracy = totalAcc / count
	sum.AvgPlace = totalPlace / count
	return sum
}

// Ordinal renders a 1-based place as 1st, 2nd, 3rd, 4th...
func Ordinal(place int) string {
	suffix := "th"
	switch place % 100 {
	case 11, 12, 13:
	default:
		switch place % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", place, suffix)
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// TerminalWidth returns the stdout width, or a fallback when stdout is not
// a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderSummary prints a summary block for races.
func RenderSummary(w io.Writer, races []model.RaceRecord) error {
	if len(races) == 0 {
		_, err := fmt.Fprintln(w, "No races found.")
		return err
	}
	sum := Summarize(races)
	lines := []string{
		"Summary",
		fmt.Sprintf("Races: %d", sum.Races),
		fmt.Sprintf("Wins: %d (%.0f%%)", sum.Wins, sum.WinRate()*100),
		fmt.Sprintf("Avg WPM: %.1f", sum.AvgWPM),
		fmt.Sprintf("Best WPM: %d", sum.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", sum.AvgAccuracy),
		fmt.Sprintf("Avg Place: %.2f", sum.AvgPlace),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints moving-average sparklines for WPM, accuracy and
// place, fitted to width columns. Width <= 0 uses the terminal width.
func RenderCurves(w io.Writer, races []model.RaceRecord, window, width int) error {
	if len(races) == 0 {
		return nil
	}
	if width <= 0 {
		width = TerminalWidth()
	}
	plotWidth := width - curveLabelWidth - 1
	if plotWidth < 1 {
		plotWidth = 1
	}
	wpms := make([]float64, len(races))
	accs := make([]float64, len(races))
	places := make([]float64, len(races))
	for i, r := range races {
		wpms[i] = float64(r.WPM)
		accs[i] = float64(r.Accuracy)
		// Invert so that a better place draws higher.
		places[i] = -float64(r.Place)
	}
	series := []struct {
		name   string
		values []float64
	}{
		{"WPM", MovingAverage(wpms, window)},
		{"Accuracy", MovingAverage(accs, window)},
		{"Place", MovingAverage(places, window)},
	}
	if _, err := fmt.Fprintf(w, "Curves (moving average, window %d)\n", window); err != nil {
		return err
	}
	for _, s := range series {
		values := s.values
		if len(values) > plotWidth {
			values = values[len(values)-plotWidth:]
		}
		if _, err := fmt.Fprintf(w, "%-*s %s\n", curveLabelWidth, s.name, Sparkline(values)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RaceTable returns headers and rows for a race history table, newest first.
func RaceTable(races []model.RaceRecord) ([]string, [][]string) {
	headers := []string{"Date", "Place", "WPM", "Accuracy", "Errors", "Time", "Winner"}
	rows := make([][]string, 0, len(races))
	for i := len(races) - 1; i >= 0; i-- {
		r := races[i]
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			Ordinal(r.Place),
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%d%%", r.Accuracy),
			fmt.Sprintf("%d", r.Errors),
			FormatClock(r.ElapsedSeconds),
			r.Winner,
		})
	}
	return headers, rows
}

// RenderRaceTable prints the race history table.
func RenderRaceTable(w io.Writer, races []model.RaceRecord) error {
	if len(races) == 0 {
		_, err := fmt.Fprintln(w, "No races found.")
		return err
	}
	headers, rows := RaceTable(races)
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
