package race

import (
	"math"
	"strings"
	"time"
)

// Mark classifies one position of the passage or typed buffer.
type Mark int

const (
	// Pending positions have not been typed yet.
	Pending Mark = iota
	// Correct positions match the passage.
	Correct
	// Wrong positions differ from the passage or lie past its end.
	Wrong
)

// Evaluation is the derived state of a typed buffer against a passage.
type Evaluation struct {
	Typed    int
	Errors   int
	Percent  int
	Accuracy int
}

// Evaluate compares typed against passage from scratch.
func Evaluate(passage, typed []rune) Evaluation {
	errors := 0
	for i, r := range typed {
		if i >= len(passage) || r != passage[i] {
			errors++
		}
	}
	return Evaluation{
		Typed:    len(typed),
		Errors:   errors,
		Percent:  CompletionPercent(len(typed), len(passage)),
		Accuracy: Accuracy(errors, len(typed)),
	}
}

// Marks returns one mark per position, covering the longer of passage and typed.
func Marks(passage, typed []rune) []Mark {
	n := len(passage)
	if len(typed) > n {
		n = len(typed)
	}
	marks := make([]Mark, n)
	for i := range marks {
		switch {
		case i >= len(typed):
			marks[i] = Pending
		case i < len(passage) && typed[i] == passage[i]:
			marks[i] = Correct
		default:
			marks[i] = Wrong
		}
	}
	return marks
}

// CompletionPercent maps typed length onto 0-100.
func CompletionPercent(typedLen, passageLen int) int {
	if passageLen <= 0 || typedLen <= 0 {
		return 0
	}
	return int(math.Min(100, math.Round(float64(typedLen)/float64(passageLen)*100)))
}

// Accuracy returns the share of error-free positions over max(1, total).
func Accuracy(errors, total int) int {
	if total < 1 {
		total = 1
	}
	acc := int(math.Round(100 * (1 - float64(errors)/float64(total))))
	if acc < 0 {
		return 0
	}
	return acc
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// WPM returns words per minute over elapsed; zero elapsed gives zero.
func WPM(text string, elapsed time.Duration) int {
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return 0
	}
	return int(math.Round(float64(WordCount(text)) / minutes))
}
