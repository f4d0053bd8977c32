package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typerace/internal/race"
)

const wrongSpace = '•'

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes styles each passage rune by its mark. The pending word
// under the cursor is highlighted; cursorIndex < 0 hides the cursor.
func buildStyledRunes(passage []rune, marks []race.Mark, cursorIndex int) []styledRune {
	current := wordAt(findWords(passage), cursorIndex)

	out := make([]styledRune, 0, len(passage))
	for i, target := range passage {
		displayed := target
		style := pendingStyle
		switch marks[i] {
		case race.Correct:
			style = correctStyle
		case race.Wrong:
			style = incorrectStyle
			if target == ' ' {
				displayed = wrongSpace
			}
		default:
			if target != ' ' && current != nil && i >= current.start && i < current.end {
				style = currentWordStyle
			}
		}
		if i == cursorIndex {
			style = style.Underline(true)
		}
		out = append(out, styledRune{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: target == ' ',
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(passage []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range passage {
		if r == ' ' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(passage)})
	}
	return words
}

// wordAt returns the word containing the cursor, or the next one when the
// cursor sits on a space.
func wordAt(words []wordRange, cursorIndex int) *wordRange {
	if cursorIndex < 0 {
		return nil
	}
	for i := range words {
		if cursorIndex < words[i].end {
			return &words[i]
		}
	}
	return nil
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at the last space that fits width, or hard
// wraps words longer than a line.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpace := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpace >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpace]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpace+1:]...)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
			}
			lineWidth, lastSpace = measure(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpace = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func measure(line []styledRune) (width, lastSpace int) {
	lastSpace = -1
	for i, item := range line {
		width += item.width
		if item.isSpace {
			lastSpace = i
		}
	}
	return width, lastSpace
}
