package passage

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinLength is the shortest passage, in runes, a race will accept.
const MinLength = 10

// Normalize collapses whitespace runs to single spaces and drops control
// characters, so every passage rune can be typed.
func Normalize(text string) string {
	fields := strings.FieldsFunc(text, unicode.IsSpace)
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		for _, r := range field {
			if unicode.IsControl(r) || r == utf8.RuneError {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether text is long enough to race on.
func Valid(text string) bool {
	return utf8.RuneCountInString(text) >= MinLength
}

func wordFilter(word string) bool {
	for _, r := range word {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return word != ""
}
