package passage

import (
	"math/rand"
	"strings"
	"unicode"
)

const defaultPunctSet = ".,!?;:"

// Generate builds a passage of count words drawn uniformly from words,
// applying caps/punctuation rules per word. The passage always starts with
// a capital letter and ends with a period.
func Generate(rnd *rand.Rand, words []string, count int, capsPct, punctPct float64) string {
	if len(words) == 0 || count <= 0 {
		return ""
	}
	punctSet := []rune(defaultPunctSet)
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := words[rnd.Intn(len(words))]
		if i == 0 {
			word = capitalize(word)
		} else {
			word = applyCaps(rnd, word, capsPct)
		}
		if i < count-1 {
			word = applyPunct(rnd, word, punctPct, punctSet)
		}
		result = append(result, word)
	}
	return strings.Join(result, " ") + "."
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	return capitalize(word)
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
