package alphabet

import (
	"slices"
	"strings"
)

// ByAlphabet splits s into maximal runs of characters sharing one alphabet.
// With kanaSame set, hiragana and katakana are treated as the same alphabet.
func ByAlphabet(s string, kanaSame bool) []string {
	var out []string
	start := 0
	prev := Alphabet(-1)
	for i, r := range s {
		a := Of(r)
		if kanaSame && a == Katakana {
			a = Hiragana
		}
		if i > 0 && a != prev {
			out = append(out, s[start:i])
			start = i
		}
		prev = a
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// WordsWithAlphabet returns the maximal runs of s whose characters belong to
// one of the given alphabets.
func WordsWithAlphabet(s string, alphabets ...Alphabet) []string {
	s = strings.TrimSpace(s)
	var out []string
	start := -1
	for i, r := range s {
		if slices.Contains(alphabets, Of(r)) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
