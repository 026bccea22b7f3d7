// Package alphabet classifies single characters of Japanese text.
package alphabet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Alphabet is the writing system a character belongs to.
type Alphabet int

const (
	Other Alphabet = iota
	Hiragana
	Katakana
	Kanji
	Symbol
	Romaji
)

var alphabetNames = []string{"other", "hiragana", "katakana", "kanji", "symbol", "romaji"}

func (a Alphabet) String() string {
	if int(a) < len(alphabetNames) {
		return alphabetNames[a]
	}
	return "unknown"
}

// IsKana reports whether a is Hiragana or Katakana.
func (a Alphabet) IsKana() bool {
	return a == Hiragana || a == Katakana
}

const (
	hiraganaStart = 0x3041
	hiraganaEnd   = 0x309F
	katakanaStart = 0x30A0
	katakanaEnd   = 0x30FF
	kanaOffset    = 0x60

	halfwidthKanaStart = 0xFF65
	halfwidthKanaEnd   = 0xFF9F
)

// Of returns the alphabet of r.
func Of(r rune) Alphabet {
	switch {
	case IsHiragana(r):
		return Hiragana
	case IsKatakana(r):
		return Katakana
	case IsKanji(r):
		return Kanji
	case IsRomaji(r):
		return Romaji
	case IsSymbol(r):
		return Symbol
	default:
		return Other
	}
}

func IsHiragana(r rune) bool {
	return r >= hiraganaStart && r <= hiraganaEnd
}

// IsKatakana also accepts halfwidth katakana.
func IsKatakana(r rune) bool {
	return (r >= katakanaStart && r <= katakanaEnd) ||
		(r >= halfwidthKanaStart && r <= halfwidthKanaEnd) ||
		unicode.In(r, unicode.Katakana)
}

func IsKana(r rune) bool {
	return IsHiragana(r) || IsKatakana(r)
}

func IsKanji(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

// IsRomaji reports whether r is a latin letter or digit, in either width.
func IsRomaji(r rune) bool {
	if (r >= '0' && r <= '9') || (r >= '０' && r <= '９') {
		return true
	}
	return unicode.Is(unicode.Latin, r)
}

// IsSymbol covers CJK punctuation and generic punctuation or symbols.
func IsSymbol(r rune) bool {
	switch {
	case r >= 0x3000 && r <= 0x303F:
		return true
	case r >= 0x25A0 && r <= 0x25FF:
		return true
	case r >= 0xFF00 && r <= 0xFFEF:
		return !IsRomaji(r) && !IsKatakana(r)
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// IsHalfwidth reports whether r is rendered at half width (ASCII, halfwidth kana).
func IsHalfwidth(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianHalfwidth, width.EastAsianNarrow:
		return true
	}
	return false
}

// IsFullwidth reports whether r is rendered at full width.
func IsFullwidth(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianFullwidth, width.EastAsianWide:
		return true
	}
	return false
}

// HasKanji reports whether s contains at least one kanji.
func HasKanji(s string) bool {
	return strings.IndexFunc(s, IsKanji) >= 0
}

// IsKanaString reports whether s is non-empty and consists only of kana.
func IsKanaString(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsKana(r) && r != 'ー' {
			return false
		}
	}
	return true
}

// ToHiragana converts katakana, including halfwidth katakana, to hiragana.
func ToHiragana(s string) string {
	s = Normalize(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x30A1 && r <= 0x30F6 {
			r -= kanaOffset
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToKatakana converts hiragana to katakana.
func ToKatakana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x3041 && r <= 0x3096 {
			r += kanaOffset
		}
		b.WriteRune(r)
	}
	return b.String()
}

var halfwidthKana = runes.Predicate(func(r rune) bool {
	return r >= halfwidthKanaStart && r <= halfwidthKanaEnd
})

// Normalize widens halfwidth katakana and composes the result to NFC, so that
// ｶﾞ and ガ compare equal. Other characters, brackets included, keep their width.
func Normalize(s string) string {
	t := transform.Chain(runes.If(halfwidthKana, width.Widen, transform.Nop), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		return out
	}
	return s
}
