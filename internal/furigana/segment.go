package furigana

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/jusunglee/furigana/internal/alphabet"
)

// Kind distinguishes the two segment shapes.
type Kind uint8

const (
	KindKana Kind = iota + 1
	KindKanji
)

func (k Kind) String() string {
	switch k {
	case KindKana:
		return "kana"
	case KindKanji:
		return "kanji"
	}
	return "invalid"
}

// ErrInvalidSegment is returned when a segment is built from text that cannot
// be encoded.
var ErrInvalidSegment = errors.New("invalid segment")

// Segment is an owned unit of a decomposed furigana string: either a run of
// kana (or any non-annotated text) or a kanji span with its readings.
type Segment struct {
	kind     Kind
	text     string
	readings []string
}

// NewKana builds a kana segment. The text may not contain brackets.
func NewKana(text string) (Segment, error) {
	if strings.ContainsAny(text, "[]") {
		return Segment{}, fmt.Errorf("%w: kana %q contains a bracket", ErrInvalidSegment, text)
	}
	return Segment{kind: KindKana, text: text}, nil
}

// NewKanji builds a kanji segment whose reading covers the whole span.
func NewKanji(text, reading string) (Segment, error) {
	return NewKanjiReadings(text, []string{reading})
}

// NewKanjiReadings builds a kanji segment. readings must hold either one reading
// for the whole span or one reading per character of text.
func NewKanjiReadings(text string, readings []string) (Segment, error) {
	if text == "" {
		return Segment{}, fmt.Errorf("%w: %w", ErrInvalidSegment, ErrEmptyKanjiSpan)
	}
	if strings.ContainsAny(text, "|]") {
		return Segment{}, fmt.Errorf("%w: kanji %q contains a reserved character", ErrInvalidSegment, text)
	}
	if len(readings) == 0 {
		return Segment{}, fmt.Errorf("%w: %w", ErrInvalidSegment, ErrEmptyReading)
	}
	for _, r := range readings {
		if r == "" {
			return Segment{}, fmt.Errorf("%w: %w", ErrInvalidSegment, ErrEmptyReading)
		}
		if strings.ContainsAny(r, "|]") {
			return Segment{}, fmt.Errorf("%w: reading %q contains a reserved character", ErrInvalidSegment, r)
		}
	}
	if !checkAlignment(text, len(readings)) {
		return Segment{}, fmt.Errorf("%w: %w: %d readings for %q", ErrInvalidSegment, ErrAlignmentMismatch, len(readings), text)
	}
	return Segment{kind: KindKanji, text: text, readings: slices.Clone(readings)}, nil
}

// MustKana is like NewKana but panics on error.
func MustKana(text string) Segment {
	s, err := NewKana(text)
	if err != nil {
		panic(err)
	}
	return s
}

// MustKanji is like NewKanjiReadings but panics on error.
func MustKanji(text string, readings ...string) Segment {
	s, err := NewKanjiReadings(text, readings)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Segment) Kind() Kind { return s.kind }
func (s Segment) IsKana() bool { return s.kind == KindKana }
func (s Segment) IsKanji() bool { return s.kind == KindKanji }
func (s Segment) IsEmpty() bool { return s.text == "" }
func (s Segment) Text() string { return s.text }
func (s Segment) ReadingCount() int { return len(s.readings) }

// Readings returns a copy of the readings. It is nil for kana segments.
func (s Segment) Readings() []string {
	return slices.Clone(s.readings)
}

// KanjiText is the surface form of the segment.
func (s Segment) KanjiText() string {
	return s.text
}

// KanaText is the phonetic form: the text itself for kana, the joined readings
// for kanji.
func (s Segment) KanaText() string {
	switch s.kind {
	case KindKana:
		return s.text
	case KindKanji:
		return strings.Join(s.readings, "")
	}
	return ""
}

// IsDetailed reports whether every kanji character has its own reading.
// Single character kanji are always detailed.
func (s Segment) IsDetailed() bool {
	return s.kind == KindKanji && len(s.readings) == utf8.RuneCountInString(s.text)
}

// ContainsKanji reports whether the segment's surface contains any kanji,
// which for kana segments means unannotated kanji.
func (s Segment) ContainsKanji() bool {
	return alphabet.HasKanji(s.text)
}

func (s Segment) Equal(o Segment) bool {
	return s.kind == o.kind && s.text == o.text && slices.Equal(s.readings, o.readings)
}

// Reading returns the segment as a kana/kanji reading pair.
func (s Segment) Reading() Reading {
	if s.kind == KindKanji {
		return Reading{Kana: s.KanaText(), Kanji: s.text}
	}
	return Reading{Kana: s.text}
}

// LiteralReading pairs a run of kanji with its reading.
type LiteralReading struct {
	Literal string `json:"literal"`
	Reading string `json:"reading"`
}

// LiteralReadings returns one pair per character for detailed kanji, a single
// pair for whole-span readings, and nil for kana.
func (s Segment) LiteralReadings() []LiteralReading {
	switch s.kind {
	case KindKanji:
		if !s.IsDetailed() || len(s.readings) == 1 {
			return []LiteralReading{{Literal: s.text, Reading: s.KanaText()}}
		}
		out := make([]LiteralReading, 0, len(s.readings))
		text := s.text
		for i := 0; text != ""; i++ {
			_, size := utf8.DecodeRuneInString(text)
			out = append(out, LiteralReading{Literal: text[:size], Reading: s.readings[i]})
			text = text[size:]
		}
		return out
	}
	return nil
}

// Flatten splits a detailed kanji segment into one segment per character.
// Kana and whole-span kanji come back unchanged.
func (s Segment) Flatten() []Segment {
	if s.kind != KindKanji || !s.IsDetailed() || len(s.readings) == 1 {
		return []Segment{s}
	}
	pairs := s.LiteralReadings()
	out := make([]Segment, len(pairs))
	for i, p := range pairs {
		out[i] = Segment{kind: KindKanji, text: p.Literal, readings: []string{p.Reading}}
	}
	return out
}

// Encode returns the segment in bracket notation.
func (s Segment) Encode() string {
	var b strings.Builder
	NewEncoder(&b).WriteSegment(s)
	return b.String()
}

func (s Segment) String() string {
	return s.Encode()
}

// Reading is a phonetic reading with an optional kanji spelling.
type Reading struct {
	Kana  string `json:"kana"`
	Kanji string `json:"kanji,omitempty"`
}

func (r Reading) HasKanji() bool {
	return r.Kanji != ""
}

// KanjiOrKana returns the kanji spelling, falling back to kana.
func (r Reading) KanjiOrKana() string {
	if r.Kanji != "" {
		return r.Kanji
	}
	return r.Kana
}

// SegmentRef is a borrowed view of a segment that only records offsets into the
// string it was parsed from. Text accessors slice the source without copying;
// use ToOwned to detach from it.
type SegmentRef struct {
	src      string
	kind     Kind
	text     span
	readings []span
}

func (s SegmentRef) Kind() Kind { return s.kind }
func (s SegmentRef) IsKana() bool { return s.kind == KindKana }
func (s SegmentRef) IsKanji() bool { return s.kind == KindKanji }

// Offset is the byte offset of the segment's text within the source.
func (s SegmentRef) Offset() int { return s.text.start }

func (s SegmentRef) Text() string { return s.text.in(s.src) }
func (s SegmentRef) ReadingCount() int { return len(s.readings) }

// ReadingAt returns the i-th reading.
func (s SegmentRef) ReadingAt(i int) string {
	return s.readings[i].in(s.src)
}

// Readings returns the readings as substrings of the source.
func (s SegmentRef) Readings() []string {
	if s.kind != KindKanji {
		return nil
	}
	out := make([]string, len(s.readings))
	for i, r := range s.readings {
		out[i] = r.in(s.src)
	}
	return out
}

func (s SegmentRef) KanjiText() string {
	return s.Text()
}

func (s SegmentRef) KanaText() string {
	switch s.kind {
	case KindKana:
		return s.Text()
	case KindKanji:
		var b strings.Builder
		s.writeKana(&b)
		return b.String()
	}
	return ""
}

func (s SegmentRef) writeKana(b *strings.Builder) {
	switch s.kind {
	case KindKana:
		b.WriteString(s.Text())
	case KindKanji:
		for _, r := range s.readings {
			b.WriteString(r.in(s.src))
		}
	}
}

func (s SegmentRef) IsDetailed() bool {
	return s.kind == KindKanji && len(s.readings) == utf8.RuneCountInString(s.Text())
}

func (s SegmentRef) ContainsKanji() bool {
	return alphabet.HasKanji(s.Text())
}

// ToOwned copies the segment out of its source string.
func (s SegmentRef) ToOwned() Segment {
	seg := Segment{kind: s.kind, text: strings.Clone(s.Text())}
	if s.kind == KindKanji {
		seg.readings = make([]string, len(s.readings))
		for i, r := range s.readings {
			seg.readings[i] = strings.Clone(r.in(s.src))
		}
	}
	return seg
}

// Equal compares by content, not by source position.
func (s SegmentRef) Equal(o SegmentRef) bool {
	if s.kind != o.kind || s.Text() != o.Text() || len(s.readings) != len(o.readings) {
		return false
	}
	for i := range s.readings {
		if s.ReadingAt(i) != o.ReadingAt(i) {
			return false
		}
	}
	return true
}

// EqualSegment compares the view against an owned segment.
func (s SegmentRef) EqualSegment(o Segment) bool {
	if s.kind != o.kind || s.Text() != o.text || len(s.readings) != len(o.readings) {
		return false
	}
	for i := range s.readings {
		if s.ReadingAt(i) != o.readings[i] {
			return false
		}
	}
	return true
}

func (s SegmentRef) String() string {
	var b strings.Builder
	NewEncoder(&b).WriteSegmentRef(s)
	return b.String()
}
