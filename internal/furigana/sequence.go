package furigana

import "strings"

// Sequence is an owned, ordered list of segments.
type Sequence []Segment

func (s Sequence) KanjiStr() string {
	var b strings.Builder
	for _, seg := range s {
		b.WriteString(seg.KanjiText())
	}
	return b.String()
}

func (s Sequence) KanaStr() string {
	var b strings.Builder
	for _, seg := range s {
		b.WriteString(seg.KanaText())
	}
	return b.String()
}

func (s Sequence) HasKanji() bool {
	for _, seg := range s {
		if seg.IsKanji() {
			return true
		}
	}
	return false
}

// Encode writes the sequence in bracket notation.
func (s Sequence) Encode() string {
	var b strings.Builder
	enc := NewEncoder(&b)
	for _, seg := range s {
		enc.WriteSegment(seg)
	}
	return b.String()
}

func (s Sequence) Furigana() Furigana {
	return New(s.Encode())
}

// Flatten splits every detailed kanji segment into single character segments.
func (s Sequence) Flatten() Sequence {
	out := make(Sequence, 0, len(s))
	for _, seg := range s {
		out = append(out, seg.Flatten()...)
	}
	return out
}

func (s Sequence) Reading() Reading {
	r := Reading{Kana: s.KanaStr()}
	if s.HasKanji() {
		r.Kanji = s.KanjiStr()
	}
	return r
}

func (s Sequence) Equal(o Sequence) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if !s[i].Equal(o[i]) {
			return false
		}
	}
	return true
}
