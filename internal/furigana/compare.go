package furigana

import "slices"

// Comparator compares segment sequences by content.
//
// Without LiteralMatch two sequences are equal when their kanji and kana
// strings are equal, regardless of how the readings are grouped. With
// LiteralMatch every literal must also carry the same reading, so
// [音楽|おん|がく] equals [音|おん][楽|がく] but not [音楽|おんがく].
type Comparator struct {
	LiteralMatch bool
}

func (c Comparator) Equal(a, b Sequence) bool {
	if !c.LiteralMatch {
		return a.KanjiStr() == b.KanjiStr() && a.KanaStr() == b.KanaStr()
	}
	return slices.Equal(literalPairs(a), literalPairs(b))
}

// EqualSegment compares two single segments.
func (c Comparator) EqualSegment(a, b Segment) bool {
	if !c.LiteralMatch {
		return a.KanjiText() == b.KanjiText() && a.KanaText() == b.KanaText()
	}
	if a.kind != b.kind {
		return false
	}
	if a.IsKana() {
		return a.text == b.text
	}
	return slices.Equal(a.LiteralReadings(), b.LiteralReadings())
}

// EqualFurigana parses both values and compares them. Strings that fail to
// parse are never equal.
func (c Comparator) EqualFurigana(a, b Furigana) (bool, error) {
	sa, err := a.AsSegments()
	if err != nil {
		return false, err
	}
	sb, err := b.AsSegments()
	if err != nil {
		return false, err
	}
	return c.Equal(sa, sb), nil
}

// literalPairs flattens a sequence into literal/reading pairs. Kana runs are
// paired with an empty reading.
func literalPairs(s Sequence) []LiteralReading {
	var out []LiteralReading
	for _, seg := range s {
		if seg.IsKana() {
			out = append(out, LiteralReading{Literal: seg.text})
			continue
		}
		out = append(out, seg.LiteralReadings()...)
	}
	return out
}
