package furigana

import "unicode/utf8"

// checkAlignment enforces that a kanji span of k characters carries either a
// single whole-span reading or exactly k per-character readings.
func checkAlignment(kanji string, readings int) bool {
	return readings == 1 || readings == utf8.RuneCountInString(kanji)
}

// align turns a scanned token into a segment view over src.
func align(src string, tok rawToken) (SegmentRef, error) {
	switch tok.kind {
	case tokenText:
		return SegmentRef{src: src, kind: KindKana, text: tok.text}, nil
	case tokenBracket:
		kanji := tok.text.in(src)
		if !checkAlignment(kanji, len(tok.readings)) {
			return SegmentRef{}, &ParseError{
				Kind:     AlignmentMismatch,
				Offset:   tok.offset,
				Kanji:    kanji,
				Readings: len(tok.readings),
			}
		}
		return SegmentRef{src: src, kind: KindKanji, text: tok.text, readings: tok.readings}, nil
	}
	panic("furigana: unknown token kind")
}
