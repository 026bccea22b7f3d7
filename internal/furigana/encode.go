package furigana

import "strings"

// Encoder writes segments in bracket notation.
type Encoder struct {
	b *strings.Builder
}

func NewEncoder(b *strings.Builder) *Encoder {
	return &Encoder{b: b}
}

func (e *Encoder) WriteKana(kana string) {
	e.b.WriteString(kana)
}

// WriteBlock writes a kanji span with a single whole-span reading.
func (e *Encoder) WriteBlock(kanji, reading string) {
	e.WriteReadings(kanji, reading)
}

// WriteReadings writes "[kanji|r1|r2...]".
func (e *Encoder) WriteReadings(kanji string, readings ...string) {
	e.b.WriteByte(openBracket)
	e.b.WriteString(kanji)
	for _, r := range readings {
		e.b.WriteByte(separator)
		e.b.WriteString(r)
	}
	e.b.WriteByte(closeBracket)
}

func (e *Encoder) WriteSegment(s Segment) {
	switch s.kind {
	case KindKana:
		e.WriteKana(s.text)
	case KindKanji:
		e.WriteReadings(s.text, s.readings...)
	}
}

func (e *Encoder) WriteSegmentRef(s SegmentRef) {
	switch s.kind {
	case KindKana:
		e.WriteKana(s.Text())
	case KindKanji:
		e.b.WriteByte(openBracket)
		e.b.WriteString(s.Text())
		for _, r := range s.readings {
			e.b.WriteByte(separator)
			e.b.WriteString(r.in(s.src))
		}
		e.b.WriteByte(closeBracket)
	}
}

// WriteReading writes a reading as a kanji block if it has a kanji spelling,
// otherwise as kana.
func (e *Encoder) WriteReading(r Reading) {
	if r.HasKanji() {
		e.WriteBlock(r.Kanji, r.Kana)
		return
	}
	e.WriteKana(r.Kana)
}
