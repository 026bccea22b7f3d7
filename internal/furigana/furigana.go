// Package furigana parses and manipulates encoded furigana, Japanese text whose
// kanji are annotated inline with their readings:
//
//	[日本|に|ほん]が[好|す]きです
//
// A bracket group holds a kanji span followed by either one reading for the
// whole span or one reading per kanji character.
package furigana

import (
	"iter"
	"strings"
)

// Furigana is an immutable view over an encoded furigana string. Parsing is
// performed on demand by each accessor, so a Furigana can be shared between
// goroutines freely. Malformed input is reported by the first call that parses;
// Raw always returns the original string.
type Furigana struct {
	raw string
}

// New wraps raw without validating it.
func New(raw string) Furigana {
	return Furigana{raw: raw}
}

// Parse wraps raw and validates it.
func Parse(raw string) (Furigana, error) {
	f := New(raw)
	if err := f.Validate(); err != nil {
		return Furigana{}, err
	}
	return f, nil
}

// FromSegments encodes segs into a new Furigana.
func FromSegments(segs ...Segment) Furigana {
	return New(Sequence(segs).Encode())
}

func (f Furigana) Raw() string    { return f.raw }
func (f Furigana) String() string { return f.raw }
func (f Furigana) IsEmpty() bool  { return f.raw == "" }

// Validate parses the whole string and returns the first error.
func (f Furigana) Validate() error {
	return scanAll(f.raw, func(tok rawToken) error {
		_, err := align(f.raw, tok)
		return err
	})
}

// Segments returns a restartable sequence over the segments in order. The input
// is validated before the first segment is yielded, so a malformed string yields
// exactly one (zero SegmentRef, error) pair and nothing else.
func (f Furigana) Segments() iter.Seq2[SegmentRef, error] {
	return func(yield func(SegmentRef, error) bool) {
		if err := f.Validate(); err != nil {
			yield(SegmentRef{}, err)
			return
		}
		sc := newScanner(f.raw)
		for {
			tok, ok, _ := sc.next()
			if !ok {
				return
			}
			seg, _ := align(f.raw, tok)
			if !yield(seg, nil) {
				return
			}
		}
	}
}

// each visits all segments, or returns the parse error without visiting any.
func (f Furigana) each(visit func(SegmentRef)) error {
	for seg, err := range f.Segments() {
		if err != nil {
			return err
		}
		visit(seg)
	}
	return nil
}

// KanjiStr returns the surface string with all bracket syntax removed.
func (f Furigana) KanjiStr() (string, error) {
	var b strings.Builder
	b.Grow(len(f.raw))
	if err := f.each(func(s SegmentRef) { b.WriteString(s.Text()) }); err != nil {
		return "", err
	}
	return b.String(), nil
}

// KanaStr returns the full phonetic reading.
func (f Furigana) KanaStr() (string, error) {
	var b strings.Builder
	b.Grow(len(f.raw))
	if err := f.each(func(s SegmentRef) { s.writeKana(&b) }); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Reading returns both kana and kanji forms. Kanji is empty when the string has
// no kanji segment.
func (f Furigana) Reading() (Reading, error) {
	var kana, kanji strings.Builder
	hasKanji := false
	err := f.each(func(s SegmentRef) {
		kanji.WriteString(s.Text())
		s.writeKana(&kana)
		hasKanji = hasKanji || s.IsKanji()
	})
	if err != nil {
		return Reading{}, err
	}
	r := Reading{Kana: kana.String()}
	if hasKanji {
		r.Kanji = kanji.String()
	}
	return r, nil
}

// HasKanji reports whether at least one segment is an annotated kanji span.
func (f Furigana) HasKanji() (bool, error) {
	for seg, err := range f.Segments() {
		if err != nil {
			return false, err
		}
		if seg.IsKanji() {
			return true, nil
		}
	}
	return false, nil
}

func (f Furigana) SegmentCount() (int, error) {
	n := 0
	if err := f.each(func(SegmentRef) { n++ }); err != nil {
		return 0, err
	}
	return n, nil
}

// SegmentAt returns the segment at position i.
func (f Furigana) SegmentAt(i int) (SegmentRef, bool, error) {
	if i < 0 {
		return SegmentRef{}, false, nil
	}
	n := 0
	for seg, err := range f.Segments() {
		if err != nil {
			return SegmentRef{}, false, err
		}
		if n == i {
			return seg, true, nil
		}
		n++
	}
	return SegmentRef{}, false, nil
}

// AsSegments copies every segment out of the source string.
func (f Furigana) AsSegments() (Sequence, error) {
	var out Sequence
	if err := f.each(func(s SegmentRef) { out = append(out, s.ToOwned()) }); err != nil {
		return nil, err
	}
	return out, nil
}

// Append returns a new Furigana with segs encoded after f.
func (f Furigana) Append(segs ...Segment) Furigana {
	var b strings.Builder
	b.WriteString(f.raw)
	enc := NewEncoder(&b)
	for _, s := range segs {
		enc.WriteSegment(s)
	}
	return New(b.String())
}

// Concat validates other and returns f followed by other.
func (f Furigana) Concat(other Furigana) (Furigana, error) {
	if err := other.Validate(); err != nil {
		return Furigana{}, err
	}
	return New(f.raw + other.raw), nil
}

// Equal reports whether both strings parse to equal segment sequences. If
// either fails to parse the raw strings are compared instead.
func (f Furigana) Equal(o Furigana) bool {
	if f.raw == o.raw {
		return true
	}
	a, errA := f.AsSegments()
	b, errB := o.AsSegments()
	if errA != nil || errB != nil {
		return false
	}
	return a.Equal(b)
}
