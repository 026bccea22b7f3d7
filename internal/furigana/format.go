package furigana

import (
	"fmt"
	"strings"
)

// FormatOptions selects the rewrites applied by Format.
type FormatOptions struct {
	// Fix rewrites brackets whose readings do not align into a single whole
	// span reading.
	Fix bool
	// Merge joins adjacent kanji segments.
	Merge bool
	// Lossy lets Merge absorb kanji with whole span readings, dropping their
	// per character alignment.
	Lossy bool
}

// Format re-encodes f without changing its kanji or kana strings. Fix runs
// before Merge so that misaligned input can still be merged.
func Format(f Furigana, opts FormatOptions) (Furigana, error) {
	var err error
	if opts.Fix {
		if f, err = FixKanjiBlocks(f); err != nil {
			return Furigana{}, fmt.Errorf("fixing kanji blocks: %w", err)
		}
	}
	if opts.Merge {
		if f, err = MergeKanji(f, opts.Lossy); err != nil {
			return Furigana{}, fmt.Errorf("merging kanji: %w", err)
		}
	}
	return f, nil
}

// FixKanjiBlocks rewrites [音楽大|おんがく|だい] as [音楽大|おんがくだい]. Other
// syntax errors are still returned.
func FixKanjiBlocks(f Furigana) (Furigana, error) {
	src := f.raw
	var b strings.Builder
	b.Grow(len(src))
	enc := NewEncoder(&b)

	err := scanAll(src, func(tok rawToken) error {
		if tok.kind == tokenText {
			enc.WriteKana(tok.text.in(src))
			return nil
		}
		kanji := tok.text.in(src)
		readings := make([]string, len(tok.readings))
		for i, r := range tok.readings {
			readings[i] = r.in(src)
		}
		if checkAlignment(kanji, len(readings)) {
			enc.WriteReadings(kanji, readings...)
			return nil
		}
		enc.WriteBlock(kanji, strings.Join(readings, ""))
		return nil
	})
	if err != nil {
		return Furigana{}, err
	}
	return New(b.String()), nil
}

// MergeKanji merges runs of adjacent detailed kanji segments into one:
// [大|だい][丈|じょう][夫|ぶ] becomes [大丈夫|だい|じょう|ぶ]. A kanji segment
// with a whole span reading ends the run unless lossy is set, in which case the
// whole run collapses into a single reading.
func MergeKanji(f Furigana, lossy bool) (Furigana, error) {
	segs, err := f.AsSegments()
	if err != nil {
		return Furigana{}, err
	}
	return New(mergeSequence(segs, lossy).Encode()), nil
}

func mergeSequence(segs Sequence, lossy bool) Sequence {
	out := make(Sequence, 0, len(segs))

	var (
		kanji      strings.Builder
		readings   []string
		undetailed bool
	)
	flush := func() {
		if len(readings) == 0 {
			return
		}
		if undetailed {
			readings = []string{strings.Join(readings, "")}
		}
		out = append(out, Segment{kind: KindKanji, text: kanji.String(), readings: readings})
		kanji.Reset()
		readings = nil
		undetailed = false
	}

	for _, seg := range segs {
		detailed := seg.IsDetailed()
		if seg.IsKana() || (!detailed && !lossy) {
			flush()
			out = append(out, seg)
			continue
		}
		if !detailed {
			undetailed = true
		}
		kanji.WriteString(seg.text)
		readings = append(readings, seg.readings...)
	}
	flush()
	return out
}

// Merge returns the sequence with adjacent kanji merged, see MergeKanji.
func (s Sequence) Merge(lossy bool) Sequence {
	return mergeSequence(s, lossy)
}
