package furigana

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wellFormed = []string{
	"",
	"ありがとう",
	"[日本|に|ほん]が[好|す]きです",
	"[漢字|かんじ]",
	"[漢|か][字|じ]",
	"[漢字|か]",
	"この[人|ひと]が[嫌|きら]いです。",
	"[拝金主義|はい|きん|しゅ|ぎ]は[問題|もん|だい]",
	"[Wi|ワイ]-[Fi|ファイ] って",
	"[漢[字|じ]",
}

func TestKanjiKanaStr(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kanji string
		kana  string
	}{
		{"mixed", "[日本|に|ほん]が[好|す]きです", "日本が好きです", "にほんがすきです"},
		{"plain kana", "ありがとう", "ありがとう", "ありがとう"},
		{"whole span", "[漢字|かんじ]", "漢字", "かんじ"},
		{"adjacent brackets", "[漢|か][字|じ]", "漢字", "かじ"},
		{"empty", "", "", ""},
		{"kanji at end", "おんがくが[好|す]", "おんがくが好", "おんがくがす"},
		{"romaji", "[Wi|ワイ]-[Fi|ファイ]", "Wi-Fi", "ワイ-ファイ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.input)

			kanji, err := f.KanjiStr()
			require.NoError(t, err)
			assert.Equal(t, tt.kanji, kanji)

			kana, err := f.KanaStr()
			require.NoError(t, err)
			assert.Equal(t, tt.kana, kana)
		})
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Sequence
	}{
		{
			name:  "mixed",
			input: "[日本|に|ほん]が[好|す]きです",
			want: Sequence{
				MustKanji("日本", "に", "ほん"),
				MustKana("が"),
				MustKanji("好", "す"),
				MustKana("きです"),
			},
		},
		{
			name:  "no brackets",
			input: "ありがとう",
			want:  Sequence{MustKana("ありがとう")},
		},
		{
			name:  "whole span reading is not split",
			input: "[漢字|かんじ]",
			want:  Sequence{MustKanji("漢字", "かんじ")},
		},
		{
			name:  "two single character brackets",
			input: "[漢|か][字|じ]",
			want:  Sequence{MustKanji("漢", "か"), MustKanji("字", "じ")},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "open bracket inside kanji span",
			input: "[漢[字|じ]",
			want:  Sequence{MustKanji("漢[字", "じ")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Sequence
			for seg, err := range New(tt.input).Segments() {
				require.NoError(t, err)
				got = append(got, seg.ToOwned())
			}
			assert.Equal(t, tt.want, got)

			owned, err := New(tt.input).AsSegments()
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(owned))
		})
	}
}

func TestSegmentsRestartable(t *testing.T) {
	f := New("[日本|に|ほん]が[好|す]きです")

	collect := func() []string {
		var out []string
		for seg, err := range f.Segments() {
			require.NoError(t, err)
			out = append(out, seg.String())
		}
		return out
	}

	first := collect()
	assert.Equal(t, []string{"[日本|に|ほん]", "が", "[好|す]", "きです"}, first)
	assert.Equal(t, first, collect())
}

func TestSegmentsEarlyBreak(t *testing.T) {
	f := New("[日本|に|ほん]が[好|す]きです")
	n := 0
	for _, err := range f.Segments() {
		require.NoError(t, err)
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)

	count, err := f.SegmentCount()
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestSegmentRefOffsets(t *testing.T) {
	src := "[日本|に|ほん]が"
	var refs []SegmentRef
	for seg, err := range New(src).Segments() {
		require.NoError(t, err)
		refs = append(refs, seg)
	}
	require.Len(t, refs, 2)

	assert.Equal(t, 1, refs[0].Offset())
	assert.Equal(t, "日本", refs[0].Text())
	assert.Equal(t, []string{"に", "ほん"}, refs[0].Readings())
	assert.Equal(t, "ほん", refs[0].ReadingAt(1))
	assert.True(t, refs[0].IsDetailed())
	assert.True(t, refs[0].ContainsKanji())
	assert.Equal(t, "にほん", refs[0].KanaText())

	assert.Equal(t, strings.Index(src, "が"), refs[1].Offset())
	assert.True(t, refs[1].IsKana())
	assert.Nil(t, refs[1].Readings())
	assert.True(t, refs[1].EqualSegment(MustKana("が")))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kind   ErrorKind
		target error
		offset int
	}{
		{"alignment mismatch", "[漢字|か|ん|じ]", AlignmentMismatch, ErrAlignmentMismatch, 0},
		{"too few readings", "[拝金主義|はい|きん]", AlignmentMismatch, ErrAlignmentMismatch, 0},
		{"unterminated in kanji", "ありがとう[漢字", UnterminatedBracket, ErrUnterminatedBracket, len("ありがとう")},
		{"unterminated in reading", "[漢字|かん", UnterminatedBracket, ErrUnterminatedBracket, 0},
		{"empty kanji span", "[|かんじ]", EmptyKanjiSpan, ErrEmptyKanjiSpan, 0},
		{"empty brackets", "a[]", EmptyKanjiSpan, ErrEmptyKanjiSpan, 1},
		{"empty reading", "[漢字||]", EmptyReading, ErrEmptyReading, 0},
		{"trailing empty reading", "[漢字|か|]", EmptyReading, ErrEmptyReading, 0},
		{"no reading", "[漢字]", EmptyReading, ErrEmptyReading, 0},
		{"stray close", "です]", UnexpectedClose, ErrUnexpectedClose, len("です")},
		{"error after valid group", "[好|す]き[嫌|きら|い]", AlignmentMismatch, ErrAlignmentMismatch, len("[好|す]き")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.input)

			err := f.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, tt.kind, KindOf(err))

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.offset, perr.Offset)

			_, err = f.KanjiStr()
			assert.ErrorIs(t, err, tt.target)
			_, err = f.KanaStr()
			assert.ErrorIs(t, err, tt.target)

			_, err = Parse(tt.input)
			assert.ErrorIs(t, err, tt.target)

			// the raw string survives a failed parse
			assert.Equal(t, tt.input, f.Raw())
		})
	}
}

func TestSegmentsMalformedYieldsOnlyError(t *testing.T) {
	var (
		segs []SegmentRef
		errs []error
	)
	for seg, err := range New("[好|す]き[漢字|か|ん|じ]").Segments() {
		segs = append(segs, seg)
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrAlignmentMismatch)
	assert.Equal(t, SegmentRef{}, segs[0])
}

func TestParseErrorMessage(t *testing.T) {
	err := New("[漢字|か|ん|じ]").Validate()
	assert.EqualError(t, err, `furigana: reading count does not align with kanji count at offset 0: 3 readings for "漢字"`)

	err = New("abc[").Validate()
	assert.EqualError(t, err, "furigana: unterminated bracket at offset 3")
	assert.Equal(t, "unterminated_bracket", KindOf(err).String())
	assert.Equal(t, ErrorKind(0), KindOf(assert.AnError))
}

func TestReconstruction(t *testing.T) {
	require.Equal(t, 7, surfaceRunes("[日本|に|ほん]が[好|す]きです"))

	for _, input := range wellFormed {
		t.Run(input, func(t *testing.T) {
			f := New(input)
			segs, err := f.AsSegments()
			require.NoError(t, err)

			kanji, err := f.KanjiStr()
			require.NoError(t, err)
			kana, err := f.KanaStr()
			require.NoError(t, err)

			assert.Equal(t, segs.KanjiStr(), kanji)
			assert.Equal(t, segs.KanaStr(), kana)

			// every non syntax character is covered exactly once
			covered := 0
			for _, s := range segs {
				covered += utf8.RuneCountInString(s.Text())
			}
			assert.Equal(t, surfaceRunes(input), covered)

			assert.Equal(t, input, segs.Encode())
			assert.Equal(t, input, FromSegments(segs...).Raw())
		})
	}
}

// surfaceRunes counts the runes of input outside the bracket syntax and the
// readings.
func surfaceRunes(input string) int {
	n := 0
	inKanji, inReading := false, false
	for _, r := range input {
		switch {
		case inReading:
			if r == ']' {
				inReading = false
			}
		case inKanji:
			if r == '|' {
				inKanji, inReading = false, true
			} else {
				n++
			}
		case r == '[':
			inKanji = true
		default:
			n++
		}
	}
	return n
}

func TestAlignmentExactness(t *testing.T) {
	segs, err := New("[拝金主義|はい|きん|しゅ|ぎ]").AsSegments()
	require.NoError(t, err)
	require.Len(t, segs, 1)

	pairs := segs[0].LiteralReadings()
	assert.Equal(t, []LiteralReading{
		{Literal: "拝", Reading: "はい"},
		{Literal: "金", Reading: "きん"},
		{Literal: "主", Reading: "しゅ"},
		{Literal: "義", Reading: "ぎ"},
	}, pairs)
}

func TestTextRunsAreNotSplit(t *testing.T) {
	count, err := New("それは[大|だい]きな「ねこ」です").SegmentCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestQueries(t *testing.T) {
	f := New("[日本|に|ほん]が[好|す]きです")

	has, err := f.HasKanji()
	require.NoError(t, err)
	assert.True(t, has)

	has, err = New("ありがとう").HasKanji()
	require.NoError(t, err)
	assert.False(t, has)

	seg, ok, err := f.SegmentAt(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, seg.EqualSegment(MustKanji("好", "す")))

	_, ok, err = f.SegmentAt(4)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = f.SegmentAt(-1)
	require.NoError(t, err)
	assert.False(t, ok)

	r, err := New("[好|す]き").Reading()
	require.NoError(t, err)
	assert.Equal(t, Reading{Kana: "すき", Kanji: "好き"}, r)

	r, err = New("ありがとう").Reading()
	require.NoError(t, err)
	assert.Equal(t, Reading{Kana: "ありがとう"}, r)
	assert.Equal(t, "ありがとう", r.KanjiOrKana())

	assert.True(t, New("").IsEmpty())
	assert.Equal(t, "[好|す]", New("[好|す]").String())
}

func TestBuilding(t *testing.T) {
	f := FromSegments(MustKanji("日本", "に", "ほん"))
	assert.Equal(t, "[日本|に|ほん]", f.Raw())

	appended := f.Append(MustKana("が"), MustKanji("好", "す"))
	assert.Equal(t, "[日本|に|ほん]が[好|す]", appended.Raw())
	assert.Equal(t, "[日本|に|ほん]", f.Raw(), "append returns a new view")

	joined, err := appended.Concat(New("きです"))
	require.NoError(t, err)
	assert.Equal(t, "[日本|に|ほん]が[好|す]きです", joined.Raw())

	_, err = appended.Concat(New("[き"))
	assert.ErrorIs(t, err, ErrUnterminatedBracket)
}

func TestFuriganaEqual(t *testing.T) {
	assert.True(t, New("[音楽|おん|がく]").Equal(New("[音楽|おん|がく]")))
	assert.False(t, New("[音楽|おん|がく]").Equal(New("[音楽|おんがく]")))
	assert.False(t, New("[音楽|おん|がく]").Equal(New("[音|おん][楽|がく]")))
	assert.False(t, New("[音").Equal(New("[楽")))
	assert.True(t, New("[音").Equal(New("[音")))
}

func TestConcurrentReads(t *testing.T) {
	f := New("[日本|に|ほん]が[好|す]きです")

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kana, err := f.KanaStr()
			if err == nil {
				results[i] = kana
			}
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "にほんがすきです", r)
	}
}
