package furigana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentConstructors(t *testing.T) {
	tests := []struct {
		name     string
		build    func() (Segment, error)
		wantErr  error
		wantText string
	}{
		{"kana", func() (Segment, error) { return NewKana("きです") }, nil, "きです"},
		{"kana with bracket", func() (Segment, error) { return NewKana("き[で") }, ErrInvalidSegment, ""},
		{"whole span kanji", func() (Segment, error) { return NewKanji("漢字", "かんじ") }, nil, "[漢字|かんじ]"},
		{"detailed kanji", func() (Segment, error) { return NewKanjiReadings("日本", []string{"に", "ほん"}) }, nil, "[日本|に|ほん]"},
		{"empty kanji", func() (Segment, error) { return NewKanji("", "か") }, ErrEmptyKanjiSpan, ""},
		{"empty reading", func() (Segment, error) { return NewKanji("漢", "") }, ErrEmptyReading, ""},
		{"no readings", func() (Segment, error) { return NewKanjiReadings("漢", nil) }, ErrEmptyReading, ""},
		{"reserved in reading", func() (Segment, error) { return NewKanji("漢", "か|ん") }, ErrInvalidSegment, ""},
		{"reserved in kanji", func() (Segment, error) { return NewKanji("漢]", "かん") }, ErrInvalidSegment, ""},
		{"misaligned", func() (Segment, error) { return NewKanjiReadings("漢字", []string{"か", "ん", "じ"}) }, ErrAlignmentMismatch, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg, err := tt.build()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, seg.Encode())
		})
	}
}

func TestMustPanics(t *testing.T) {
	assert.Panics(t, func() { MustKana("[") })
	assert.Panics(t, func() { MustKanji("漢字", "か", "ん", "じ") })
}

func TestSegmentAccessors(t *testing.T) {
	kanji := MustKanji("日本", "に", "ほん")
	assert.Equal(t, KindKanji, kanji.Kind())
	assert.True(t, kanji.IsKanji())
	assert.False(t, kanji.IsKana())
	assert.Equal(t, "日本", kanji.KanjiText())
	assert.Equal(t, "にほん", kanji.KanaText())
	assert.Equal(t, 2, kanji.ReadingCount())
	assert.True(t, kanji.IsDetailed())
	assert.True(t, kanji.ContainsKanji())
	assert.Equal(t, Reading{Kana: "にほん", Kanji: "日本"}, kanji.Reading())

	readings := kanji.Readings()
	readings[0] = "changed"
	assert.Equal(t, []string{"に", "ほん"}, kanji.Readings())

	kana := MustKana("が")
	assert.Equal(t, "kana", kana.Kind().String())
	assert.Nil(t, kana.Readings())
	assert.False(t, kana.IsDetailed())
	assert.Nil(t, kana.LiteralReadings())
	assert.Equal(t, Reading{Kana: "が"}, kana.Reading())

	assert.False(t, MustKanji("漢字", "かんじ").IsDetailed())
	assert.True(t, MustKanji("好", "す").IsDetailed())
	assert.True(t, MustKana("東京へ").ContainsKanji())
	assert.True(t, MustKana("").IsEmpty())
}

func TestSegmentEqual(t *testing.T) {
	assert.True(t, MustKanji("日本", "に", "ほん").Equal(MustKanji("日本", "に", "ほん")))
	assert.False(t, MustKanji("日本", "に", "ほん").Equal(MustKanji("日本", "にほん")))
	assert.False(t, MustKana("か").Equal(MustKanji("か", "か")))
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		seg  Segment
		want []Segment
	}{
		{"detailed", MustKanji("日本", "に", "ほん"), []Segment{MustKanji("日", "に"), MustKanji("本", "ほん")}},
		{"whole span", MustKanji("漢字", "かんじ"), []Segment{MustKanji("漢字", "かんじ")}},
		{"single", MustKanji("好", "す"), []Segment{MustKanji("好", "す")}},
		{"kana", MustKana("が"), []Segment{MustKana("が")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.seg.Flatten())
		})
	}

	seq := Sequence{MustKanji("音楽", "おん", "がく"), MustKana("が")}
	assert.Equal(t, "[音|おん][楽|がく]が", seq.Flatten().Encode())
}

func TestFlattenKeepsInvalidUTF8(t *testing.T) {
	segs, err := New("\xff[\xfe\xfd|a|b]").AsSegments()
	require.NoError(t, err)

	assert.Equal(t, []LiteralReading{{"\xfe", "a"}, {"\xfd", "b"}}, segs[1].LiteralReadings())

	flat := segs.Flatten()
	assert.Equal(t, segs.KanjiStr(), flat.KanjiStr())
	assert.Equal(t, "\xff[\xfe|a][\xfd|b]", flat.Encode())
}

func TestSequence(t *testing.T) {
	seq := Sequence{MustKanji("日本", "に", "ほん"), MustKana("が"), MustKanji("好", "す"), MustKana("きです")}
	assert.Equal(t, "日本が好きです", seq.KanjiStr())
	assert.Equal(t, "にほんがすきです", seq.KanaStr())
	assert.True(t, seq.HasKanji())
	assert.Equal(t, "[日本|に|ほん]が[好|す]きです", seq.Furigana().Raw())
	assert.Equal(t, Reading{Kana: "にほんがすきです", Kanji: "日本が好きです"}, seq.Reading())

	assert.False(t, Sequence{MustKana("ね")}.HasKanji())
	assert.Equal(t, Reading{Kana: "ね"}, Sequence{MustKana("ね")}.Reading())
}

func TestComparator(t *testing.T) {
	tests := []struct {
		a, b    string
		literal bool
		want    bool
	}{
		{"[音楽|おん|がく]", "[音|おん][楽|がく]", true, true},
		{"[音楽|おん|がく]", "[音|おん][楽|がく]", false, true},
		{"[音楽|おん|がく]", "[音楽|おんがく]", false, true},
		{"[音楽|おん|がく]", "[音楽|おんがく]", true, false},
		{"[音楽|おん|がく]が", "[音楽|おん|がく]", false, false},
		{"[音楽|おん|がく]が", "[音|おん][楽|がく]が", true, true},
		{"[好|す]き", "[好|すき]", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.a+" "+tt.b, func(t *testing.T) {
			got, err := Comparator{LiteralMatch: tt.literal}.EqualFurigana(New(tt.a), New(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Comparator{}.EqualFurigana(New("[音"), New("音"))
	assert.ErrorIs(t, err, ErrUnterminatedBracket)

	c := Comparator{LiteralMatch: true}
	assert.True(t, c.EqualSegment(MustKana("が"), MustKana("が")))
	assert.False(t, c.EqualSegment(MustKanji("音楽", "おん", "がく"), MustKanji("音楽", "おんがく")))
	assert.True(t, Comparator{}.EqualSegment(MustKanji("音楽", "おん", "がく"), MustKanji("音楽", "おんがく")))
}
