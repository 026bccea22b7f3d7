package alphabet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOf(t *testing.T) {
	tests := []struct {
		input rune
		want  Alphabet
	}{
		{'あ', Hiragana},
		{'ん', Hiragana},
		{'ア', Katakana},
		{'ｶ', Katakana},
		{'ー', Katakana},
		{'漢', Kanji},
		{'々', Kanji},
		{'a', Romaji},
		{'Ｚ', Romaji},
		{'7', Romaji},
		{'、', Symbol},
		{'。', Symbol},
		{'［', Symbol},
		{'!', Symbol},
		{'\n', Other},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Of(tt.input), "Of(%q)", tt.input)
	}
}

func TestWidth(t *testing.T) {
	assert.True(t, IsHalfwidth('a'))
	assert.True(t, IsHalfwidth('ｶ'))
	assert.False(t, IsHalfwidth('カ'))
	assert.True(t, IsFullwidth('カ'))
	assert.True(t, IsFullwidth('Ａ'))
	assert.False(t, IsFullwidth('A'))
}

func TestKanaConversion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"イリミナイカワ", "いりみないかわ"},
		{"カタカナとひらがな", "かたかなとひらがな"},
		{"ｶﾞｯｺｳ", "がっこう"},
		{"漢字", "漢字"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToHiragana(tt.input), "ToHiragana(%q)", tt.input)
	}
	assert.Equal(t, "ガッコウ", ToKatakana("がっこう"))
}

func TestNormalizeKeepsBrackets(t *testing.T) {
	assert.Equal(t, "[学校|ガッコウ]", Normalize("[学校|ｶﾞｯｺｳ]"))
	assert.Equal(t, "［注］", Normalize("［注］"))
}

func TestStringHelpers(t *testing.T) {
	assert.True(t, HasKanji("これは漢字"))
	assert.False(t, HasKanji("ひらがな"))
	assert.True(t, IsKanaString("ひらがなカタカナー"))
	assert.False(t, IsKanaString(""))
	assert.False(t, IsKanaString("かな。"))
}

func TestByAlphabet(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"これは漢字で書いたテキストです", []string{"これは", "漢字", "で", "書", "いたテキストです"}},
		{"このテキストはかなだけでかいた", []string{"このテキストはかなだけでかいた"}},
		{"朝に道を聞かば、夕べに死すとも可なり", []string{"朝", "に", "道", "を", "聞", "かば", "、", "夕", "べに", "死", "すとも", "可", "なり"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ByAlphabet(tt.input, true), "ByAlphabet(%q)", tt.input)
	}
	assert.Equal(t, []string{"これは", "テキスト"}, ByAlphabet("これはテキスト", false))
}

func TestWordsWithAlphabet(t *testing.T) {
	const input = "朝に道を聞かば、夕べに死すとも可なり"
	assert.Equal(t, []string{"朝", "道", "聞", "夕", "死", "可"}, WordsWithAlphabet(input, Kanji))
	assert.Equal(t, []string{"に", "を", "かば", "べに", "すとも", "なり"}, WordsWithAlphabet(input, Hiragana, Katakana))
	assert.Empty(t, WordsWithAlphabet("   ", Kanji))
}
