package inspect

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/furigana/internal/furigana"
)

var _ tea.Model = Model{}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(Model)
	require.True(t, ok)
	return got
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestInspectParsesInitialValue(t *testing.T) {
	m := New("[日本|に|ほん]が[好|す]きです")
	require.NoError(t, m.err)
	assert.Len(t, m.segs, 4)

	view := m.View()
	assert.Contains(t, view, "日本が好きです")
	assert.Contains(t, view, "にほんがすきです")
	assert.Contains(t, view, "detailed")
}

func TestInspectReparsesOnInput(t *testing.T) {
	m := New("")
	assert.Empty(t, m.segs)

	m = typeText(t, m, "[好")
	require.Error(t, m.err)
	assert.Equal(t, furigana.UnterminatedBracket, furigana.KindOf(m.err))
	assert.Contains(t, m.View(), "unterminated_bracket at byte 0")

	m = typeText(t, m, "|す]")
	require.NoError(t, m.err)
	assert.Equal(t, "好", m.segs.KanjiStr())
}

func TestInspectCaretColumn(t *testing.T) {
	m := New("あ]")
	require.Error(t, m.err)
	// prompt is two columns, あ is two more
	assert.Contains(t, m.renderError(), "    ^")
}

func TestInspectModes(t *testing.T) {
	m := New("[今日|きょう][日本|に|ほん]")
	require.NoError(t, m.err)
	assert.Len(t, m.segs, 2)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeFix, m.mode)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeFixMerge, m.mode)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeFixMergeLossy, m.mode)
	require.NoError(t, m.err)
	assert.Len(t, m.segs, 1)
	assert.Equal(t, "きょうにほん", m.segs.KanaStr())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modePlain, m.mode)
}

func TestInspectAcceptsOnlyValidLines(t *testing.T) {
	m := New("[好")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.Accepted())

	m = New("[好|す]き")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"[好|す]き"}, m.Accepted())
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Accepted:")
}
