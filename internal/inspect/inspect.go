// Package inspect is an interactive terminal view of how an encoded furigana
// string decomposes. The line is re-parsed on every keystroke; a parse error is
// shown with a caret under the offending offset.
package inspect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jusunglee/furigana/internal/furigana"
)

type mode int

const (
	modePlain mode = iota
	modeFix
	modeFixMerge
	modeFixMergeLossy
	modeCount
)

var modeNames = []string{
	"as written",
	"fix",
	"fix + merge",
	"fix + lossy merge",
}

func (m mode) options() furigana.FormatOptions {
	switch m {
	case modeFix:
		return furigana.FormatOptions{Fix: true}
	case modeFixMerge:
		return furigana.FormatOptions{Fix: true, Merge: true}
	case modeFixMergeLossy:
		return furigana.FormatOptions{Fix: true, Merge: true, Lossy: true}
	}
	return furigana.FormatOptions{}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(8)

	kanjiStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	kanaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	tableStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

const prompt = "> "

// Model is the bubbletea model of the inspector: a text input and the parse of
// its current value.
type Model struct {
	input   textinput.Model
	mode    mode
	result  furigana.Furigana
	segs    furigana.Sequence
	err     error
	history []string
	width   int
}

func New(initial string) Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = "[日本|に|ほん]が[好|す]きです"
	ti.CharLimit = 1024
	ti.Width = 60
	ti.SetValue(initial)
	ti.Focus()

	m := Model{input: ti}
	m.reparse()
	return m
}

func (m *Model) reparse() {
	m.segs, m.err = nil, nil
	f, err := furigana.Format(furigana.New(m.input.Value()), m.mode.options())
	if err != nil {
		m.err = err
		return
	}
	segs, err := f.AsSegments()
	if err != nil {
		m.err = err
		return
	}
	m.result, m.segs = f, segs
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyTab:
			m.mode = (m.mode + 1) % modeCount
			m.reparse()
			return m, nil

		case tea.KeyEnter:
			if m.err == nil && m.input.Value() != "" {
				m.history = append(m.history, m.result.String())
				m.input.SetValue("")
				m.reparse()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.reparse()
	}
	return m, cmd
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Furigana Inspector"))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(m.renderError())
	} else {
		s.WriteString("\n")
		s.WriteString(m.renderResult())
	}

	if len(m.history) > 0 {
		s.WriteString("\n\n")
		s.WriteString(dimStyle.Render("Accepted:"))
		for _, h := range m.history {
			s.WriteString("\n  " + h)
		}
	}

	s.WriteString("\n\n")
	s.WriteString(dimStyle.Render(fmt.Sprintf("mode: %s · tab cycles modes · enter accepts · esc quits", modeNames[m.mode])))
	s.WriteString("\n")
	return s.String()
}

func (m Model) renderError() string {
	var perr *furigana.ParseError
	if !errors.As(m.err, &perr) {
		return errorStyle.Render(m.err.Error())
	}
	// Formatting may rewrite the line, so the offset only lines up with the
	// input when nothing was changed before the error.
	col := lipgloss.Width(prompt)
	if raw := m.input.Value(); perr.Offset <= len(raw) {
		col += lipgloss.Width(raw[:perr.Offset])
	}
	return errorStyle.Render(strings.Repeat(" ", col)+"^") + "\n" +
		errorStyle.Render(fmt.Sprintf("%s at byte %d", perr.Kind, perr.Offset)) + "\n" +
		dimStyle.Render(m.err.Error())
}

func (m Model) renderResult() string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("kanji") + kanjiStyle.Render(m.segs.KanjiStr()) + "\n")
	s.WriteString(labelStyle.Render("kana") + kanaStyle.Render(m.segs.KanaStr()) + "\n")
	if m.mode != modePlain {
		s.WriteString(labelStyle.Render("encoded") + m.result.String() + "\n")
	}
	if len(m.segs) == 0 {
		return s.String()
	}

	rows := make([]string, 0, len(m.segs))
	for i, seg := range m.segs {
		row := fmt.Sprintf("%2d  %-5s  %s", i, seg.Kind(), kanjiStyle.Render(seg.Text()))
		if seg.IsKanji() {
			row += "  " + kanaStyle.Render(strings.Join(seg.Readings(), "·"))
			if seg.IsDetailed() && seg.ReadingCount() > 1 {
				row += dimStyle.Render("  detailed")
			}
		}
		rows = append(rows, row)
	}
	s.WriteString(tableStyle.Render(strings.Join(rows, "\n")))
	return s.String()
}

// Accepted returns the valid lines confirmed with enter, oldest first.
func (m Model) Accepted() []string {
	return m.history
}

// Run starts the inspector and returns the lines accepted with enter.
func Run(initial string) ([]string, error) {
	p := tea.NewProgram(New(initial))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(Model).Accepted(), nil
}
