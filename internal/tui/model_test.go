package tui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lundberg/diffreview/internal/diff"
	"github.com/lundberg/diffreview/internal/render"
)

func files() []diff.FileDiff {
	return []diff.FileDiff{
		{Path: "a.go", Additions: 1, Hunks: []diff.DiffHunk{{OldStart: 1, NewStart: 1, NewLines: 1, Content: "+a"}}},
		{Path: "b.go", Deletions: 1, Hunks: []diff.DiffHunk{{OldStart: 1, OldLines: 1, NewStart: 0, Content: "-b"}}},
		{Path: "c.png", IsBinary: true},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_CursorMovement(t *testing.T) {
	m := NewModel(files(), false, render.LayoutUnified)
	assert.Equal(t, 0, m.Cursor())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, runes("j"))
	assert.Equal(t, 2, m.Cursor())

	// The cursor stops at the last file
	m = press(t, m, runes("j"))
	assert.Equal(t, 2, m.Cursor())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp}, runes("k"), runes("k"))
	assert.Equal(t, 0, m.Cursor())
}

func TestModel_Toggle(t *testing.T) {
	m := NewModel(files(), false, render.LayoutUnified)
	assert.False(t, m.Presentation().Files[0].Expanded)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	f := m.Presentation().Files[0]
	assert.True(t, f.Expanded)
	assert.Equal(t, "Collapse a.go, 1 additions, 0 deletions", f.Label)
	require.Len(t, f.Lines, 1)

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.False(t, m.Presentation().Files[0].Expanded)
	assert.Equal(t, "Expand a.go, 1 additions, 0 deletions", m.Presentation().Files[0].Label)
}

func TestModel_ToggleDoesNotLeakBetweenCopies(t *testing.T) {
	before := NewModel(files(), false, render.LayoutUnified)
	after := press(t, before, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, after.Presentation().Files[0].Expanded)
	assert.False(t, before.Presentation().Files[0].Expanded)
	assert.False(t, before.expanded["a.go"])
}

func TestModel_ExpandAll(t *testing.T) {
	m := NewModel(files(), false, render.LayoutUnified)
	m = press(t, m, runes("a"))
	for _, f := range m.Presentation().Files {
		assert.True(t, f.Expanded, f.Path)
	}

	m = press(t, m, runes("a"))
	for _, f := range m.Presentation().Files {
		assert.False(t, f.Expanded, f.Path)
	}

	m = NewModel(files(), true, render.LayoutUnified)
	assert.True(t, m.Presentation().Files[2].Expanded)
}

func TestModel_Quit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := NewModel(files(), false, render.LayoutUnified).Update(msg)
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, msg.String())
	}
}

func TestModel_EmptyChangeSet(t *testing.T) {
	m := NewModel(nil, false, render.LayoutUnified)
	m = press(t, m, runes("j"), tea.KeyMsg{Type: tea.KeyEnter}, runes("a"))
	assert.Equal(t, 0, m.Cursor())
	assert.Contains(t, m.View(), "0 files changed, 0 additions, 0 deletions")
}

func TestModel_View(t *testing.T) {
	m := NewModel(files(), false, render.LayoutUnified)
	view := m.View()
	assert.Contains(t, view, "3 files changed, 1 addition, 1 deletion")
	assert.Contains(t, view, "Expand b.go, 0 additions, 1 deletions")
	assert.Contains(t, view, "Expand c.png, 0 additions, 0 deletions, binary file")
	assert.Contains(t, view, "q quit")
}

func manyFiles(n int) []diff.FileDiff {
	out := make([]diff.FileDiff, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, diff.FileDiff{Path: fmt.Sprintf("f%02d.go", i), Additions: 1})
	}
	return out
}

func TestModel_ViewportFollowsCursor(t *testing.T) {
	m := NewModel(manyFiles(20), false, render.LayoutUnified)
	m = press(t, m, tea.WindowSizeMsg{Width: 80, Height: 8})
	view := m.View()
	assert.Contains(t, view, "f00.go")
	assert.NotContains(t, view, "f10.go")

	for i := 0; i < 10; i++ {
		m = press(t, m, runes("j"))
	}
	view = m.View()
	assert.Contains(t, view, "Expand f10.go")
	assert.NotContains(t, view, "f00.go")
	assert.Contains(t, view, "20 files changed")
	assert.Contains(t, view, "q quit")

	for i := 0; i < 10; i++ {
		m = press(t, m, runes("k"))
	}
	assert.Contains(t, m.View(), "f00.go")
}

func TestModel_ViewportShowsExpandedCursorRow(t *testing.T) {
	files := manyFiles(3)
	files[0].Hunks = []diff.DiffHunk{{NewStart: 1, NewLines: 6, Content: "+1\n+2\n+3\n+4\n+5\n+6"}}
	m := NewModel(files, false, render.LayoutUnified)
	m = press(t, m, tea.WindowSizeMsg{Width: 80, Height: 7}, tea.KeyMsg{Type: tea.KeyEnter}, runes("j"), runes("j"))

	assert.Equal(t, 2, m.Cursor())
	assert.Contains(t, m.View(), "Expand f02.go")
}

func TestModel_SplitLayout(t *testing.T) {
	m := NewModel(files(), true, render.LayoutSplit)
	assert.Contains(t, m.View(), "│")
}
