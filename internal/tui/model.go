// Package tui is an interactive terminal browser over a change set.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lundberg/diffreview/internal/diff"
	"github.com/lundberg/diffreview/internal/render"
)

const helpText = "↑/k up • ↓/j down • enter/space toggle • a all • pgup/pgdn scroll • q quit"

// chromeHeight is the number of lines around the scrolling file list: the
// announcement with its blank line, and the help with its blank line.
const chromeHeight = 4

// Model is the bubbletea model of the file browser.
type Model struct {
	files    []diff.FileDiff
	expanded diff.ExpandedSet
	cursor   int
	renderer *render.Renderer
	help     lipgloss.Style
	pres     diff.Presentation

	// viewport is only used once the terminal size is known.
	viewport viewport.Model
	ready    bool
}

// NewModel creates a browser over files. With expandAll every file starts
// open.
func NewModel(files []diff.FileDiff, expandAll bool, layout render.Layout) Model {
	m := Model{
		files:    files,
		expanded: make(diff.ExpandedSet, len(files)),
		renderer: render.New(render.DefaultStyles(), layout),
		help:     lipgloss.NewStyle().Foreground(render.Muted),
	}
	if expandAll {
		for _, f := range files {
			m.expanded[f.Path] = true
		}
	}
	m.pres = diff.Present(files, m.expanded)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-chromeHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.sync()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.files) == 0 {
			return m, nil
		}
		m.expanded = m.withToggled(m.files[m.cursor].Path)
		m.pres = diff.Present(m.files, m.expanded)
	case "a":
		m.expanded = m.withAll(!m.allExpanded())
		m.pres = diff.Present(m.files, m.expanded)
	default:
		if !m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(key)
		return m, cmd
	}
	m.sync()
	return m, nil
}

// body renders every file row and records where each one starts.
func (m Model) body() (string, []int) {
	rows := make([]string, 0, len(m.pres.Files))
	offsets := make([]int, 0, len(m.pres.Files))
	line := 0
	for i, f := range m.pres.Files {
		row := m.renderer.File(f, i == m.cursor)
		offsets = append(offsets, line)
		line += strings.Count(row, "\n") + 1
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n"), offsets
}

// sync refreshes the viewport content and scrolls the cursor row into view.
func (m *Model) sync() {
	if !m.ready {
		return
	}
	content, offsets := m.body()
	m.viewport.SetContent(content)
	if len(offsets) == 0 {
		return
	}

	top := offsets[m.cursor]
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case top >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(top - m.viewport.Height + 1)
	}
}

// withToggled returns a copy of the expanded set with path flipped.
func (m Model) withToggled(path string) diff.ExpandedSet {
	next := make(diff.ExpandedSet, len(m.expanded)+1)
	for p, open := range m.expanded {
		next[p] = open
	}
	next[path] = !next[path]
	return next
}

func (m Model) withAll(open bool) diff.ExpandedSet {
	next := make(diff.ExpandedSet, len(m.files))
	if open {
		for _, f := range m.files {
			next[f.Path] = true
		}
	}
	return next
}

func (m Model) allExpanded() bool {
	for _, f := range m.files {
		if !m.expanded[f.Path] {
			return false
		}
	}
	return len(m.files) > 0
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.pres.Announcement)
	b.WriteString("\n\n")
	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		body, _ := m.body()
		b.WriteString(body)
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.Render(helpText))
	b.WriteString("\n")
	return b.String()
}

// Cursor returns the index of the selected file.
func (m Model) Cursor() int {
	return m.cursor
}

// Presentation returns the current rendering model.
func (m Model) Presentation() diff.Presentation {
	return m.pres
}
