// Package render draws diff presentations for the terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lundberg/diffreview/internal/diff"
)

// Semantic colors keyed by diff.ColorKey.
var (
	Success     = lipgloss.Color("#8BC34A")
	Destructive = lipgloss.Color("#e53935")
	Warning     = lipgloss.Color("#FFC107")
	Muted       = lipgloss.Color("#8a94a6")
)

// Styles holds every style the renderer uses.
type Styles struct {
	Accent  map[diff.ColorKey]lipgloss.Style
	Line    map[diff.LineType]lipgloss.Style
	Gutter  lipgloss.Style
	Summary lipgloss.Style
	Cursor  lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Accent: map[diff.ColorKey]lipgloss.Style{
			diff.ColorSuccess:     lipgloss.NewStyle().Foreground(Success).Bold(true),
			diff.ColorDestructive: lipgloss.NewStyle().Foreground(Destructive).Bold(true),
			diff.ColorWarning:     lipgloss.NewStyle().Foreground(Warning).Bold(true),
			diff.ColorMuted:       lipgloss.NewStyle().Foreground(Muted),
		},
		Line: map[diff.LineType]lipgloss.Style{
			diff.LineAddition: lipgloss.NewStyle().Foreground(Success),
			diff.LineDeletion: lipgloss.NewStyle().Foreground(Destructive),
			diff.LineContext:  lipgloss.NewStyle(),
			diff.LineHeader:   lipgloss.NewStyle().Foreground(Muted).Italic(true),
		},
		Gutter:  lipgloss.NewStyle().Foreground(Muted),
		Summary: lipgloss.NewStyle().Bold(true),
		Cursor:  lipgloss.NewStyle().Reverse(true),
	}
}

// Glyph is the one-character icon for a file row.
func Glyph(icon diff.IconKey) string {
	switch icon {
	case diff.IconAdded:
		return "A"
	case diff.IconRemoved:
		return "D"
	}
	return "M"
}

// Layout selects how expanded lines are drawn.
type Layout string

const (
	LayoutUnified Layout = "unified" // one column, old and new numbers in the gutter
	LayoutSplit   Layout = "split"   // old image left, new image right
)

// splitColumn is the text width of the left half of a split row.
const splitColumn = 50

// Renderer turns presentations into styled text.
type Renderer struct {
	styles Styles
	layout Layout
}

// New returns a renderer using styles. Anything but LayoutSplit renders
// unified.
func New(styles Styles, layout Layout) *Renderer {
	return &Renderer{styles: styles, layout: layout}
}

// Render writes the announcement followed by every file.
func (r *Renderer) Render(w io.Writer, p diff.Presentation) error {
	var b strings.Builder
	b.WriteString(r.styles.Summary.Render(p.Announcement))
	b.WriteString("\n\n")
	for _, f := range p.Files {
		b.WriteString(r.File(f, false))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// File renders one file row, and its lines when expanded.
func (r *Renderer) File(f diff.FilePresentation, selected bool) string {
	accent := r.styles.Accent[f.Classification.Color]
	row := accent.Render(Glyph(f.Classification.Icon)) + " " + f.Label
	if selected {
		row = r.styles.Cursor.Render(row)
	}
	if !f.Expanded || len(f.Lines) == 0 {
		return row
	}
	if r.layout == LayoutSplit {
		pairs := f.Pairs
		if pairs == nil {
			pairs = diff.SideBySide(f.Lines)
		}
		return row + "\n" + r.Split(pairs)
	}
	return row + "\n" + r.Lines(f.Lines)
}

// Lines renders diff lines with an old/new number gutter.
func (r *Renderer) Lines(lines []diff.PresentedLine) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		style := r.styles.Line[l.Type]
		if l.Type == diff.LineHeader {
			out = append(out, "    "+style.Render(l.Content))
			continue
		}
		gutter := fmt.Sprintf("%5s %5s", number(l.OldLineNumber), number(l.NewLineNumber))
		out = append(out, r.styles.Gutter.Render(gutter)+" "+style.Render(l.Type.Marker()+" "+l.Content))
	}
	return strings.Join(out, "\n")
}

// Split renders side-by-side rows, old image on the left.
func (r *Renderer) Split(pairs []diff.LinePair) string {
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.Header != nil {
			out = append(out, "    "+r.styles.Line[diff.LineHeader].Render(p.Header.Content))
			continue
		}
		left := r.side(p.Left, true, splitColumn)
		right := r.side(p.Right, false, 0)
		out = append(out, left+r.styles.Gutter.Render(" │ ")+right)
	}
	return strings.Join(out, "\n")
}

// side renders one half of a split row. A positive width pads or cuts the
// text to that many runes.
func (r *Renderer) side(l *diff.PresentedLine, old bool, width int) string {
	var num *int
	text := ""
	style := lipgloss.NewStyle()
	if l != nil {
		num = l.NewLineNumber
		if old {
			num = l.OldLineNumber
		}
		text = l.Type.Marker() + " " + strings.ReplaceAll(l.Content, "\t", "    ")
		style = r.styles.Line[l.Type]
	}
	if width > 0 {
		text = fit(text, width)
	}
	return r.styles.Gutter.Render(fmt.Sprintf("%5s", number(num))) + " " + style.Render(text)
}

func fit(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(runes))
}

func number(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
