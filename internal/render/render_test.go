package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lundberg/diffreview/internal/diff"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func sample() []diff.FileDiff {
	return []diff.FileDiff{
		{
			Path:      "main.go",
			Additions: 1,
			Deletions: 1,
			Hunks: []diff.DiffHunk{
				{OldStart: 3, OldLines: 2, NewStart: 3, NewLines: 2, Content: " keep\n-old\n+new"},
			},
		},
		{Path: "gone.txt", Deletions: 2, IsDeleted: true},
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	p := diff.Present(sample(), diff.ExpandedSet{"main.go": true})
	require.NoError(t, New(DefaultStyles(), LayoutUnified).Render(&buf, p))

	out := buf.String()
	lines := strings.Split(out, "\n")
	assert.Equal(t, "2 files changed, 1 addition, 3 deletions", lines[0])
	assert.Contains(t, out, "M Collapse main.go, 1 additions, 1 deletions")
	assert.Contains(t, out, "D Expand gone.txt, 0 additions, 2 deletions, deleted file")
	assert.Contains(t, out, "    3     3   keep")
	assert.Contains(t, out, "    4       - old")
	assert.Contains(t, out, "          4 + new")
}

func TestFile_Collapsed(t *testing.T) {
	r := New(DefaultStyles(), LayoutUnified)
	fp := diff.PresentFile(sample()[0], false)
	assert.Equal(t, "M Expand main.go, 1 additions, 1 deletions", r.File(fp, false))
}

func TestLines_Header(t *testing.T) {
	r := New(DefaultStyles(), LayoutUnified)
	out := r.Lines([]diff.PresentedLine{{DiffLine: diff.DiffLine{Type: diff.LineHeader, Content: "@@ -1 +1 @@"}}})
	assert.Equal(t, "    @@ -1 +1 @@", out)
}

func TestRender_Split(t *testing.T) {
	var buf bytes.Buffer
	p := diff.Present(sample(), diff.ExpandedSet{"main.go": true})
	require.NoError(t, New(DefaultStyles(), LayoutSplit).Render(&buf, p))

	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "M Collapse main.go, 1 additions, 1 deletions", lines[2])
	assert.Equal(t, fmt.Sprintf("%5d %-50s │ %5d %s", 3, "  keep", 3, "  keep"), lines[3])
	assert.Equal(t, fmt.Sprintf("%5d %-50s │ %5d %s", 4, "- old", 4, "+ new"), lines[4])
}

func TestSplit_UnpairedAndLongLines(t *testing.T) {
	r := New(DefaultStyles(), LayoutSplit)
	fp := diff.PresentFile(diff.FileDiff{
		Path:  "a.go",
		Hunks: []diff.DiffHunk{{OldStart: 1, NewStart: 1, Content: "-" + strings.Repeat("x", 60) + "\n-\tgone"}},
	}, true)

	lines := strings.Split(r.Split(diff.SideBySide(fp.Lines)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, fmt.Sprintf("%5d %s │ %5s ", 1, "- "+strings.Repeat("x", 47)+"…", ""), lines[0])
	assert.Equal(t, fmt.Sprintf("%5d %-50s │ %5s ", 2, "-     gone", ""), lines[1])
}

func TestFile_SplitUsesServerPairs(t *testing.T) {
	r := New(DefaultStyles(), LayoutSplit)
	fp := diff.PresentFile(sample()[0], true)
	fp.Pairs = diff.SideBySide(fp.Lines)[:1]
	assert.Equal(t, 2, strings.Count(r.File(fp, false), "\n")+1)
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, "A", Glyph(diff.IconAdded))
	assert.Equal(t, "D", Glyph(diff.IconRemoved))
	assert.Equal(t, "M", Glyph(diff.IconModified))
}
