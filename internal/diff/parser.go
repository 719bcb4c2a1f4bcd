// Package diff turns unified diffs into classified, line-numbered records
// and builds the accessible presentation model shown by the review UI.
package diff

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Parse parses git's unified diff output into per-file change records.
// Hunk content keeps the +/-/space markers and omits the @@ header line.
func Parse(input string) ([]FileDiff, error) {
	if strings.TrimSpace(input) == "" {
		return []FileDiff{}, nil
	}

	files, _, err := gitdiff.Parse(strings.NewReader(normalizeBinaryMarkers(input)))
	if err != nil {
		return nil, fmt.Errorf("parsing unified diff: %w", err)
	}

	result := make([]FileDiff, 0, len(files))
	for _, f := range files {
		result = append(result, convertFile(f))
	}
	return result, nil
}

// normalizeBinaryMarkers rewrites git's "Binary files a/x and b/x differ"
// lines to the bare "Binary files differ" form gitdiff recognizes. Hunk
// body lines always start with a marker, so a line at column zero that
// starts with "Binary files " can only be an extended header.
func normalizeBinaryMarkers(input string) string {
	if !strings.Contains(input, "\nBinary files ") && !strings.HasPrefix(input, "Binary files ") {
		return input
	}
	lines := strings.SplitAfter(input, "\n")
	for i, l := range lines {
		body := strings.TrimSuffix(l, "\n")
		if strings.HasPrefix(body, "Binary files ") && strings.HasSuffix(body, " differ") {
			lines[i] = "Binary files differ\n"
		}
	}
	return strings.Join(lines, "")
}

func convertFile(f *gitdiff.File) FileDiff {
	fd := FileDiff{
		Path:      f.NewName,
		IsNew:     f.IsNew,
		IsDeleted: f.IsDelete,
		IsRenamed: f.IsRename,
		IsBinary:  f.IsBinary,
		Hunks:     make([]DiffHunk, 0, len(f.TextFragments)),
	}
	if f.IsDelete || fd.Path == "" {
		fd.Path = f.OldName
	}
	if f.IsRename {
		fd.OldPath = f.OldName
	}

	for _, frag := range f.TextFragments {
		fd.Hunks = append(fd.Hunks, convertFragment(frag))
		fd.Additions += int(frag.LinesAdded)
		fd.Deletions += int(frag.LinesDeleted)
	}
	return fd
}

func convertFragment(frag *gitdiff.TextFragment) DiffHunk {
	body := make([]string, 0, len(frag.Lines))
	for _, l := range frag.Lines {
		body = append(body, opMarker(l.Op)+strings.TrimSuffix(l.Line, "\n"))
	}
	return DiffHunk{
		OldStart: int(frag.OldPosition),
		OldLines: int(frag.OldLines),
		NewStart: int(frag.NewPosition),
		NewLines: int(frag.NewLines),
		Content:  strings.Join(body, "\n"),
	}
}

func opMarker(op gitdiff.LineOp) string {
	switch op {
	case gitdiff.OpAdd:
		return "+"
	case gitdiff.OpDelete:
		return "-"
	default:
		return " "
	}
}
