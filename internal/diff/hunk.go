package diff

import (
	"strings"
	"unicode/utf8"
)

// ParseHunk splits a hunk body into classified, line-numbered records.
// It never fails: lines with an unrecognized first character are treated
// as context so a malformed hunk still renders.
func ParseHunk(h DiffHunk) []DiffLine {
	if h.Content == "" {
		return []DiffLine{}
	}

	raw := strings.Split(h.Content, "\n")
	lines := make([]DiffLine, 0, len(raw))
	oldLine := h.OldStart
	newLine := h.NewStart

	for _, line := range raw {
		switch lineTypeOf(line) {
		case LineHeader:
			lines = append(lines, DiffLine{Type: LineHeader, Content: line})
		case LineAddition:
			lines = append(lines, DiffLine{
				Type:          LineAddition,
				Content:       line[1:],
				NewLineNumber: intPtr(newLine),
			})
			newLine++
		case LineDeletion:
			lines = append(lines, DiffLine{
				Type:          LineDeletion,
				Content:       line[1:],
				OldLineNumber: intPtr(oldLine),
			})
			oldLine++
		case LineContext:
			lines = append(lines, DiffLine{
				Type:          LineContext,
				Content:       stripFirstRune(line),
				OldLineNumber: intPtr(oldLine),
				NewLineNumber: intPtr(newLine),
			})
			oldLine++
			newLine++
		}
	}

	return lines
}

// lineTypeOf classifies a raw hunk line by its first character.
func lineTypeOf(line string) LineType {
	if line == "" {
		return LineContext
	}
	switch line[0] {
	case '@':
		return LineHeader
	case '+':
		return LineAddition
	case '-':
		return LineDeletion
	default:
		return LineContext
	}
}

func stripFirstRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[size:]
}

func intPtr(n int) *int {
	return &n
}
