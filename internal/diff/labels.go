package diff

import (
	"fmt"
	"strconv"
	"strings"
)

// FileLabel builds the accessible label of a file row's toggle control.
// The verb describes what activating the control does.
//
// Addition and deletion counts are always rendered in plural form here;
// StatsAnnouncement is the one that pluralizes.
func FileLabel(f FileDiff, expanded bool) string {
	verb := "Expand"
	if expanded {
		verb = "Collapse"
	}

	parts := []string{
		verb,
		f.Path,
		strconv.Itoa(f.Additions) + " additions",
		strconv.Itoa(f.Deletions) + " deletions",
	}
	if f.IsRenamed && f.OldPath != "" {
		parts = append(parts, "renamed from "+f.OldPath)
	}
	if status := Classify(f).Status; status != StatusNone {
		parts = append(parts, status.Label())
	}
	return strings.Join(parts, ", ")
}

// StatsAnnouncement summarizes a whole change set for screen readers.
func StatsAnnouncement(files, additions, deletions int) string {
	return strings.Join([]string{
		countPhrase(files, "file changed", "files changed"),
		countPhrase(additions, "addition", "additions"),
		countPhrase(deletions, "deletion", "deletions"),
	}, ", ")
}

func countPhrase(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + plural
}

// SpokenPrefix is the word announced before a diff line.
func SpokenPrefix(t LineType) string {
	switch t {
	case LineAddition:
		return "addition"
	case LineDeletion:
		return "deletion"
	case LineContext:
		return "unchanged"
	case LineHeader:
		return ""
	}
	return ""
}

// SpokenLine describes a single line for assistive technology. Deletions
// are numbered on the old side, everything else on the new side. Header
// lines are not announced.
func SpokenLine(l DiffLine) string {
	prefix := SpokenPrefix(l.Type)
	if prefix == "" {
		return ""
	}
	num := l.NewLineNumber
	if l.Type == LineDeletion {
		num = l.OldLineNumber
	}
	if num == nil {
		return fmt.Sprintf("%s: %s", prefix, l.Content)
	}
	return fmt.Sprintf("%s line %d: %s", prefix, *num, l.Content)
}
