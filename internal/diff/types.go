package diff

import (
	"encoding/json"
	"fmt"
)

// DiffHunk is one contiguous change region within a file. Content holds the
// hunk body with every line carrying its one-character marker.
type DiffHunk struct { //nolint:revive // name mirrors the wire format
	OldStart int    `json:"oldStart"`
	OldLines int    `json:"oldLines"`
	NewStart int    `json:"newStart"`
	NewLines int    `json:"newLines"`
	Content  string `json:"content"`
}

// FileDiff is one file's change record as supplied by a diff source.
type FileDiff struct {
	Path      string     `json:"path"`
	OldPath   string     `json:"oldPath,omitempty"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	IsNew     bool       `json:"isNew"`
	IsDeleted bool       `json:"isDeleted"`
	IsRenamed bool       `json:"isRenamed"`
	IsBinary  bool       `json:"isBinary"`
	Hunks     []DiffHunk `json:"hunks"`
}

// LineType classifies a parsed diff line.
type LineType int

const (
	LineContext LineType = iota // present in both images
	LineAddition
	LineDeletion
	LineHeader // "@@ ... @@" echo, never numbered
)

var lineTypeNames = [...]string{
	LineContext:  "context",
	LineAddition: "addition",
	LineDeletion: "deletion",
	LineHeader:   "header",
}

func (t LineType) String() string {
	if t < 0 || int(t) >= len(lineTypeNames) {
		return fmt.Sprintf("LineType(%d)", int(t))
	}
	return lineTypeNames[t]
}

// Marker returns the unified-diff prefix for the line type. Headers have
// no single-character marker.
func (t LineType) Marker() string {
	switch t {
	case LineAddition:
		return "+"
	case LineDeletion:
		return "-"
	case LineContext:
		return " "
	case LineHeader:
		return ""
	}
	return ""
}

// MarshalJSON encodes the line type by name.
func (t LineType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a line type name.
func (t *LineType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range lineTypeNames {
		if n == name {
			*t = LineType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown line type %q", name)
}

// DiffLine is one classified line of a hunk. OldLineNumber is set for
// deletions and context, NewLineNumber for additions and context.
type DiffLine struct { //nolint:revive // name mirrors the wire format
	Type          LineType `json:"type"`
	Content       string   `json:"content"`
	OldLineNumber *int     `json:"oldLineNumber,omitempty"`
	NewLineNumber *int     `json:"newLineNumber,omitempty"`
}
