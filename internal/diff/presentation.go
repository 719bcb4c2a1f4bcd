package diff

// ExpandState reports the UI-owned expand/collapse state of a file row.
type ExpandState interface {
	IsExpanded(path string) bool
}

// ExpandedSet marks individual paths as expanded. A nil set has every
// file collapsed.
type ExpandedSet map[string]bool

// IsExpanded implements ExpandState.
func (s ExpandedSet) IsExpanded(path string) bool {
	return s[path]
}

// AllExpanded reports every file as expanded.
type AllExpanded struct{}

// IsExpanded implements ExpandState.
func (AllExpanded) IsExpanded(string) bool {
	return true
}

// PresentedLine is a parsed line together with its spoken description.
type PresentedLine struct {
	DiffLine
	Spoken string `json:"spoken,omitempty"`
}

// FilePresentation is everything a renderer needs for one file row. Pairs
// is only filled for side-by-side views.
type FilePresentation struct {
	Path           string          `json:"path"`
	OldPath        string          `json:"oldPath,omitempty"`
	Additions      int             `json:"additions"`
	Deletions      int             `json:"deletions"`
	IsBinary       bool            `json:"isBinary"`
	Classification Classification  `json:"classification"`
	StatusLabel    string          `json:"statusLabel,omitempty"`
	Expanded       bool            `json:"expanded"`
	Label          string          `json:"label"`
	Lines          []PresentedLine `json:"lines"`
	Pairs          []LinePair      `json:"pairs,omitempty"`
}

// Summary holds the aggregate counts of a change set.
type Summary struct {
	FileCount int `json:"fileCount"`
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// Presentation is the rendering model of a whole change set.
type Presentation struct {
	Files        []FilePresentation `json:"files"`
	Summary      Summary            `json:"summary"`
	Announcement string             `json:"announcement"`
}

// PresentFile classifies, parses and labels a single file.
func PresentFile(f FileDiff, expanded bool) FilePresentation {
	c := Classify(f)

	lines := []PresentedLine{}
	for _, h := range f.Hunks {
		for _, l := range ParseHunk(h) {
			lines = append(lines, PresentedLine{DiffLine: l, Spoken: SpokenLine(l)})
		}
	}

	return FilePresentation{
		Path:           f.Path,
		OldPath:        f.OldPath,
		Additions:      f.Additions,
		Deletions:      f.Deletions,
		IsBinary:       f.IsBinary,
		Classification: c,
		StatusLabel:    c.Status.Label(),
		Expanded:       expanded,
		Label:          FileLabel(f, expanded),
		Lines:          lines,
	}
}

// Present builds the presentation of a list of files. A nil expanded
// state collapses every file.
func Present(files []FileDiff, expanded ExpandState) Presentation {
	p := Presentation{
		Files: make([]FilePresentation, 0, len(files)),
	}
	for _, f := range files {
		open := expanded != nil && expanded.IsExpanded(f.Path)
		p.Files = append(p.Files, PresentFile(f, open))
		p.Summary.Additions += f.Additions
		p.Summary.Deletions += f.Deletions
	}
	p.Summary.FileCount = len(files)
	p.Announcement = StatsAnnouncement(p.Summary.FileCount, p.Summary.Additions, p.Summary.Deletions)
	return p
}
