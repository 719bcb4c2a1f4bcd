package diff

// LinePair is one row of a side-by-side view. Left is the old image and
// Right the new one; either may be nil when the other side has no
// counterpart. Header rows set only Header.
type LinePair struct {
	Header *PresentedLine `json:"header,omitempty"`
	Left   *PresentedLine `json:"left,omitempty"`
	Right  *PresentedLine `json:"right,omitempty"`
}

// SideBySide pairs each run of deletions with the run of additions that
// follows it, row by row. Context lines appear on both sides.
func SideBySide(lines []PresentedLine) []LinePair {
	pairs := make([]LinePair, 0, len(lines))
	var dels, adds []*PresentedLine

	flush := func() {
		for i := 0; i < max(len(dels), len(adds)); i++ {
			var p LinePair
			if i < len(dels) {
				p.Left = dels[i]
			}
			if i < len(adds) {
				p.Right = adds[i]
			}
			pairs = append(pairs, p)
		}
		dels, adds = dels[:0], adds[:0]
	}

	for i := range lines {
		l := &lines[i]
		switch l.Type {
		case LineDeletion:
			if len(adds) > 0 {
				flush()
			}
			dels = append(dels, l)
		case LineAddition:
			adds = append(adds, l)
		case LineHeader:
			flush()
			pairs = append(pairs, LinePair{Header: l})
		default:
			flush()
			pairs = append(pairs, LinePair{Left: l, Right: l})
		}
	}
	flush()
	return pairs
}
