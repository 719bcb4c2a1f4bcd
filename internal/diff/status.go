package diff

// Status is a file's special change status. StatusNone means an ordinary
// modification.
type Status string

const (
	StatusNone    Status = ""
	StatusNew     Status = "new-file"
	StatusDeleted Status = "deleted-file"
	StatusRenamed Status = "renamed-file"
	StatusBinary  Status = "binary-file"
)

// Label is the phrase used when the status is spoken or displayed.
func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "new file"
	case StatusDeleted:
		return "deleted file"
	case StatusRenamed:
		return "renamed file"
	case StatusBinary:
		return "binary file"
	}
	return ""
}

// IconKey selects one of three file icons.
type IconKey string

const (
	IconAdded    IconKey = "file-added"
	IconRemoved  IconKey = "file-removed"
	IconModified IconKey = "file-modified"
)

// ColorKey selects the accent color of a file row.
type ColorKey string

const (
	ColorSuccess     ColorKey = "success"
	ColorDestructive ColorKey = "destructive"
	ColorWarning     ColorKey = "warning"
	ColorMuted       ColorKey = "muted"
)

// Classification is the resolved status of a file plus its visual keys.
type Classification struct {
	Status Status   `json:"status"`
	Icon   IconKey  `json:"icon"`
	Color  ColorKey `json:"color"`
}

// Classify resolves the flags of f into a single status. The first set
// flag wins, in the order new, deleted, renamed, binary.
func Classify(f FileDiff) Classification {
	switch {
	case f.IsNew:
		return Classification{Status: StatusNew, Icon: IconAdded, Color: ColorSuccess}
	case f.IsDeleted:
		return Classification{Status: StatusDeleted, Icon: IconRemoved, Color: ColorDestructive}
	case f.IsRenamed:
		return Classification{Status: StatusRenamed, Icon: IconModified, Color: ColorWarning}
	case f.IsBinary:
		return Classification{Status: StatusBinary, Icon: IconModified, Color: ColorMuted}
	default:
		return Classification{Status: StatusNone, Icon: IconModified, Color: ColorMuted}
	}
}
