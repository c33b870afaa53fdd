package domain

// ViewMode is how a category's items are displayed.
type ViewMode string

// View modes.
const (
	ViewModeCard        ViewMode = "CARD"
	ViewModeSpreadsheet ViewMode = "SPREADSHEET"
)

// DefaultViewMode applies when nothing is stored for a category.
const DefaultViewMode = ViewModeCard

//nolint:gochecknoglobals // Static enum table
var viewModes = []ViewMode{ViewModeCard, ViewModeSpreadsheet}

// ParseViewMode returns the mode named by s, falling back to DefaultViewMode
// for empty or unrecognised input.
func ParseViewMode(s string) ViewMode {
	if m := parseEnum(s, viewModes); m != "" {
		return m
	}
	return DefaultViewMode
}

// Valid reports whether m is a known mode.
func (m ViewMode) Valid() bool {
	return parseEnum(string(m), viewModes) == m && m != ""
}
