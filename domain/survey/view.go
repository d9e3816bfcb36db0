package survey

import (
	"strings"
)

// View is the viewing condition a face was rated under.
type View string

const (
	ViewLeft  View = "left"
	ViewRight View = "right"
	ViewFull  View = "full"

	// Transient conditions that appear in raw exports but never survive
	// standardization. Rows carrying them are dropped before exclusion
	// logic runs.
	ViewToggle View = "toggle"
	ViewSurvey View = "survey"
)

// viewSynonyms maps raw version strings (lowercased, space-trimmed) to the
// canonical view. Legacy exports used long-form labels.
var viewSynonyms = map[string]View{
	"left":       ViewLeft,
	"left half":  ViewLeft,
	"left_half":  ViewLeft,
	"l":          ViewLeft,
	"right":      ViewRight,
	"right half": ViewRight,
	"right_half": ViewRight,
	"r":          ViewRight,
	"full":       ViewFull,
	"full face":  ViewFull,
	"full_face":  ViewFull,
	"whole":      ViewFull,
	"toggle":     ViewToggle,
	"survey":     ViewSurvey,
}

// NormalizeView maps a raw version string to its canonical View. The second
// return is false when the value is not a recognized condition.
func NormalizeView(raw string) (View, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.Join(strings.Fields(key), " ")
	v, ok := viewSynonyms[key]
	return v, ok
}

// IsAnalyzable reports whether the view is one of the three canonical
// conditions kept for analysis.
func (v View) IsAnalyzable() bool {
	return v == ViewLeft || v == ViewRight || v == ViewFull
}

// String returns the string representation.
func (v View) String() string {
	return string(v)
}
