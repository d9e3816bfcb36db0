package filter

import (
	"fmt"
	"sort"
	"time"

	"facetrust/domain/survey"
)

// Named preset identifiers.
const (
	PresetAllData      = "all_data"
	PresetRawData      = "raw_data"
	PresetFullFaceOnly = "full_face_only"
	PresetHalfFaceOnly = "half_face_only"
	PresetRecent30Days = "recent_30_days"
)

// Preset returns the spec behind a named preset. Time-relative presets
// are anchored on now so callers stay reproducible in tests.
func Preset(name string, now time.Time) (Spec, error) {
	switch name {
	case PresetAllData:
		return Spec{}, nil
	case PresetRawData:
		return Spec{IncludeExcluded: true}, nil
	case PresetFullFaceOnly:
		return Spec{Include: map[string][]string{
			"version": {survey.ViewFull.String()},
		}}, nil
	case PresetHalfFaceOnly:
		return Spec{Include: map[string][]string{
			"version": {survey.ViewLeft.String(), survey.ViewRight.String()},
		}}, nil
	case PresetRecent30Days:
		return Spec{
			DateFrom: now.AddDate(0, 0, -30).Format("2006-01-02"),
		}, nil
	}
	return Spec{}, fmt.Errorf("unknown preset %q", name)
}

// PresetNames lists every known preset in stable order.
func PresetNames() []string {
	names := []string{
		PresetAllData,
		PresetRawData,
		PresetFullFaceOnly,
		PresetHalfFaceOnly,
		PresetRecent30Days,
	}
	sort.Strings(names)
	return names
}
