package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"facetrust/adapters/tabular"
	"facetrust/domain/core"
	"facetrust/domain/survey"
)

// Canonical column names after standardization.
const (
	ColPID           = "pid"
	ColFaceID        = "face_id"
	ColVersion       = "version"
	ColTrustRating   = "trust_rating"
	ColEmotionRating = "emotion_rating"
	ColMascFem       = "masc_fem_choice"
	ColSurvey        = "survey_response"
	ColReactionTime  = "reaction_time_ms"
	ColTimestamp     = "timestamp"
	ColSecondaryID   = "secondary_id"
	ColDevice        = "device"
)

// columnAliases maps legacy column names to their canonical replacement.
// Aliasing happens exactly once, here; downstream code only ever sees
// canonical names.
var columnAliases = map[string]string{
	"participant_id":  ColPID,
	"participant":     ColPID,
	"subject_id":      ColPID,
	"facenumber":      ColFaceID,
	"face_number":     ColFaceID,
	"stimulus_id":     ColFaceID,
	"faceversion":     ColVersion,
	"face_version":    ColVersion,
	"view":            ColVersion,
	"trust":           ColTrustRating,
	"trustrating":     ColTrustRating,
	"emotion":         ColEmotionRating,
	"masc_fem":        ColMascFem,
	"masculinity":     ColMascFem,
	"rt":              ColReactionTime,
	"reaction_time":   ColReactionTime,
	"response_time":   ColReactionTime,
	"date":            ColTimestamp,
	"session_date":    ColTimestamp,
	"prolific_id":     ColSecondaryID,
	"prolific_pid":    ColSecondaryID,
	"platform_id":     ColSecondaryID,
	"device_type":     ColDevice,
	"user_agent_type": ColDevice,
}

// numericColumns are coerced to numeric form; values that do not parse
// become missing, never an error.
var numericColumns = map[string]bool{
	ColTrustRating:   true,
	ColEmotionRating: true,
	ColReactionTime:  true,
}

// timestampLayouts are tried in order. Standardized output always uses
// RFC3339, which is itself first in the list so a second pass is a no-op.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
	"02-Jan-2006",
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// Standardize rewrites a raw table into canonical form: legacy columns are
// renamed or back-filled into their canonical counterparts, face ids take
// the "face_<n>" form, rating fields are numerically coerced, timestamps
// are reformatted, and rows whose view normalizes to a transient condition
// are removed. Standardize is idempotent.
func Standardize(t *tabular.Table) *tabular.Table {
	out := &tabular.Table{SourceFile: t.SourceFile}

	// Header pass: lowercase, resolve aliases, keep first occurrence of
	// each canonical name. Legacy data back-fills a canonical column only
	// when that column is entirely empty.
	canonical := make([]string, 0, len(t.Headers))
	fillFrom := make(map[string]string) // canonical -> source header in t
	for _, h := range t.Headers {
		name := strings.ToLower(strings.TrimSpace(h))
		if target, ok := columnAliases[name]; ok {
			name = target
		}
		if prior, seen := fillFrom[name]; seen {
			// The canonical column and a legacy alias both exist. Data under
			// the canonical name is preserved unless it is entirely empty,
			// in which case the legacy values back-fill it. The legacy
			// column itself is dropped either way.
			priorIsCanonical := strings.ToLower(strings.TrimSpace(prior)) == name
			newIsCanonical := strings.ToLower(strings.TrimSpace(h)) == name
			switch {
			case newIsCanonical && !priorIsCanonical && !columnEmpty(t, h):
				fillFrom[name] = h
			case columnEmpty(t, prior) && !columnEmpty(t, h):
				fillFrom[name] = h
			}
			continue
		}
		fillFrom[name] = h
		canonical = append(canonical, name)
	}

	hasVersion := false
	for _, name := range canonical {
		if name == ColVersion {
			hasVersion = true
		}
	}

	out.Headers = canonical
	for _, row := range t.Rows {
		normalized := make(tabular.Row, len(canonical))
		for _, name := range canonical {
			normalized[name] = normalizeCell(name, row[fillFrom[name]])
		}
		if hasVersion {
			view, known := survey.NormalizeView(normalized[ColVersion])
			if !known || !view.IsAnalyzable() {
				// toggle/survey rows and unrecognizable conditions never
				// reach the exclusion engine
				continue
			}
			normalized[ColVersion] = view.String()
		}
		out.Rows = append(out.Rows, normalized)
	}

	return out
}

// normalizeCell canonicalizes one cell value for its column.
func normalizeCell(col, val string) string {
	val = strings.TrimSpace(val)
	switch {
	case col == ColFaceID:
		return normalizeFaceID(val)
	case col == ColTimestamp:
		return normalizeTimestamp(val)
	case numericColumns[col]:
		return normalizeNumeric(val)
	}
	return val
}

// normalizeFaceID rewrites bare numeric identifiers to the canonical
// "face_<n>" form. Mixed numeric/string columns are detected per value
// with a strict digit match, so "12" and "face_12" normalize identically.
func normalizeFaceID(val string) string {
	if digitsOnly.MatchString(val) {
		return "face_" + val
	}
	return val
}

func normalizeNumeric(val string) string {
	if val == "" {
		return ""
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return "" // non-numeric ratings become missing, not an error
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func normalizeTimestamp(val string) string {
	if val == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, val); err == nil {
			return ts.Format(time.RFC3339)
		}
	}
	return "" // unparsable timestamps become missing, not fatal
}

func columnEmpty(t *tabular.Table, header string) bool {
	if header == "" {
		return true
	}
	for _, row := range t.Rows {
		if strings.TrimSpace(row[header]) != "" {
			return false
		}
	}
	return true
}

// ToRecords converts a standardized table into typed records.
func ToRecords(t *tabular.Table) []survey.RawResponseRecord {
	records := make([]survey.RawResponseRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		view, _ := survey.NormalizeView(row[ColVersion])
		rec := survey.RawResponseRecord{
			PID:            core.ParticipantID(row[ColPID]),
			FaceID:         core.FaceID(row[ColFaceID]),
			View:           view,
			MascFemChoice:  row[ColMascFem],
			SurveyResponse: row[ColSurvey],
			SecondaryID:    row[ColSecondaryID],
			Device:         row[ColDevice],
			SourceFile:     t.SourceFile,
		}
		rec.TrustRating = parseOptionalFloat(row[ColTrustRating])
		rec.EmotionRating = parseOptionalFloat(row[ColEmotionRating])
		rec.ReactionTimeMS = parseOptionalFloat(row[ColReactionTime])
		rec.Timestamp = parseOptionalTime(row[ColTimestamp])
		records = append(records, rec)
	}
	return records
}

func parseOptionalFloat(val string) *float64 {
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseOptionalTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &ts
}
