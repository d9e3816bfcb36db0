// Package longform handles the alternative one-row-per-question-response
// data shape and its simplified model approximations.
package longform

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"facetrust/adapters/tabular"
	"facetrust/domain/core"
	"facetrust/domain/survey"
	"facetrust/internal"
)

// requiredColumns must all be present in a long-format file; a file
// missing any of them is skipped, not fatal.
var requiredColumns = []string{
	"participant_id",
	"image_id",
	"face_view",
	"question_type",
	"response",
	"timestamp",
}

// numericQuestionTypes is the fixed allow-list of question types whose
// responses are coerced to numbers. Everything else stays categorical
// even when it happens to look numeric.
var numericQuestionTypes = map[string]bool{
	"trust_rating":      true,
	"emotion_rating":    true,
	"confidence_rating": true,
}

// SkippedFile records one rejected long-format file.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Report describes a long-format load.
type Report struct {
	FilesLoaded  []string      `json:"files_loaded"`
	FilesSkipped []SkippedFile `json:"files_skipped,omitempty"`
	RowsLoaded   int           `json:"rows_loaded"`
}

// LoadDir reads every tabular file under dir as long-format data. Files
// missing required columns or failing to parse are skipped and recorded;
// only an entirely empty result is fatal.
func LoadDir(dir string) ([]survey.LongResponse, *Report, error) {
	logger := internal.DefaultLogger

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, core.NewNoDataError(dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".csv" || ext == ".xlsx" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, nil, core.NewNoDataError(dir)
	}

	report := &Report{}
	var responses []survey.LongResponse
	for _, name := range names {
		table, err := tabular.NewDataReader(filepath.Join(dir, name)).Read()
		if err != nil {
			logger.Warn("skipping %s: %v", name, err)
			report.FilesSkipped = append(report.FilesSkipped, SkippedFile{
				Name:   name,
				Reason: core.NewParseError(name, err).Error(),
			})
			continue
		}

		if missing := missingColumns(table); len(missing) > 0 {
			logger.Warn("skipping %s: missing columns %v", name, missing)
			report.FilesSkipped = append(report.FilesSkipped, SkippedFile{
				Name:   name,
				Reason: core.NewSchemaMismatchError(name, missing).Error(),
			})
			continue
		}

		rows := Normalize(table)
		report.FilesLoaded = append(report.FilesLoaded, name)
		report.RowsLoaded += len(rows)
		responses = append(responses, rows...)
	}

	if len(report.FilesLoaded) == 0 {
		return nil, report, core.NewNoDataError(dir)
	}

	logger.Info("loaded %d long-format responses from %d files (%d skipped)",
		len(responses), len(report.FilesLoaded), len(report.FilesSkipped))

	return responses, report, nil
}

func missingColumns(t *tabular.Table) []string {
	have := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		have[strings.ToLower(h)] = true
	}
	var missing []string
	for _, col := range requiredColumns {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// Normalize converts a schema-complete long-format table into typed
// responses with the derived numeric and ordering fields. Rows without a
// participant or image id cannot be attributed and are dropped.
func Normalize(t *tabular.Table) []survey.LongResponse {
	responses := make([]survey.LongResponse, 0, len(t.Rows))
	for _, row := range t.Rows {
		pid, err := core.ParseParticipantID(row["participant_id"])
		if err != nil {
			continue
		}
		imageID, err := core.ParseFaceID(row["image_id"])
		if err != nil {
			continue
		}

		questionType := strings.ToLower(strings.TrimSpace(row["question_type"]))

		resp := survey.LongResponse{
			ParticipantID: pid,
			ImageID:       imageID,
			QuestionType:  questionType,
			Response:      row["response"],
			SourceFile:    t.SourceFile,
		}

		if view, ok := survey.NormalizeView(row["face_view"]); ok {
			resp.FaceView = view
		} else {
			resp.FaceView = survey.View(strings.ToLower(strings.TrimSpace(row["face_view"])))
		}
		resp.FaceViewOrder = survey.FaceViewOrder[resp.FaceView]

		resp.IsNumericResponse = numericQuestionTypes[questionType]
		if resp.IsNumericResponse {
			if f, err := strconv.ParseFloat(strings.TrimSpace(row["response"]), 64); err == nil {
				v := f
				resp.ResponseNumeric = &v
			}
		}

		if ts := parseTimestamp(row["timestamp"]); ts != nil {
			resp.Timestamp = ts
		}

		responses = append(responses, resp)
	}
	return responses
}

var longTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(val string) *time.Time {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	for _, layout := range longTimestampLayouts {
		if ts, err := time.Parse(layout, val); err == nil {
			return &ts
		}
	}
	return nil
}
