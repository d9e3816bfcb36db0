package filter

import (
	"fmt"
	"sort"
	"time"

	"facetrust/domain/survey"
	"facetrust/internal/errors"
)

// Spec is a declarative filter over the cleaned dataset. All populated
// predicates are ANDed; there is no OR composition.
type Spec struct {
	// DateFrom and DateTo bound record timestamps inclusively. Either end
	// may be empty. Values use "2006-01-02" or RFC3339.
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`

	// Include lists acceptable values per known column. An empty list for
	// a column is ignored.
	Include map[string][]string `json:"include,omitempty"`

	// IncludeExcluded keeps records with IncludeInPrimary == false.
	IncludeExcluded bool `json:"include_excluded"`
}

// Validation is the outcome of validating a Spec. Issues make the spec
// invalid; warnings do not.
type Validation struct {
	Valid    bool     `json:"valid"`
	Issues   []string `json:"issues,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// columnAccessors maps every known filterable column to its value.
var columnAccessors = map[string]func(survey.CleanedRecord) string{
	"pid":             func(r survey.CleanedRecord) string { return r.PID.String() },
	"face_id":         func(r survey.CleanedRecord) string { return r.FaceID.String() },
	"version":         func(r survey.CleanedRecord) string { return r.View.String() },
	"masc_fem_choice": func(r survey.CleanedRecord) string { return r.MascFemChoice },
	"secondary_id":    func(r survey.CleanedRecord) string { return r.SecondaryID },
	"device":          func(r survey.CleanedRecord) string { return r.Device },
	"source_file":     func(r survey.CleanedRecord) string { return r.SourceFile },
}

// closedColumns are columns whose value domain is fixed by the schema. An
// include value outside the domain can never be constructed, so it is an
// issue rather than a warning.
var closedColumns = map[string]map[string]bool{
	"version": {
		survey.ViewLeft.String():  true,
		survey.ViewRight.String(): true,
		survey.ViewFull.String():  true,
	},
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// Engine filters a cleaned dataset.
type Engine struct {
	records []survey.CleanedRecord
}

// NewEngine creates a filter engine over a cleaned dataset.
func NewEngine(records []survey.CleanedRecord) *Engine {
	return &Engine{records: records}
}

// Apply returns the records passing every predicate of the spec. The
// input is never mutated.
func (e *Engine) Apply(spec Spec) ([]survey.CleanedRecord, error) {
	from, to, err := parseDateRange(spec)
	if err != nil {
		return nil, err
	}
	for col := range spec.Include {
		if _, ok := columnAccessors[col]; !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("unknown filter column %q", col))
		}
	}

	var out []survey.CleanedRecord
	for _, rec := range e.records {
		if !spec.IncludeExcluded && !rec.IncludeInPrimary {
			continue
		}
		if !withinRange(rec, from, to) {
			continue
		}
		if !matchesIncludeLists(rec, spec.Include) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Validate checks a spec without applying it. Unparsable dates and values
// a closed column can never hold are issues; unseen values of open
// columns are warnings.
func (e *Engine) Validate(spec Spec) Validation {
	v := Validation{}

	if _, _, err := parseDateRange(spec); err != nil {
		v.Issues = append(v.Issues, err.Error())
	}

	cols := make([]string, 0, len(spec.Include))
	for col := range spec.Include {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	for _, col := range cols {
		accessor, known := columnAccessors[col]
		if !known {
			v.Issues = append(v.Issues, fmt.Sprintf("unknown filter column %q", col))
			continue
		}

		if domain, closed := closedColumns[col]; closed {
			for _, val := range spec.Include[col] {
				if !domain[val] {
					v.Issues = append(v.Issues, fmt.Sprintf("column %q can never hold %q", col, val))
				}
			}
			continue
		}

		seen := make(map[string]bool)
		for _, rec := range e.records {
			seen[accessor(rec)] = true
		}
		for _, val := range spec.Include[col] {
			if !seen[val] {
				v.Warnings = append(v.Warnings, fmt.Sprintf("column %q has no records with value %q", col, val))
			}
		}
	}

	v.Valid = len(v.Issues) == 0
	return v
}

func parseDateRange(spec Spec) (from, to *time.Time, err error) {
	from, err = parseDate(spec.DateFrom)
	if err != nil {
		return nil, nil, errors.InvalidInput(fmt.Sprintf("unparsable date_from %q", spec.DateFrom))
	}
	to, err = parseDate(spec.DateTo)
	if err != nil {
		return nil, nil, errors.InvalidInput(fmt.Sprintf("unparsable date_to %q", spec.DateTo))
	}
	if to != nil && len(spec.DateTo) == len("2006-01-02") {
		// A bare end date is inclusive through the whole day.
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, errors.InvalidInput("date_from is after date_to")
	}
	return from, to, nil
}

func parseDate(val string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, val); err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("unparsable date %q", val)
}

// withinRange applies the inclusive date range. Records without a
// timestamp fail any bounded range: their session date cannot be
// established.
func withinRange(rec survey.CleanedRecord, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if rec.Timestamp == nil {
		return false
	}
	if from != nil && rec.Timestamp.Before(*from) {
		return false
	}
	if to != nil && rec.Timestamp.After(*to) {
		return false
	}
	return true
}

func matchesIncludeLists(rec survey.CleanedRecord, include map[string][]string) bool {
	for col, values := range include {
		if len(values) == 0 {
			continue
		}
		got := columnAccessors[col](rec)
		found := false
		for _, val := range values {
			if got == val {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
