package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Mode selects which files in a data directory are eligible for loading.
type Mode string

const (
	// ModeTest loads every tabular file, including known test exports.
	ModeTest Mode = "test"
	// ModeProduction drops files produced by test sessions and synthetic
	// runs before any parsing happens.
	ModeProduction Mode = "production"
)

// ParseMode parses a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeTest:
		return ModeTest, nil
	case ModeProduction:
		return ModeProduction, nil
	}
	return "", fmt.Errorf("unknown mode %q (want test or production)", s)
}

// Filename patterns that mark a file as a test export. Exclusion wins over
// inclusion, so test_participant_7.csv is dropped even though it also
// matches the participant_* inclusion pattern.
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^test_`),
	regexp.MustCompile(`^test_participant`),
	regexp.MustCompile(`^PROLIFIC_TEST_`),
}

// Legacy test exports predate the naming convention and are matched by
// exact name.
var legacyTestFiles = map[string]bool{
	"test.csv":       true,
	"testdata.csv":   true,
	"pilot_test.csv": true,
	"demo_run.csv":   true,
}

// Inclusion patterns documented for the production filter. Anything not
// matching an exclusion pattern is loadable, so these exist for reporting
// and for sanity checks in tests.
var includePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^participant_`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`\d{8}[_-]\d{4,6}`),
}

// tabularExtensions are the file types the readers understand.
var tabularExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// Loadable reports whether a filename is eligible under the mode.
func (m Mode) Loadable(name string) bool {
	base := filepath.Base(name)
	if !tabularExtensions[strings.ToLower(filepath.Ext(base))] {
		return false
	}
	if m == ModeTest {
		return true
	}
	if legacyTestFiles[strings.ToLower(base)] {
		return false
	}
	for _, re := range excludePatterns {
		if re.MatchString(base) {
			return false
		}
	}
	return true
}

// MatchesInclude reports whether a filename matches one of the documented
// inclusion patterns (as opposed to being loadable only by default).
func MatchesInclude(name string) bool {
	base := filepath.Base(name)
	for _, re := range includePatterns {
		if re.MatchString(base) {
			return true
		}
	}
	return false
}
