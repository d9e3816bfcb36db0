package ingest

import (
	"os"
	"path/filepath"
	"sort"

	"facetrust/adapters/tabular"
	"facetrust/domain/core"
	"facetrust/domain/survey"
	"facetrust/internal"
)

// SkippedFile records one file dropped during loading and why.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// LoadReport describes what a Load call actually read.
type LoadReport struct {
	FilesLoaded  []string      `json:"files_loaded"`
	FilesSkipped []SkippedFile `json:"files_skipped,omitempty"`
	RowsLoaded   int           `json:"rows_loaded"`
	RowsDropped  int           `json:"rows_dropped"` // transient-view and unrecognized-condition rows
}

// Load reads every eligible tabular file under dir, standardizes each
// table, and returns the merged record set. A file that fails to parse is
// skipped and the batch continues; only an empty eligible file set is
// fatal.
func Load(dir string, mode Mode) ([]survey.RawResponseRecord, *LoadReport, error) {
	logger := internal.DefaultLogger

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, core.NewNoDataError(dir)
	}

	var eligible []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if mode.Loadable(entry.Name()) {
			eligible = append(eligible, entry.Name())
		}
	}
	sort.Strings(eligible)

	if len(eligible) == 0 {
		return nil, nil, core.NewNoDataError(dir)
	}

	report := &LoadReport{}
	var records []survey.RawResponseRecord
	for _, name := range eligible {
		table, err := tabular.NewDataReader(filepath.Join(dir, name)).Read()
		if err != nil {
			logger.Warn("skipping %s: %v", name, err)
			report.FilesSkipped = append(report.FilesSkipped, SkippedFile{
				Name:   name,
				Reason: core.NewParseError(name, err).Error(),
			})
			continue
		}

		std := Standardize(table)
		report.FilesLoaded = append(report.FilesLoaded, name)
		report.RowsLoaded += len(std.Rows)
		report.RowsDropped += len(table.Rows) - len(std.Rows)
		records = append(records, ToRecords(std)...)
	}

	if len(report.FilesLoaded) == 0 {
		// Everything present failed to parse; nothing loadable is the same
		// fatal condition as an empty directory.
		return nil, report, core.NewNoDataError(dir)
	}

	logger.Info("loaded %d records from %d files (%d skipped, %d rows dropped)",
		len(records), len(report.FilesLoaded), len(report.FilesSkipped), report.RowsDropped)

	return records, report, nil
}
