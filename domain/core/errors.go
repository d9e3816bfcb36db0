package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrNoData means no loadable files survived the mode filter. It is the
	// only condition that aborts a whole pipeline run.
	ErrNoData = errors.New("no data files found")

	// ErrParse marks a single file that could not be read or parsed. The
	// offending file is skipped and the batch continues.
	ErrParse = errors.New("file parse failed")

	// ErrSchemaMismatch marks a long-format file missing one or more of its
	// required columns. The file is skipped and the batch continues.
	ErrSchemaMismatch = errors.New("required columns missing")

	// ErrInsufficientData is never surfaced as a Go error from the
	// statistical engines; they return structured results instead. It exists
	// so callers composing their own checks share one sentinel.
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewParseError(file string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrParse, file, cause)
}

func NewSchemaMismatchError(file string, missing []string) error {
	return fmt.Errorf("%w: %s: %v", ErrSchemaMismatch, file, missing)
}

func NewNoDataError(dir string) error {
	return fmt.Errorf("%w in %s", ErrNoData, dir)
}

// Error checking helpers
func IsNoDataError(err error) bool {
	return errors.Is(err, ErrNoData)
}

func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

func IsSchemaMismatchError(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}
