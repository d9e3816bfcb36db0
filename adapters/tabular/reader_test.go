package tabular

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

// TestReadCSV tests basic CSV parsing with trimming
func TestReadCSV(t *testing.T) {
	path := writeCSV(t, "participant_001.csv", "pid, face_id ,version\n p001 ,face_1, left \np001,face_2,full\n")

	table, err := NewDataReader(path).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(table.Headers) != 3 {
		t.Fatalf("Expected 3 headers, got %d: %v", len(table.Headers), table.Headers)
	}
	if table.Headers[1] != "face_id" {
		t.Errorf("Expected trimmed header face_id, got %q", table.Headers[1])
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0]["pid"] != "p001" {
		t.Errorf("Expected trimmed cell p001, got %q", table.Rows[0]["pid"])
	}
	if table.Rows[0]["version"] != "left" {
		t.Errorf("Expected trimmed cell left, got %q", table.Rows[0]["version"])
	}
	if table.SourceFile != "participant_001.csv" {
		t.Errorf("Expected SourceFile participant_001.csv, got %q", table.SourceFile)
	}
}

// TestReadCSVDuplicateHeaders tests that the first occurrence of a duplicate header wins
func TestReadCSVDuplicateHeaders(t *testing.T) {
	path := writeCSV(t, "dup.csv", "pid,trust_rating,trust_rating\np001,4,9\n")

	table, err := NewDataReader(path).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(table.Headers) != 2 {
		t.Fatalf("Expected duplicate header to be dropped, got %v", table.Headers)
	}
	if got := table.Rows[0]["trust_rating"]; got != "4" {
		t.Errorf("Expected first-occurrence value 4, got %q", got)
	}
}

// TestReadCSVRaggedRows tests that short rows leave cells missing rather than failing
func TestReadCSVRaggedRows(t *testing.T) {
	path := writeCSV(t, "ragged.csv", "pid,face_id,trust_rating\np001,face_1\n")

	table, err := NewDataReader(path).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got := table.Rows[0]["trust_rating"]; got != "" {
		t.Errorf("Expected missing cell to be empty, got %q", got)
	}
}

// TestReadCSVHeaderOnly tests that a file without data rows is an error
func TestReadCSVHeaderOnly(t *testing.T) {
	path := writeCSV(t, "empty.csv", "pid,face_id\n")
	if _, err := NewDataReader(path).Read(); err == nil {
		t.Error("Expected error for header-only file")
	}
}

// TestReadMissingFile tests the not-found path
func TestReadMissingFile(t *testing.T) {
	if _, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv")).Read(); err == nil {
		t.Error("Expected error for missing file")
	}
}
