package ingest

import (
	"reflect"
	"testing"

	"facetrust/adapters/tabular"
	"facetrust/domain/survey"
)

func table(headers []string, rows ...[]string) *tabular.Table {
	t := &tabular.Table{Headers: headers, SourceFile: "fixture.csv"}
	for _, cells := range rows {
		row := make(tabular.Row, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = cells[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// TestStandardizeColumnAliases tests that legacy column names resolve to canonical ones
func TestStandardizeColumnAliases(t *testing.T) {
	in := table(
		[]string{"Participant_ID", "FaceNumber", "FaceVersion", "Trust", "RT", "Prolific_ID"},
		[]string{"p001", "12", "left", "4", "650", "PL_123"},
	)

	out := Standardize(in)

	want := []string{ColPID, ColFaceID, ColVersion, ColTrustRating, ColReactionTime, ColSecondaryID}
	if !reflect.DeepEqual(out.Headers, want) {
		t.Fatalf("Headers = %v, want %v", out.Headers, want)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(out.Rows))
	}
	row := out.Rows[0]
	if row[ColPID] != "p001" {
		t.Errorf("pid = %q", row[ColPID])
	}
	if row[ColFaceID] != "face_12" {
		t.Errorf("Expected numeric face id to normalize to face_12, got %q", row[ColFaceID])
	}
	if row[ColSecondaryID] != "PL_123" {
		t.Errorf("secondary_id = %q", row[ColSecondaryID])
	}
}

// TestStandardizeViewNormalization tests version canonicalization and transient-row removal
func TestStandardizeViewNormalization(t *testing.T) {
	in := table(
		[]string{"pid", "face_id", "version"},
		[]string{"p001", "face_1", "Left Half"},
		[]string{"p001", "face_1", " LEFT "},
		[]string{"p001", "face_1", "full face"},
		[]string{"p001", "face_1", "toggle"},
		[]string{"p001", "face_1", "survey"},
		[]string{"p001", "face_1", "sideways"},
	)

	out := Standardize(in)

	if len(out.Rows) != 3 {
		t.Fatalf("Expected transient and unrecognized rows to be dropped, got %d rows", len(out.Rows))
	}
	wantViews := []string{"left", "left", "full"}
	for i, row := range out.Rows {
		if row[ColVersion] != wantViews[i] {
			t.Errorf("Row %d version = %q, want %q", i, row[ColVersion], wantViews[i])
		}
	}
}

// TestStandardizeNumericCoercion tests that ratings coerce or become missing
func TestStandardizeNumericCoercion(t *testing.T) {
	in := table(
		[]string{"pid", "version", "trust_rating", "reaction_time_ms"},
		[]string{"p001", "left", "4.50", "650.0"},
		[]string{"p001", "left", "not-a-number", ""},
	)

	out := Standardize(in)

	if got := out.Rows[0][ColTrustRating]; got != "4.5" {
		t.Errorf("trust_rating = %q, want 4.5", got)
	}
	if got := out.Rows[0][ColReactionTime]; got != "650" {
		t.Errorf("reaction_time_ms = %q, want 650", got)
	}
	if got := out.Rows[1][ColTrustRating]; got != "" {
		t.Errorf("Expected non-numeric rating to become missing, got %q", got)
	}
}

// TestStandardizeTimestampFormats tests multi-layout timestamp parsing
func TestStandardizeTimestampFormats(t *testing.T) {
	in := table(
		[]string{"pid", "version", "timestamp"},
		[]string{"p001", "left", "2024-03-01 10:30:00"},
		[]string{"p001", "left", "2024-03-01"},
		[]string{"p001", "left", "03/15/2024 09:45"},
		[]string{"p001", "left", "garbage"},
	)

	out := Standardize(in)

	want := []string{
		"2024-03-01T10:30:00Z",
		"2024-03-01T00:00:00Z",
		"2024-03-15T09:45:00Z",
		"",
	}
	for i, row := range out.Rows {
		if row[ColTimestamp] != want[i] {
			t.Errorf("Row %d timestamp = %q, want %q", i, row[ColTimestamp], want[i])
		}
	}
}

// TestStandardizeBackFill tests canonical-wins precedence between a legacy
// alias column and the canonical column it maps to
func TestStandardizeBackFill(t *testing.T) {
	t.Run("canonical data wins over legacy", func(t *testing.T) {
		in := table(
			[]string{"trust", "trust_rating", "pid", "version"},
			[]string{"1", "6", "p001", "left"},
		)
		out := Standardize(in)
		if got := out.Rows[0][ColTrustRating]; got != "6" {
			t.Errorf("trust_rating = %q, want canonical value 6", got)
		}
	})

	t.Run("legacy back-fills empty canonical column", func(t *testing.T) {
		in := table(
			[]string{"trust", "trust_rating", "pid", "version"},
			[]string{"3", "", "p001", "left"},
		)
		out := Standardize(in)
		if got := out.Rows[0][ColTrustRating]; got != "3" {
			t.Errorf("trust_rating = %q, want back-filled value 3", got)
		}
	})
}

// TestStandardizeIdempotent tests that a second pass is a no-op
func TestStandardizeIdempotent(t *testing.T) {
	in := table(
		[]string{"Participant_ID", "FaceNumber", "FaceVersion", "Trust", "RT", "Timestamp"},
		[]string{"p001", "12", "Left Half", "4.50", "650", "2024-03-01 10:30:00"},
		[]string{"p001", "13", "full", "6", "820", "2024-03-02"},
	)

	once := Standardize(in)
	twice := Standardize(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Standardize is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

// TestToRecords tests typed conversion of a standardized table
func TestToRecords(t *testing.T) {
	in := table(
		[]string{"pid", "face_id", "version", "trust_rating", "reaction_time_ms", "timestamp"},
		[]string{"p001", "7", "right half", "5", "480", "2024-03-01T10:30:00Z"},
		[]string{"p002", "face_8", "full", "", "", ""},
	)

	records := ToRecords(Standardize(in))

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	r := records[0]
	if r.PID.String() != "p001" || r.FaceID.String() != "face_7" {
		t.Errorf("Unexpected identifiers: pid=%s face=%s", r.PID, r.FaceID)
	}
	if r.View != survey.ViewRight {
		t.Errorf("View = %q, want right", r.View)
	}
	if r.TrustRating == nil || *r.TrustRating != 5 {
		t.Errorf("TrustRating = %v, want 5", r.TrustRating)
	}
	if r.ReactionTimeMS == nil || *r.ReactionTimeMS != 480 {
		t.Errorf("ReactionTimeMS = %v, want 480", r.ReactionTimeMS)
	}
	if r.Timestamp == nil {
		t.Error("Expected parsed timestamp")
	}
	if r.SourceFile != "fixture.csv" {
		t.Errorf("SourceFile = %q", r.SourceFile)
	}

	r2 := records[1]
	if r2.TrustRating != nil || r2.ReactionTimeMS != nil || r2.Timestamp != nil {
		t.Error("Expected missing optional fields to stay nil")
	}
}
