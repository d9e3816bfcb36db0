package inference

import (
	"math"
	"testing"

	"facetrust/domain/core"
	"facetrust/domain/survey"
)

func rating(pid string, face string, view survey.View, value float64) survey.CleanedRecord {
	return survey.CleanedRecord{
		RawResponseRecord: survey.RawResponseRecord{
			PID:         core.ParticipantID(pid),
			FaceID:      core.FaceID(face),
			View:        view,
			TrustRating: &value,
		},
		IncludeInPrimary: true,
	}
}

func approxEqual(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (tol %v)", name, got, want, tol)
	}
}

// TestPairedComparison tests the half- vs full-face t-test on a known fixture
func TestPairedComparison(t *testing.T) {
	// Per-participant (half, full) scores: (4,5), (5,5), (6,7).
	records := []survey.CleanedRecord{
		rating("a", "face_1", survey.ViewLeft, 4),
		rating("a", "face_1", survey.ViewRight, 4),
		rating("a", "face_1", survey.ViewFull, 5),
		rating("b", "face_1", survey.ViewLeft, 5),
		rating("b", "face_1", survey.ViewRight, 5),
		rating("b", "face_1", survey.ViewFull, 5),
		rating("c", "face_1", survey.ViewLeft, 6),
		rating("c", "face_1", survey.ViewRight, 6),
		rating("c", "face_1", survey.ViewFull, 7),
	}

	res := NewEngine(records).PairedComparison()

	if res.Error != "" {
		t.Fatalf("Unexpected error: %s", res.Error)
	}
	if res.N != 3 {
		t.Errorf("N = %d, want 3", res.N)
	}
	approxEqual(t, "DF", res.DF, 2, 1e-12)
	// Differences are -1, 0, -1: mean -2/3, sd 1/sqrt(3).
	approxEqual(t, "MeanDifference", res.MeanDifference, -2.0/3.0, 1e-9)
	approxEqual(t, "T", res.T, -2.0, 1e-9)
	approxEqual(t, "CohenD", res.CohenD, -2.0/math.Sqrt(3), 1e-9)
	approxEqual(t, "HalfMean", res.HalfMean, 5, 1e-9)
	approxEqual(t, "FullMean", res.FullMean, 17.0/3.0, 1e-9)
	if res.MeanDifference >= 0 || res.CohenD >= 0 {
		t.Error("Half-face trust below full-face must yield negative difference and effect")
	}
	approxEqual(t, "P", res.P, 0.1835, 1e-3)
	if !(res.CILow < res.MeanDifference && res.MeanDifference < res.CIHigh) {
		t.Errorf("CI [%v, %v] must bracket the mean difference", res.CILow, res.CIHigh)
	}
}

// TestPairedComparisonSingleHalf tests that one available half still yields a score
func TestPairedComparisonSingleHalf(t *testing.T) {
	records := []survey.CleanedRecord{
		rating("a", "face_1", survey.ViewLeft, 4), // no right-half ratings
		rating("a", "face_1", survey.ViewFull, 5),
		rating("b", "face_1", survey.ViewRight, 6),
		rating("b", "face_1", survey.ViewFull, 5),
	}

	res := NewEngine(records).PairedComparison()

	if res.Error != "" {
		t.Fatalf("Unexpected error: %s", res.Error)
	}
	if res.N != 2 {
		t.Errorf("N = %d, want both single-half participants", res.N)
	}
	approxEqual(t, "HalfMean", res.HalfMean, 5, 1e-9)
}

// TestPairedComparisonInsufficient tests degenerate inputs
func TestPairedComparisonInsufficient(t *testing.T) {
	t.Run("no pairs", func(t *testing.T) {
		records := []survey.CleanedRecord{
			rating("a", "face_1", survey.ViewLeft, 4), // never saw a full face
		}
		res := NewEngine(records).PairedComparison()
		if res.Error == "" {
			t.Fatal("Expected an error string")
		}
		if !math.IsNaN(res.T) || !math.IsNaN(res.P) {
			t.Error("Numeric fields must be NaN on error")
		}
	})

	t.Run("zero variance of differences", func(t *testing.T) {
		records := []survey.CleanedRecord{
			rating("a", "face_1", survey.ViewLeft, 4),
			rating("a", "face_1", survey.ViewFull, 5),
			rating("b", "face_1", survey.ViewLeft, 5),
			rating("b", "face_1", survey.ViewFull, 6),
		}
		res := NewEngine(records).PairedComparison()
		if res.Error == "" {
			t.Fatal("Expected an error string")
		}
		approxEqual(t, "MeanDifference", res.MeanDifference, -1, 1e-9)
		if !math.IsNaN(res.T) {
			t.Error("T must be NaN when differences have no variance")
		}
	})

	t.Run("empty records", func(t *testing.T) {
		res := NewEngine(nil).PairedComparison()
		if res.Error == "" || res.N != 0 {
			t.Errorf("Expected error with N=0, got %+v", res)
		}
	})
}
