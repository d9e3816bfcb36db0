package inference

import (
	"fmt"
	"math"
	"testing"

	"facetrust/domain/survey"
)

// constantRaterRecords gives every participant one fixed rating for all faces,
// so both halves of any split produce identical participant scores.
func constantRaterRecords(faces int, ratings []float64) []survey.CleanedRecord {
	var records []survey.CleanedRecord
	for p, value := range ratings {
		pid := fmt.Sprintf("p%d", p+1)
		for f := 1; f <= faces; f++ {
			records = append(records, rating(pid, fmt.Sprintf("face_%02d", f), survey.ViewFull, value))
		}
	}
	return records
}

// TestSplitHalfReliabilityIdenticalHalves tests that equal half scores yield r=1
func TestSplitHalfReliabilityIdenticalHalves(t *testing.T) {
	records := constantRaterRecords(4, []float64{3, 4, 5})

	res := NewEngine(records).SplitHalfReliability()

	if res.Error != "" {
		t.Fatalf("Unexpected error: %s", res.Error)
	}
	approxEqual(t, "PearsonR", res.PearsonR, 1, 1e-9)
	approxEqual(t, "SpearmanBrown", res.SpearmanBrown, 1, 1e-9)
	if res.Participants != 3 {
		t.Errorf("Participants = %d, want 3", res.Participants)
	}
	if res.StimuliHalfA != 2 || res.StimuliHalfB != 2 {
		t.Errorf("Halves = %d/%d, want 2/2", res.StimuliHalfA, res.StimuliHalfB)
	}
}

// TestSplitHalfReliabilityDeterministic tests that the seeded split is stable
func TestSplitHalfReliabilityDeterministic(t *testing.T) {
	engine := NewEngine(constantRaterRecords(10, []float64{1, 3, 5, 7}))

	a1, b1 := engine.HalfAssignment()
	a2, b2 := engine.HalfAssignment()

	if len(a1) != 5 || len(b1) != 5 {
		t.Fatalf("Halves = %d/%d, want 5/5", len(a1), len(b1))
	}
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatalf("Half A differs between runs: %v vs %v", a1, a2)
		}
	}
	for i := range b1 {
		if b1[i] != b2[i] {
			t.Fatalf("Half B differs between runs: %v vs %v", b1, b2)
		}
	}

	first := engine.SplitHalfReliability()
	second := engine.SplitHalfReliability()
	if first != second {
		t.Errorf("Reliability differs between runs: %+v vs %+v", first, second)
	}
}

// TestSplitHalfReliabilityCoverageFloor tests the half-coverage participation rule
func TestSplitHalfReliabilityCoverageFloor(t *testing.T) {
	// Two participants rate everything; a third rated only 2 of 10 faces and
	// must not enter the correlation sample.
	records := constantRaterRecords(10, []float64{2, 6})
	records = append(records,
		rating("p3", "face_01", survey.ViewFull, 4),
		rating("p3", "face_02", survey.ViewFull, 4),
	)

	res := NewEngine(records).SplitHalfReliability()

	if res.Error != "" {
		t.Fatalf("Unexpected error: %s", res.Error)
	}
	if res.Participants != 2 {
		t.Errorf("Participants = %d, want the sparse rater dropped", res.Participants)
	}
}

// TestSplitHalfReliabilityInsufficient tests degenerate inputs
func TestSplitHalfReliabilityInsufficient(t *testing.T) {
	t.Run("single stimulus", func(t *testing.T) {
		res := NewEngine(constantRaterRecords(1, []float64{3, 4})).SplitHalfReliability()
		if res.Error == "" {
			t.Fatal("Expected an error string")
		}
		if !math.IsNaN(res.PearsonR) {
			t.Error("PearsonR must be NaN on error")
		}
	})

	t.Run("single participant", func(t *testing.T) {
		res := NewEngine(constantRaterRecords(6, []float64{3})).SplitHalfReliability()
		if res.Error == "" {
			t.Fatal("Expected an error string")
		}
	})

	t.Run("no between-participant variance", func(t *testing.T) {
		res := NewEngine(constantRaterRecords(6, []float64{4, 4, 4})).SplitHalfReliability()
		if res.Error != "" {
			t.Fatalf("Unexpected error: %s", res.Error)
		}
		approxEqual(t, "PearsonR", res.PearsonR, 1, 1e-9)
	})
}
