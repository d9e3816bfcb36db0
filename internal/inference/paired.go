package inference

import (
	"math"

	"github.com/montanaflynn/stats"

	"facetrust/domain/survey"
)

// PairedComparisonResult reports the half- vs full-face paired t-test.
// When Error is non-empty the numeric fields are NaN.
type PairedComparisonResult struct {
	N              int     `json:"n"`
	DF             float64 `json:"df"`
	T              float64 `json:"t"`
	P              float64 `json:"p"`
	CohenD         float64 `json:"cohen_d"`
	MeanDifference float64 `json:"mean_difference"`
	CILow          float64 `json:"ci_low"`
	CIHigh         float64 `json:"ci_high"`
	HalfMean       float64 `json:"half_mean"`
	FullMean       float64 `json:"full_mean"`
	Error          string  `json:"error,omitempty"`
}

func pairedInsufficient(n int, msg string) PairedComparisonResult {
	nan := math.NaN()
	return PairedComparisonResult{
		N: n, DF: nan, T: nan, P: nan, CohenD: nan,
		MeanDifference: nan, CILow: nan, CIHigh: nan,
		HalfMean: nan, FullMean: nan,
		Error: msg,
	}
}

// PairedComparison compares half-face and full-face trust. Per
// participant, the half-face score is the mean of the left and right
// condition means; the comparison runs over the participant intersection
// holding both a half and a full score.
func (e *Engine) PairedComparison() PairedComparisonResult {
	means := e.conditionMeans()

	var halves, fulls []float64
	for _, pid := range sortedParticipants(means) {
		byView := means[pid]
		full, hasFull := byView[survey.ViewFull]
		if !hasFull {
			continue
		}
		half, hasHalf := halfFaceScore(byView)
		if !hasHalf {
			continue
		}
		halves = append(halves, half)
		fulls = append(fulls, full)
	}

	n := len(halves)
	if n < 2 {
		return pairedInsufficient(n, "fewer than 2 participants with both half- and full-face scores")
	}

	diffs := make([]float64, n)
	for i := range halves {
		diffs[i] = halves[i] - fulls[i]
	}

	meanDiff, _ := stats.Mean(diffs)
	sdDiff, _ := stats.StandardDeviationSample(diffs)
	halfMean, _ := stats.Mean(halves)
	fullMean, _ := stats.Mean(fulls)

	if sdDiff == 0 {
		res := pairedInsufficient(n, "zero variance of paired differences")
		res.MeanDifference = meanDiff
		res.HalfMean = halfMean
		res.FullMean = fullMean
		res.DF = float64(n - 1)
		return res
	}

	df := float64(n - 1)
	se := sdDiff / math.Sqrt(float64(n))
	t := meanDiff / se
	tCrit := tCritical(0.975, df)

	return PairedComparisonResult{
		N:              n,
		DF:             df,
		T:              t,
		P:              tTwoTailedP(t, df),
		CohenD:         meanDiff / sdDiff,
		MeanDifference: meanDiff,
		CILow:          meanDiff - tCrit*se,
		CIHigh:         meanDiff + tCrit*se,
		HalfMean:       halfMean,
		FullMean:       fullMean,
	}
}

// halfFaceScore averages whichever half-face condition means exist. A
// participant with only one half still gets a score from that half.
func halfFaceScore(byView map[survey.View]float64) (float64, bool) {
	left, hasLeft := byView[survey.ViewLeft]
	right, hasRight := byView[survey.ViewRight]
	switch {
	case hasLeft && hasRight:
		return (left + right) / 2, true
	case hasLeft:
		return left, true
	case hasRight:
		return right, true
	}
	return 0, false
}
