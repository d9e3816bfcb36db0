package inference

import (
	"math"
	"sort"

	"facetrust/domain/core"
)

// ICCResult reports the two-way random-effects intraclass correlation.
// ICC21 is agreement for a single rating, ICC2K for the mean of all
// raters. Both are clamped to [0, 1].
type ICCResult struct {
	ICC21    float64 `json:"icc_2_1"`
	ICC2K    float64 `json:"icc_2_k"`
	MSB      float64 `json:"ms_between"`
	MSE      float64 `json:"ms_error"`
	Subjects int     `json:"subjects"`
	Raters   int     `json:"raters"`
	Error    string  `json:"error,omitempty"`
}

func iccInsufficient(subjects, raters int, msg string) ICCResult {
	nan := math.NaN()
	return ICCResult{
		ICC21: nan, ICC2K: nan, MSB: nan, MSE: nan,
		Subjects: subjects, Raters: raters,
		Error: msg,
	}
}

// IntraclassCorrelation computes ICC(2,1) and ICC(2,k) from a subjects x
// raters matrix. Missing cells are NaN. At least 2 subjects with at
// least 2 ratings each are required.
func IntraclassCorrelation(matrix [][]float64) ICCResult {
	n := len(matrix)
	k := 0
	if n > 0 {
		k = len(matrix[0])
	}

	ratedSubjects := 0
	for _, row := range matrix {
		if observedCount(row) >= 2 {
			ratedSubjects++
		}
	}
	if ratedSubjects < 2 || k < 2 {
		return iccInsufficient(n, k, "need at least 2 stimuli with at least 2 ratings each")
	}

	// Grand mean and row means over observed cells only.
	var grandSum float64
	var grandCount int
	rowMeans := make([]float64, n)
	rowCounts := make([]int, n)
	for i, row := range matrix {
		var sum float64
		var count int
		for _, x := range row {
			if !math.IsNaN(x) {
				sum += x
				count++
			}
		}
		rowCounts[i] = count
		if count > 0 {
			rowMeans[i] = sum / float64(count)
		}
		grandSum += sum
		grandCount += count
	}
	if grandCount == 0 {
		return iccInsufficient(n, k, "matrix holds no ratings")
	}
	grand := grandSum / float64(grandCount)

	colMeans := make([]float64, k)
	colCounts := make([]int, k)
	for j := 0; j < k; j++ {
		for i := 0; i < n; i++ {
			if x := matrix[i][j]; !math.IsNaN(x) {
				colMeans[j] += x
				colCounts[j]++
			}
		}
		if colCounts[j] > 0 {
			colMeans[j] /= float64(colCounts[j])
		}
	}

	// Between-subjects mean square, rows weighted by their rater count.
	var ssBetween float64
	for i := range matrix {
		if rowCounts[i] == 0 {
			continue
		}
		d := rowMeans[i] - grand
		ssBetween += float64(rowCounts[i]) * d * d
	}
	msb := ssBetween / float64(n-1)

	// Residual mean square from the two-way decomposition.
	var ssError float64
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			x := matrix[i][j]
			if math.IsNaN(x) {
				continue
			}
			r := x - rowMeans[i] - colMeans[j] + grand
			ssError += r * r
		}
	}
	mse := ssError / float64((n-1)*(k-1))

	icc21 := clamp01((msb - mse) / (msb + float64(k-1)*mse))
	icc2k := clamp01((msb - mse) / msb)

	return ICCResult{
		ICC21:    icc21,
		ICC2K:    icc2k,
		MSB:      msb,
		MSE:      mse,
		Subjects: n,
		Raters:   k,
	}
}

// RatingMatrix builds the stimuli x participants trust matrix from the
// engine's records: each cell is one participant's mean trust rating of
// one face, NaN where the participant never rated that face.
func (e *Engine) RatingMatrix() (matrix [][]float64, faces []core.FaceID, raters []core.ParticipantID) {
	type cellKey struct {
		face core.FaceID
		pid  core.ParticipantID
	}
	sums := make(map[cellKey]float64)
	counts := make(map[cellKey]int)
	faceSet := make(map[core.FaceID]bool)
	raterSet := make(map[core.ParticipantID]bool)

	for _, rec := range e.records {
		if rec.TrustRating == nil {
			continue
		}
		key := cellKey{face: rec.FaceID, pid: rec.PID}
		sums[key] += *rec.TrustRating
		counts[key]++
		faceSet[rec.FaceID] = true
		raterSet[rec.PID] = true
	}

	for face := range faceSet {
		faces = append(faces, face)
	}
	for pid := range raterSet {
		raters = append(raters, pid)
	}
	sort.Slice(faces, func(i, j int) bool { return faces[i] < faces[j] })
	sort.Slice(raters, func(i, j int) bool { return raters[i] < raters[j] })

	matrix = make([][]float64, len(faces))
	for i, face := range faces {
		row := make([]float64, len(raters))
		for j, pid := range raters {
			key := cellKey{face: face, pid: pid}
			if counts[key] == 0 {
				row[j] = math.NaN()
				continue
			}
			row[j] = sums[key] / float64(counts[key])
		}
		matrix[i] = row
	}
	return matrix, faces, raters
}

// StimulusReliability runs the intraclass correlation over the dataset's
// own rating matrix.
func (e *Engine) StimulusReliability() ICCResult {
	matrix, _, _ := e.RatingMatrix()
	return IntraclassCorrelation(matrix)
}

// clamp01 bounds a reliability coefficient to [0, 1]. An undefined ratio
// (zero between-subjects variance over zero residual) clamps to 0.
func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func observedCount(row []float64) int {
	count := 0
	for _, x := range row {
		if !math.IsNaN(x) {
			count++
		}
	}
	return count
}
