package longform

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"facetrust/domain/core"
	"facetrust/domain/survey"
	"facetrust/internal/inference"
)

// Approximator fits simplified regression-based approximations over
// long-format data. It substitutes ordinary (non-hierarchical) linear and
// logistic regression on one-hot face-view indicators for a true
// mixed-effects model with participant and stimulus random intercepts.
// The two are NOT statistically equivalent: standard errors here ignore
// the repeated-measures structure entirely. Treat the output as a rough
// screen, not as confirmatory inference.
type Approximator struct {
	responses []survey.LongResponse
}

// NewApproximator creates an approximator over normalized long-format
// responses.
func NewApproximator(responses []survey.LongResponse) *Approximator {
	return &Approximator{responses: responses}
}

// ViewEffect summarizes one viewing condition against the full-face
// baseline.
type ViewEffect struct {
	View      survey.View `json:"view"`
	N         int         `json:"n"`
	Mean      float64     `json:"mean"`
	SD        float64     `json:"sd"`
	CohenD    float64     `json:"cohen_d"`    // vs full-face baseline
	OddsRatio float64     `json:"odds_ratio"` // high response vs full-face baseline
}

// ViewEffectsResult bundles the per-view summaries.
type ViewEffectsResult struct {
	QuestionType string       `json:"question_type"`
	Baseline     survey.View  `json:"baseline"`
	Effects      []ViewEffect `json:"effects,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// highResponseThreshold splits a 1-7 rating scale into low/high for the
// odds-ratio summaries.
const highResponseThreshold = 4.0

// ViewEffects computes per-view Cohen's d and odds-ratio summaries for
// one numeric question type, with full-face as the baseline condition.
func (a *Approximator) ViewEffects(questionType string) ViewEffectsResult {
	byView := a.numericByView(questionType)
	baseline := byView[survey.ViewFull]
	if len(baseline) < 2 {
		return ViewEffectsResult{
			QuestionType: questionType,
			Baseline:     survey.ViewFull,
			Error:        "fewer than 2 full-face responses to anchor the baseline",
		}
	}

	baseMean, _ := stats.Mean(baseline)
	baseSD, _ := stats.StandardDeviationSample(baseline)
	baseOdds := odds(baseline)

	result := ViewEffectsResult{QuestionType: questionType, Baseline: survey.ViewFull}
	for _, view := range []survey.View{survey.ViewLeft, survey.ViewRight, survey.ViewFull} {
		vals := byView[view]
		if len(vals) < 2 {
			continue
		}
		m, _ := stats.Mean(vals)
		sd, _ := stats.StandardDeviationSample(vals)

		effect := ViewEffect{View: view, N: len(vals), Mean: m, SD: sd}
		if view == survey.ViewFull {
			effect.CohenD = 0
			effect.OddsRatio = 1
		} else {
			effect.CohenD = cohenD(m, baseMean, sd, baseSD, len(vals), len(baseline))
			effect.OddsRatio = odds(vals) / baseOdds
		}
		result.Effects = append(result.Effects, effect)
	}
	return result
}

// RegressionResult reports one fitted approximation. Coefficients are
// keyed intercept/left/right; full-face is the omitted reference level.
type RegressionResult struct {
	Model        string             `json:"model"` // "linear" or "logistic"
	QuestionType string             `json:"question_type"`
	N            int                `json:"n"`
	Coefficients map[string]float64 `json:"coefficients,omitempty"`
	OddsRatios   map[string]float64 `json:"odds_ratios,omitempty"` // logistic only
	RSquared     float64            `json:"r_squared,omitempty"`   // linear only
	Converged    bool               `json:"converged"`
	Error        string             `json:"error,omitempty"`
}

// LinearApproximation fits ordinary least squares of the numeric response
// on one-hot left/right indicators.
func (a *Approximator) LinearApproximation(questionType string) RegressionResult {
	X, y := a.designMatrix(questionType)
	res := RegressionResult{Model: "linear", QuestionType: questionType, N: len(y)}
	if len(y) < 4 {
		res.Error = "fewer than 4 numeric responses"
		return res
	}

	var qr mat.QR
	qr.Factorize(X)
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, yVec(y)); err != nil {
		res.Error = "singular design matrix"
		return res
	}

	b0 := beta.At(0, 0)
	bLeft := beta.At(1, 0)
	bRight := beta.At(2, 0)
	res.Coefficients = map[string]float64{
		"intercept": b0,
		"left":      bLeft,
		"right":     bRight,
	}

	// R^2 from the fitted values.
	meanY, _ := stats.Mean(y)
	var ssRes, ssTot float64
	rows, _ := X.Dims()
	for i := 0; i < rows; i++ {
		fitted := b0 + bLeft*X.At(i, 1) + bRight*X.At(i, 2)
		d := y[i] - fitted
		ssRes += d * d
		t := y[i] - meanY
		ssTot += t * t
	}
	if ssTot > 0 {
		res.RSquared = 1 - ssRes/ssTot
	}
	res.Converged = true
	return res
}

// LogisticApproximation fits a logistic regression of high/low response
// on the one-hot indicators via iteratively reweighted least squares.
func (a *Approximator) LogisticApproximation(questionType string) RegressionResult {
	X, y := a.designMatrix(questionType)
	res := RegressionResult{Model: "logistic", QuestionType: questionType, N: len(y)}
	if len(y) < 8 {
		res.Error = "fewer than 8 numeric responses"
		return res
	}

	rows, cols := X.Dims()
	binary := make([]float64, rows)
	ones, zeros := 0, 0
	for i, v := range y {
		if v >= highResponseThreshold {
			binary[i] = 1
			ones++
		} else {
			zeros++
		}
	}
	if ones == 0 || zeros == 0 {
		res.Error = "outcome is constant; odds are undefined"
		return res
	}

	beta := make([]float64, cols)
	const maxIter = 25
	const tol = 1e-8
	for iter := 0; iter < maxIter; iter++ {
		// Build X^T W X and X^T (y - p) for the current weights.
		xtwx := mat.NewDense(cols, cols, nil)
		xtr := mat.NewVecDense(cols, nil)
		for i := 0; i < rows; i++ {
			var eta float64
			for j := 0; j < cols; j++ {
				eta += X.At(i, j) * beta[j]
			}
			p := 1 / (1 + math.Exp(-eta))
			w := p * (1 - p)
			r := binary[i] - p
			for j := 0; j < cols; j++ {
				xtr.SetVec(j, xtr.AtVec(j)+X.At(i, j)*r)
				for l := 0; l < cols; l++ {
					xtwx.Set(j, l, xtwx.At(j, l)+w*X.At(i, j)*X.At(i, l))
				}
			}
		}

		var step mat.VecDense
		if err := step.SolveVec(xtwx, xtr); err != nil {
			res.Error = "weighted design matrix is singular"
			return res
		}

		maxDelta := 0.0
		for j := 0; j < cols; j++ {
			beta[j] += step.AtVec(j)
			if d := math.Abs(step.AtVec(j)); d > maxDelta {
				maxDelta = d
			}
		}
		if maxDelta < tol {
			res.Converged = true
			break
		}
	}

	res.Coefficients = map[string]float64{
		"intercept": beta[0],
		"left":      beta[1],
		"right":     beta[2],
	}
	res.OddsRatios = map[string]float64{
		"left":  math.Exp(beta[1]),
		"right": math.Exp(beta[2]),
	}
	return res
}

// IntraclassCorrelation runs ICC(2,1)/(2,k) over the long-format data's
// image x participant matrix for one question type.
func (a *Approximator) IntraclassCorrelation(questionType string) inference.ICCResult {
	type cellKey struct {
		image core.FaceID
		pid   core.ParticipantID
	}
	sums := make(map[cellKey]float64)
	counts := make(map[cellKey]int)
	imageSet := make(map[core.FaceID]bool)
	raterSet := make(map[core.ParticipantID]bool)

	for _, r := range a.responses {
		if r.QuestionType != questionType || r.ResponseNumeric == nil {
			continue
		}
		key := cellKey{image: r.ImageID, pid: r.ParticipantID}
		sums[key] += *r.ResponseNumeric
		counts[key]++
		imageSet[r.ImageID] = true
		raterSet[r.ParticipantID] = true
	}

	images := make([]core.FaceID, 0, len(imageSet))
	for img := range imageSet {
		images = append(images, img)
	}
	raters := make([]core.ParticipantID, 0, len(raterSet))
	for pid := range raterSet {
		raters = append(raters, pid)
	}
	sort.Slice(images, func(i, j int) bool { return images[i] < images[j] })
	sort.Slice(raters, func(i, j int) bool { return raters[i] < raters[j] })

	matrix := make([][]float64, len(images))
	for i, img := range images {
		row := make([]float64, len(raters))
		for j, pid := range raters {
			key := cellKey{image: img, pid: pid}
			if counts[key] == 0 {
				row[j] = math.NaN()
				continue
			}
			row[j] = sums[key] / float64(counts[key])
		}
		matrix[i] = row
	}

	return inference.IntraclassCorrelation(matrix)
}

// numericByView groups numeric responses of one question type by view.
func (a *Approximator) numericByView(questionType string) map[survey.View][]float64 {
	byView := make(map[survey.View][]float64)
	for _, r := range a.responses {
		if r.QuestionType != questionType || r.ResponseNumeric == nil {
			continue
		}
		byView[r.FaceView] = append(byView[r.FaceView], *r.ResponseNumeric)
	}
	return byView
}

// designMatrix builds the one-hot design (intercept, left, right) and
// response vector for one question type. Full-face is the reference.
func (a *Approximator) designMatrix(questionType string) (*mat.Dense, []float64) {
	var rows [][3]float64
	var y []float64
	for _, r := range a.responses {
		if r.QuestionType != questionType || r.ResponseNumeric == nil || !r.FaceView.IsAnalyzable() {
			continue
		}
		row := [3]float64{1, 0, 0}
		switch r.FaceView {
		case survey.ViewLeft:
			row[1] = 1
		case survey.ViewRight:
			row[2] = 1
		}
		rows = append(rows, row)
		y = append(y, *r.ResponseNumeric)
	}

	X := mat.NewDense(max(len(rows), 1), 3, nil)
	for i, row := range rows {
		X.SetRow(i, row[:])
	}
	return X, y
}

func yVec(y []float64) *mat.VecDense {
	return mat.NewVecDense(len(y), append([]float64(nil), y...))
}

// cohenD computes the pooled-SD standardized mean difference.
func cohenD(m1, m2, sd1, sd2 float64, n1, n2 int) float64 {
	pooled := math.Sqrt(((float64(n1)-1)*sd1*sd1 + (float64(n2)-1)*sd2*sd2) / float64(n1+n2-2))
	if pooled == 0 {
		return 0
	}
	return (m1 - m2) / pooled
}

// odds returns the high/low response odds with a Haldane-Anscombe
// correction so empty cells stay finite.
func odds(vals []float64) float64 {
	high := 0.0
	for _, v := range vals {
		if v >= highResponseThreshold {
			high++
		}
	}
	low := float64(len(vals)) - high
	return (high + 0.5) / (low + 0.5)
}
