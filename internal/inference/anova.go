package inference

import (
	"math"

	"facetrust/domain/survey"
)

// RMANOVAResult reports the three-condition repeated-measures ANOVA.
// When Error is non-empty the numeric fields are NaN.
type RMANOVAResult struct {
	N              int                `json:"n"`
	K              int                `json:"k"`
	F              float64            `json:"f"`
	P              float64            `json:"p"`
	DFNum          float64            `json:"df_num"`
	DFDen          float64            `json:"df_den"`
	PartialEtaSq   float64            `json:"partial_eta_sq"`
	GrandMean      float64            `json:"grand_mean"`
	ConditionMeans map[string]float64 `json:"condition_means,omitempty"`
	SSConditions   float64            `json:"ss_conditions"`
	SSSubjects     float64            `json:"ss_subjects"`
	SSError        float64            `json:"ss_error"`
	SSTotal        float64            `json:"ss_total"`
	Error          string             `json:"error,omitempty"`
}

// anovaConditions fixes the factor levels and their column order.
var anovaConditions = []survey.View{survey.ViewLeft, survey.ViewRight, survey.ViewFull}

func anovaInsufficient(n int, msg string) RMANOVAResult {
	nan := math.NaN()
	return RMANOVAResult{
		N: n, K: len(anovaConditions),
		F: nan, P: nan, DFNum: nan, DFDen: nan, PartialEtaSq: nan,
		GrandMean: nan, SSConditions: nan, SSSubjects: nan, SSError: nan, SSTotal: nan,
		Error: msg,
	}
}

// RepeatedMeasuresANOVA tests trust differences across the left, right,
// and full viewing conditions within participants. The matrix covers the
// intersection of participants present in all three conditions.
func (e *Engine) RepeatedMeasuresANOVA() RMANOVAResult {
	means := e.conditionMeans()

	var matrix [][]float64
	for _, pid := range sortedParticipants(means) {
		byView := means[pid]
		row := make([]float64, 0, len(anovaConditions))
		complete := true
		for _, view := range anovaConditions {
			m, ok := byView[view]
			if !ok {
				complete = false
				break
			}
			row = append(row, m)
		}
		if complete {
			matrix = append(matrix, row)
		}
	}

	n := len(matrix)
	k := len(anovaConditions)
	if n < 2 {
		return anovaInsufficient(n, "fewer than 2 participants with all three conditions")
	}

	grand := 0.0
	for _, row := range matrix {
		for _, x := range row {
			grand += x
		}
	}
	grand /= float64(n * k)

	condMeans := make([]float64, k)
	for j := 0; j < k; j++ {
		for i := 0; i < n; i++ {
			condMeans[j] += matrix[i][j]
		}
		condMeans[j] /= float64(n)
	}

	subjMeans := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			subjMeans[i] += matrix[i][j]
		}
		subjMeans[i] /= float64(k)
	}

	var ssConditions, ssSubjects, ssTotal float64
	for j := 0; j < k; j++ {
		d := condMeans[j] - grand
		ssConditions += d * d
	}
	ssConditions *= float64(n)

	for i := 0; i < n; i++ {
		d := subjMeans[i] - grand
		ssSubjects += d * d
	}
	ssSubjects *= float64(k)

	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			d := matrix[i][j] - grand
			ssTotal += d * d
		}
	}

	ssError := ssTotal - ssConditions - ssSubjects
	dfNum := float64(k - 1)
	dfDen := float64((k - 1) * (n - 1))

	if dfDen > 0 && ssError <= 0 && ssConditions <= 1e-12 {
		// No condition effect and no residual: ratings are identical
		// across conditions. The F ratio degenerates to no evidence of an
		// effect rather than to an error.
		return RMANOVAResult{
			N: n, K: k,
			F: 0, P: 1, DFNum: dfNum, DFDen: dfDen,
			PartialEtaSq:   0,
			GrandMean:      grand,
			ConditionMeans: namedConditionMeans(condMeans),
			SSConditions:   ssConditions,
			SSSubjects:     ssSubjects,
			SSError:        ssError,
			SSTotal:        ssTotal,
		}
	}

	if dfDen <= 0 || ssError <= 0 {
		res := anovaInsufficient(n, "degenerate error term (no residual variance)")
		res.GrandMean = grand
		res.SSConditions = ssConditions
		res.SSSubjects = ssSubjects
		res.SSError = ssError
		res.SSTotal = ssTotal
		res.DFNum = dfNum
		res.DFDen = dfDen
		res.ConditionMeans = namedConditionMeans(condMeans)
		return res
	}

	msConditions := ssConditions / dfNum
	msError := ssError / dfDen
	f := msConditions / msError

	return RMANOVAResult{
		N:              n,
		K:              k,
		F:              f,
		P:              fSurvivalP(f, dfNum, dfDen),
		DFNum:          dfNum,
		DFDen:          dfDen,
		PartialEtaSq:   ssConditions / (ssConditions + ssError),
		GrandMean:      grand,
		ConditionMeans: namedConditionMeans(condMeans),
		SSConditions:   ssConditions,
		SSSubjects:     ssSubjects,
		SSError:        ssError,
		SSTotal:        ssTotal,
	}
}

func namedConditionMeans(condMeans []float64) map[string]float64 {
	named := make(map[string]float64, len(anovaConditions))
	for j, view := range anovaConditions {
		named[view.String()] = condMeans[j]
	}
	return named
}
