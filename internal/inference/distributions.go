package inference

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// tTwoTailedP computes the two-tailed p-value of a t statistic via the
// Student's t survival function.
func tTwoTailedP(t, df float64) float64 {
	if df <= 0 || math.IsNaN(t) {
		return math.NaN()
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}

// tCritical returns the t quantile at probability p for df degrees of
// freedom, used for confidence intervals (p = 0.975 for a 95% CI).
func tCritical(p, df float64) float64 {
	if df <= 0 {
		return math.NaN()
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return dist.Quantile(p)
}

// fSurvivalP computes the upper-tail p-value of an F statistic.
func fSurvivalP(f, df1, df2 float64) float64 {
	if df1 <= 0 || df2 <= 0 || math.IsNaN(f) {
		return math.NaN()
	}
	dist := distuv.F{D1: df1, D2: df2}
	return 1 - dist.CDF(f)
}
