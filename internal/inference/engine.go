// Package inference computes the study's reliability and inference
// statistics over a cleaned record set: the half- vs full-face paired
// comparison, the three-condition repeated-measures ANOVA, two-way random
// intraclass correlation, and seeded split-half reliability.
//
// Every function here is total: degenerate input produces a well-formed
// result with NaN numeric fields and a descriptive Error string, never a
// panic or a Go error.
package inference

import (
	"sort"

	"github.com/montanaflynn/stats"

	"facetrust/domain/core"
	"facetrust/domain/survey"
)

// Engine computes statistics over one cleaned dataset. It holds no state
// beyond the records it was built with; results are recomputed per call
// and discarded after use.
type Engine struct {
	records []survey.CleanedRecord
}

// NewEngine creates an inference engine over a cleaned dataset. Callers
// decide what the dataset contains; the engine does not re-apply
// exclusion policy.
func NewEngine(records []survey.CleanedRecord) *Engine {
	return &Engine{records: records}
}

// conditionMeans returns, per participant, the mean trust rating under
// each viewing condition the participant actually has ratings for.
func (e *Engine) conditionMeans() map[core.ParticipantID]map[survey.View]float64 {
	samples := make(map[core.ParticipantID]map[survey.View][]float64)
	for _, rec := range e.records {
		if rec.TrustRating == nil || !rec.View.IsAnalyzable() {
			continue
		}
		if samples[rec.PID] == nil {
			samples[rec.PID] = make(map[survey.View][]float64)
		}
		samples[rec.PID][rec.View] = append(samples[rec.PID][rec.View], *rec.TrustRating)
	}

	means := make(map[core.ParticipantID]map[survey.View]float64, len(samples))
	for pid, byView := range samples {
		means[pid] = make(map[survey.View]float64, len(byView))
		for view, vals := range byView {
			m, err := stats.Mean(vals)
			if err != nil {
				continue
			}
			means[pid][view] = m
		}
	}
	return means
}

// sortedParticipants returns the participant ids of a condition-mean map
// in stable order, so every statistic is reproducible across runs.
func sortedParticipants(means map[core.ParticipantID]map[survey.View]float64) []core.ParticipantID {
	pids := make([]core.ParticipantID, 0, len(means))
	for pid := range means {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}
