package exclusion

import (
	"regexp"
	"sort"

	"github.com/montanaflynn/stats"

	"facetrust/domain/core"
	"facetrust/domain/survey"
)

// Exclusion policy thresholds. These are documented study policy, not
// tuning knobs, so they are fixed constants rather than configuration.
const (
	// ExpectedTrials is the full session length: 20 faces x 3 views.
	ExpectedTrials = 60

	// CompletionThreshold is the minimum completion rate for inclusion.
	CompletionThreshold = 0.8

	// ReducedCompletionThreshold applies to synthetic/test participants
	// with short sessions. Test sessions were often cut short on purpose,
	// so holding them to the production bar would exclude all of them.
	ReducedCompletionThreshold = 0.5

	// ReducedThresholdTrialCap is the trial count below which the reduced
	// threshold can apply.
	ReducedThresholdTrialCap = 48

	// FastRTFloorMS is the reaction-time floor; anything quicker than this
	// is a motor response, not a judgment.
	FastRTFloorMS = 200.0

	// SlowRTPercentile is the per-participant upper reaction-time cut.
	SlowRTPercentile = 99.5
)

// testIDPattern identifies synthetic and test participant ids.
var testIDPattern = regexp.MustCompile(`(?i)^(test|demo|synthetic|prolific_test)`)

// IsTestParticipant reports whether a participant id matches the known
// synthetic/test-id pattern.
func IsTestParticipant(pid core.ParticipantID) bool {
	return testIDPattern.MatchString(pid.String())
}

// CompletionThresholdFor returns the completion-rate threshold for a
// participant: the reduced threshold only applies to short test sessions.
func CompletionThresholdFor(pid core.ParticipantID, trialCount int) float64 {
	if trialCount < ReducedThresholdTrialCap && IsTestParticipant(pid) {
		return ReducedCompletionThreshold
	}
	return CompletionThreshold
}

// Engine applies the session- and trial-level exclusion policy.
type Engine struct{}

// NewEngine creates an exclusion engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Apply flags every record and derives its inclusion decision. The input
// is never mutated; the returned records are complete copies.
func (e *Engine) Apply(records []survey.RawResponseRecord) ([]survey.CleanedRecord, survey.ExclusionSummary) {
	summary := survey.ExclusionSummary{
		Sessions: survey.NewLevelSummary(),
		Trials:   survey.NewLevelSummary(),
	}

	cleaned := make([]survey.CleanedRecord, len(records))
	for i, rec := range records {
		cleaned[i] = survey.CleanedRecord{RawResponseRecord: rec}
	}

	byPID := groupByPID(records)
	summary.Sessions.Total = len(byPID)

	pids := make([]core.ParticipantID, 0, len(byPID))
	for pid := range byPID {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	for _, pid := range pids {
		idx := byPID[pid]
		e.sessionPass(pid, idx, cleaned, &summary)
		e.trialPass(idx, cleaned, &summary)
	}

	summary.Trials.Total = len(records)
	for i := range cleaned {
		cleaned[i].Flags.FailedAttention = e.attentionCheckFailed(cleaned[i].RawResponseRecord)
		cleaned[i].Flags.DeviceViolation = e.deviceViolation(cleaned[i].RawResponseRecord)
		cleaned[i].IncludeInPrimary = !cleaned[i].Flags.Any()
	}

	return cleaned, summary
}

// sessionPass applies completion-rate and secondary-id policy for one
// participant's rows.
func (e *Engine) sessionPass(pid core.ParticipantID, idx []int, cleaned []survey.CleanedRecord, summary *survey.ExclusionSummary) {
	trialCount := len(idx)
	completion := float64(trialCount) / float64(ExpectedTrials)

	if completion < CompletionThresholdFor(pid, trialCount) {
		for _, i := range idx {
			cleaned[i].Flags.LowCompletion = true
		}
		summary.Sessions.Excluded++
		summary.Sessions.Count(survey.ReasonLowCompletion)
	}

	// A participant reporting more than one secondary (platform) id is two
	// sessions merged under one pid. Keep the rows of the id with the most
	// trials; ties break toward the lexicographically smaller id so reruns
	// are deterministic.
	counts := make(map[string]int)
	for _, i := range idx {
		if sid := cleaned[i].SecondaryID; sid != "" {
			counts[sid]++
		}
	}
	if len(counts) > 1 {
		var modal string
		for sid, n := range counts {
			if modal == "" || n > counts[modal] || (n == counts[modal] && sid < modal) {
				modal = sid
			}
		}
		for _, i := range idx {
			if sid := cleaned[i].SecondaryID; sid != "" && sid != modal {
				cleaned[i].Flags.DuplicateSecondaryID = true
			}
		}
		summary.Sessions.Count(survey.ReasonDuplicateSecondaryID)
	}
}

// trialPass applies reaction-time policy for one participant's rows. It
// does nothing when the participant has no reaction-time data.
func (e *Engine) trialPass(idx []int, cleaned []survey.CleanedRecord, summary *survey.ExclusionSummary) {
	var rts []float64
	for _, i := range idx {
		if rt := cleaned[i].ReactionTimeMS; rt != nil {
			rts = append(rts, *rt)
		}
	}
	if len(rts) == 0 {
		return
	}

	slowCut, err := stats.Percentile(rts, SlowRTPercentile)
	if err != nil {
		slowCut = rts[0]
	}

	for _, i := range idx {
		rt := cleaned[i].ReactionTimeMS
		if rt == nil {
			continue
		}
		flagged := false
		if *rt < FastRTFloorMS {
			cleaned[i].Flags.FastRT = true
			summary.Trials.Count(survey.ReasonFastRT)
			flagged = true
		}
		if *rt > slowCut {
			// Both flags can apply to one trial; it is excluded once.
			cleaned[i].Flags.SlowRT = true
			summary.Trials.Count(survey.ReasonSlowRT)
			flagged = true
		}
		if flagged {
			summary.Trials.Excluded++
		}
	}
}

// attentionCheckFailed is a stub policy: the attention-check instrument
// was removed from the task mid-study, so the flag exists but never
// fires. Revisiting this is an open policy question; do not quietly
// enable it.
func (e *Engine) attentionCheckFailed(survey.RawResponseRecord) bool {
	return false
}

// deviceViolation is a stub policy, permanently false for the same reason
// as attentionCheckFailed.
func (e *Engine) deviceViolation(survey.RawResponseRecord) bool {
	return false
}

func groupByPID(records []survey.RawResponseRecord) map[core.ParticipantID][]int {
	byPID := make(map[core.ParticipantID][]int)
	for i, rec := range records {
		byPID[rec.PID] = append(byPID[rec.PID], i)
	}
	return byPID
}

// SessionAggregates computes the on-demand per-participant rollup.
func SessionAggregates(records []survey.CleanedRecord) []survey.SessionAggregate {
	byPID := make(map[core.ParticipantID][]survey.CleanedRecord)
	for _, rec := range records {
		byPID[rec.PID] = append(byPID[rec.PID], rec)
	}

	pids := make([]core.ParticipantID, 0, len(byPID))
	for pid := range byPID {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	aggregates := make([]survey.SessionAggregate, 0, len(pids))
	for _, pid := range pids {
		recs := byPID[pid]
		var ratings []float64
		for _, rec := range recs {
			if rec.TrustRating != nil {
				ratings = append(ratings, *rec.TrustRating)
			}
		}
		agg := survey.SessionAggregate{
			PID:            pid,
			TrialCount:     len(recs),
			CompletionRate: float64(len(recs)) / float64(ExpectedTrials),
		}
		if len(ratings) > 0 {
			agg.MeanTrust, _ = stats.Mean(ratings)
			agg.SDTrust, _ = stats.StandardDeviationSample(ratings)
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates
}
