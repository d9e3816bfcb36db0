package survey

import (
	"time"

	"facetrust/domain/core"
)

// RawResponseRecord is one participant rating one face under one viewing
// condition, after standardization. Optional fields are pointers so a
// missing column is distinguishable from a zero value; downstream code
// never re-checks raw column presence.
type RawResponseRecord struct {
	PID            core.ParticipantID `json:"pid"`
	FaceID         core.FaceID        `json:"face_id"`
	View           View               `json:"version"`
	TrustRating    *float64           `json:"trust_rating,omitempty"`
	EmotionRating  *float64           `json:"emotion_rating,omitempty"`
	MascFemChoice  string             `json:"masc_fem_choice,omitempty"`
	SurveyResponse string             `json:"survey_response,omitempty"`
	ReactionTimeMS *float64           `json:"reaction_time_ms,omitempty"`
	Timestamp      *time.Time         `json:"timestamp,omitempty"`
	SecondaryID    string             `json:"secondary_id,omitempty"`
	Device         string             `json:"device,omitempty"`
	SourceFile     string             `json:"source_file"`
}

// ExclusionFlags records every reason a trial or its session was removed
// from the primary analysis set. Attention and device flags exist as named
// policies but are permanently false in the current behavior.
type ExclusionFlags struct {
	FailedAttention      bool `json:"failed_attention"`
	FastRT               bool `json:"fast_rt"`
	SlowRT               bool `json:"slow_rt"`
	DeviceViolation      bool `json:"device_violation"`
	LowCompletion        bool `json:"low_completion"`
	DuplicateSecondaryID bool `json:"duplicate_secondary_id"`
}

// Any reports whether any exclusion reason applies.
func (f ExclusionFlags) Any() bool {
	return f.FailedAttention || f.FastRT || f.SlowRT ||
		f.DeviceViolation || f.LowCompletion || f.DuplicateSecondaryID
}

// CleanedRecord is an immutable, fully flagged record. It is a pure
// function of the raw record set at the time of a pipeline run; nothing
// mutates it after creation.
type CleanedRecord struct {
	RawResponseRecord
	Flags            ExclusionFlags `json:"flags"`
	IncludeInPrimary bool           `json:"include_in_primary"`
}

// Exclusion reason names, used as keys in ExclusionSummary counters.
const (
	ReasonFailedAttention      = "failed_attention"
	ReasonFastRT               = "fast_rt"
	ReasonSlowRT               = "slow_rt"
	ReasonDeviceViolation      = "device_violation"
	ReasonLowCompletion        = "low_completion"
	ReasonDuplicateSecondaryID = "duplicate_secondary_id"
)

// LevelSummary counts items and exclusions at one level of the exclusion
// pass (sessions or trials).
type LevelSummary struct {
	Total    int            `json:"total"`
	Excluded int            `json:"excluded"`
	Reasons  map[string]int `json:"reasons"`
}

// NewLevelSummary returns an empty summary with an allocated reason map.
func NewLevelSummary() LevelSummary {
	return LevelSummary{Reasons: make(map[string]int)}
}

// Count increments a reason counter.
func (s *LevelSummary) Count(reason string) {
	s.Reasons[reason]++
}

// ExclusionSummary reports session- and trial-level exclusion bookkeeping
// for one pipeline run.
type ExclusionSummary struct {
	Sessions LevelSummary `json:"sessions"`
	Trials   LevelSummary `json:"trials"`
}

// SessionAggregate is a per-participant rollup. It is computed on demand
// and never persisted.
type SessionAggregate struct {
	PID            core.ParticipantID `json:"pid"`
	TrialCount     int                `json:"trial_count"`
	CompletionRate float64            `json:"completion_rate"`
	MeanTrust      float64            `json:"mean_trust"`
	SDTrust        float64            `json:"sd_trust"`
}

// LongResponse is one row of the alternative one-row-per-question-response
// shape, after normalization by the long-format adapter.
type LongResponse struct {
	ParticipantID     core.ParticipantID `json:"participant_id"`
	ImageID           core.FaceID        `json:"image_id"`
	FaceView          View               `json:"face_view"`
	FaceViewOrder     int                `json:"face_view_order"`
	QuestionType      string             `json:"question_type"`
	Response          string             `json:"response"`
	ResponseNumeric   *float64           `json:"response_numeric,omitempty"`
	IsNumericResponse bool               `json:"is_numeric_response"`
	Timestamp         *time.Time         `json:"timestamp,omitempty"`
	SourceFile        string             `json:"source_file"`
}

// FaceViewOrder fixes the presentation order used when long-format rows
// are sorted or one-hot encoded: left, then right, then full.
var FaceViewOrder = map[View]int{
	ViewLeft:  1,
	ViewRight: 2,
	ViewFull:  3,
}
