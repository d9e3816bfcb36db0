// Package pipeline wires ingestion, exclusion, filtering, and inference
// into one explicit value. A Pipeline is constructed with its directory
// and mode; nothing reads dataset state except through the results a run
// returns, and every run recomputes from scratch.
package pipeline

import (
	"context"

	"golang.org/x/sync/semaphore"

	"facetrust/domain/core"
	"facetrust/domain/survey"
	"facetrust/internal"
	"facetrust/internal/exclusion"
	"facetrust/internal/filter"
	"facetrust/internal/inference"
	"facetrust/internal/ingest"
	"facetrust/internal/longform"
)

// StatsBundle is the inference result set handed to export collaborators.
// This package defines its shape only; serialization formats live with
// the consumers.
type StatsBundle struct {
	PairedComparison inference.PairedComparisonResult `json:"paired_comparison"`
	ANOVA            inference.RMANOVAResult          `json:"repeated_measures_anova"`
	ICC              inference.ICCResult              `json:"intraclass_correlation"`
	SplitHalf        inference.SplitHalfResult        `json:"split_half_reliability"`
}

// Result is everything one wide-format run produces.
type Result struct {
	RunID       core.RunID                `json:"run_id"`
	GeneratedAt core.Timestamp            `json:"generated_at"`
	Records     []survey.CleanedRecord    `json:"records"`
	Summary     survey.ExclusionSummary   `json:"exclusion_summary"`
	Aggregates  []survey.SessionAggregate `json:"session_aggregates"`
	LoadReport  ingest.LoadReport         `json:"load_report"`
	Stats       StatsBundle               `json:"stats"`
}

// LongResult is everything one long-format run produces.
type LongResult struct {
	RunID       core.RunID                 `json:"run_id"`
	GeneratedAt core.Timestamp             `json:"generated_at"`
	Responses   []survey.LongResponse      `json:"responses"`
	Report      longform.Report            `json:"load_report"`
	Effects     longform.ViewEffectsResult `json:"view_effects"`
	Linear      longform.RegressionResult  `json:"linear_approximation"`
	Logistic    longform.RegressionResult  `json:"logistic_approximation"`
	ICC         inference.ICCResult        `json:"intraclass_correlation"`
}

// Pipeline runs the cleaning and inference passes over one directory.
type Pipeline struct {
	dir    string
	mode   ingest.Mode
	logger *internal.Logger

	// runs serializes pipeline runs so no run observes the directory
	// mid-write while another is loading it.
	runs *semaphore.Weighted
}

// New creates a pipeline over a directory.
func New(dir string, mode ingest.Mode) *Pipeline {
	return &Pipeline{
		dir:    dir,
		mode:   mode,
		logger: internal.DefaultLogger,
		runs:   semaphore.NewWeighted(1),
	}
}

// Run executes the wide-format path: load, standardize, exclude, and
// compute the statistics bundle over the primary analysis set.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := p.runs.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.runs.Release(1)

	runID := core.NewRunID()
	p.logger.Info("run %s: loading %s (mode=%s)", runID, p.dir, p.mode)

	records, loadReport, err := ingest.Load(p.dir, p.mode)
	if err != nil {
		return nil, err
	}

	cleaned, summary := exclusion.NewEngine().Apply(records)

	primary, err := filter.NewEngine(cleaned).Apply(filter.Spec{})
	if err != nil {
		return nil, err
	}

	engine := inference.NewEngine(primary)
	result := &Result{
		RunID:       runID,
		GeneratedAt: core.Now(),
		Records:     cleaned,
		Summary:     summary,
		Aggregates:  exclusion.SessionAggregates(cleaned),
		LoadReport:  *loadReport,
		Stats: StatsBundle{
			PairedComparison: engine.PairedComparison(),
			ANOVA:            engine.RepeatedMeasuresANOVA(),
			ICC:              engine.StimulusReliability(),
			SplitHalf:        engine.SplitHalfReliability(),
		},
	}

	p.logger.Info("run %s: %d raw, %d in primary set", runID, len(cleaned), len(primary))
	return result, nil
}

// RunFiltered executes the wide-format path and then applies a filter
// spec before inference, for ad-hoc analyses.
func (p *Pipeline) RunFiltered(ctx context.Context, spec filter.Spec) (*Result, error) {
	result, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}

	subset, err := filter.NewEngine(result.Records).Apply(spec)
	if err != nil {
		return nil, err
	}

	engine := inference.NewEngine(subset)
	result.Stats = StatsBundle{
		PairedComparison: engine.PairedComparison(),
		ANOVA:            engine.RepeatedMeasuresANOVA(),
		ICC:              engine.StimulusReliability(),
		SplitHalf:        engine.SplitHalfReliability(),
	}
	return result, nil
}

// RunLongFormat executes the independent long-format path over dir,
// normalizing responses and fitting the simplified approximations for
// the trust question.
func (p *Pipeline) RunLongFormat(ctx context.Context, dir string) (*LongResult, error) {
	if err := p.runs.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.runs.Release(1)

	runID := core.NewRunID()
	p.logger.Info("run %s: loading long-format %s", runID, dir)

	responses, report, err := longform.LoadDir(dir)
	if err != nil {
		return nil, err
	}

	approx := longform.NewApproximator(responses)
	const questionType = "trust_rating"

	return &LongResult{
		RunID:       runID,
		GeneratedAt: core.Now(),
		Responses:   responses,
		Report:      *report,
		Effects:     approx.ViewEffects(questionType),
		Linear:      approx.LinearApproximation(questionType),
		Logistic:    approx.LogisticApproximation(questionType),
		ICC:         approx.IntraclassCorrelation(questionType),
	}, nil
}
