package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"facetrust/internal"
	"facetrust/internal/config"
	"facetrust/internal/ingest"
	"facetrust/internal/jsonutil"
	"facetrust/internal/pipeline"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := internal.DefaultLogger

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config: %v", err)
		os.Exit(1)
	}

	mode, err := ingest.ParseMode(cfg.Data.Mode)
	if err != nil {
		logger.Error("config: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	p := pipeline.New(cfg.Data.Dir, mode)

	result, err := p.Run(ctx)
	if err != nil {
		logger.Error("pipeline run failed: %v", err)
		os.Exit(1)
	}

	out := struct {
		RunID       string               `json:"run_id"`
		GeneratedAt string               `json:"generated_at"`
		Summary     interface{}          `json:"exclusion_summary"`
		LoadReport  interface{}          `json:"load_report"`
		Stats       pipeline.StatsBundle `json:"stats"`
		Aggregates  interface{}          `json:"session_aggregates"`
	}{
		RunID:       result.RunID.String(),
		GeneratedAt: result.GeneratedAt.String(),
		Summary:     result.Summary,
		LoadReport:  result.LoadReport,
		Stats:       result.Stats,
		Aggregates:  result.Aggregates,
	}

	if err := printJSON(out); err != nil {
		logger.Error("render: %v", err)
		os.Exit(1)
	}

	if cfg.Long.Dir != "" {
		long, err := p.RunLongFormat(ctx, cfg.Long.Dir)
		if err != nil {
			logger.Error("long-format run failed: %v", err)
			os.Exit(1)
		}
		longOut := struct {
			RunID       string      `json:"run_id"`
			GeneratedAt string      `json:"generated_at"`
			Report      interface{} `json:"load_report"`
			Effects     interface{} `json:"view_effects"`
			Linear      interface{} `json:"linear_approximation"`
			Logistic    interface{} `json:"logistic_approximation"`
			ICC         interface{} `json:"intraclass_correlation"`
		}{
			RunID:       long.RunID.String(),
			GeneratedAt: long.GeneratedAt.String(),
			Report:      long.Report,
			Effects:     long.Effects,
			Linear:      long.Linear,
			Logistic:    long.Logistic,
			ICC:         long.ICC,
		}
		if err := printJSON(longOut); err != nil {
			logger.Error("render: %v", err)
			os.Exit(1)
		}
	}
}

func printJSON(v interface{}) error {
	data, err := jsonutil.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
