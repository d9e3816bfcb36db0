// Package testkit generates deterministic synthetic study data for
// package tests: small directories of wide- and long-format files with
// known participants, faces, and reaction-time behavior.
package testkit

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// Config controls the synthetic dataset.
type Config struct {
	Seed             int64
	Participants     int
	TestParticipants int // participants named test_pilot_<i>
	Faces            int
	Trials           int // trials per participant, 3 views per face
	FastRTEvery      int // every n-th trial gets a sub-200ms RT; 0 disables
}

// DefaultConfig returns a small but fully populated study.
func DefaultConfig() Config {
	return Config{
		Seed:         42,
		Participants: 6,
		Faces:        20,
		Trials:       60,
	}
}

var views = []string{"left", "right", "full"}

// WriteWideDirectory writes one wide-format CSV per participant into dir.
// Files are named participant_<i>.csv; test participants get test_pilot
// ids inside files named test_pilot_<i>.csv so production mode drops
// them.
func WriteWideDirectory(dir string, cfg Config) error {
	rng := rand.New(rand.NewSource(cfg.Seed))
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < cfg.Participants; i++ {
		pid := fmt.Sprintf("p%03d", i+1)
		name := fmt.Sprintf("participant_%03d.csv", i+1)
		if err := writeWideFile(filepath.Join(dir, name), pid, base.AddDate(0, 0, i), cfg, rng); err != nil {
			return err
		}
	}
	for i := 0; i < cfg.TestParticipants; i++ {
		pid := fmt.Sprintf("test_pilot_%02d", i+1)
		name := fmt.Sprintf("test_%02d.csv", i+1)
		if err := writeWideFile(filepath.Join(dir, name), pid, base, cfg, rng); err != nil {
			return err
		}
	}
	return nil
}

func writeWideFile(path, pid string, day time.Time, cfg Config, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"pid", "face_id", "version", "trust_rating", "reaction_time_ms", "timestamp", "prolific_id", "device"}); err != nil {
		return err
	}

	for t := 0; t < cfg.Trials; t++ {
		face := fmt.Sprintf("%d", t/len(views)%cfg.Faces+1)
		view := views[t%len(views)]
		rating := fmt.Sprintf("%d", rng.Intn(7)+1)
		rt := 400 + rng.Float64()*800
		if cfg.FastRTEvery > 0 && t%cfg.FastRTEvery == 0 {
			rt = 120
		}
		row := []string{
			pid,
			face,
			view,
			rating,
			fmt.Sprintf("%.0f", rt),
			day.Add(time.Duration(t) * time.Minute).Format(time.RFC3339),
			"PL_" + pid,
			"desktop",
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteLongFile writes one long-format CSV with trust and emotion
// question rows for every participant/face/view combination.
func WriteLongFile(path string, cfg Config) error {
	rng := rand.New(rand.NewSource(cfg.Seed + 1))
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"participant_id", "image_id", "face_view", "question_type", "response", "timestamp"}); err != nil {
		return err
	}

	for i := 0; i < cfg.Participants; i++ {
		pid := fmt.Sprintf("p%03d", i+1)
		for face := 1; face <= cfg.Faces; face++ {
			for _, view := range views {
				ts := base.Add(time.Duration(face) * time.Minute).Format(time.RFC3339)
				img := fmt.Sprintf("face_%d", face)
				trust := fmt.Sprintf("%d", rng.Intn(7)+1)
				if err := w.Write([]string{pid, img, view, "trust_rating", trust, ts}); err != nil {
					return err
				}
				if err := w.Write([]string{pid, img, view, "masc_fem_choice", "masc", ts}); err != nil {
					return err
				}
			}
		}
	}
	return w.Error()
}
