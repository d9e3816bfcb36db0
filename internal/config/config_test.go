package config

import (
	"testing"
)

// TestLoadDefaults tests environment loading with defaults applied
func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_DIR", "/data/study")
	t.Setenv("DATA_MODE", "")
	t.Setenv("LONG_DATA_DIR", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Data.Dir != "/data/study" {
		t.Errorf("Data.Dir = %q", cfg.Data.Dir)
	}
	if cfg.Data.Mode != "production" {
		t.Errorf("Data.Mode = %q, want production default", cfg.Data.Mode)
	}
	if cfg.Long.Dir != "" {
		t.Errorf("Long.Dir = %q, want disabled by default", cfg.Long.Dir)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Logging.Level = %q, want INFO default", cfg.Logging.Level)
	}
}

// TestLoadValidation tests the required-field and mode checks
func TestLoadValidation(t *testing.T) {
	t.Run("missing DATA_DIR", func(t *testing.T) {
		t.Setenv("DATA_DIR", "")
		if _, err := Load(); err == nil {
			t.Error("Expected error for missing DATA_DIR")
		}
	})

	t.Run("bad DATA_MODE", func(t *testing.T) {
		t.Setenv("DATA_DIR", "/data/study")
		t.Setenv("DATA_MODE", "staging")
		if _, err := Load(); err == nil {
			t.Error("Expected error for unknown DATA_MODE")
		}
	})

	t.Run("test mode accepted", func(t *testing.T) {
		t.Setenv("DATA_DIR", "/data/study")
		t.Setenv("DATA_MODE", "test")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Data.Mode != "test" {
			t.Errorf("Data.Mode = %q", cfg.Data.Mode)
		}
	})
}
