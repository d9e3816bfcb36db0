package config

import (
	"os"

	"facetrust/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data    DataConfig
	Long    LongFormatConfig
	Logging LoggingConfig
}

// DataConfig holds the wide-format data source settings
type DataConfig struct {
	// Dir is the directory of tabular files (.csv, .xlsx) to ingest.
	Dir string
	// Mode selects the filename filter: "test" loads everything,
	// "production" drops known test exports.
	Mode string
}

// LongFormatConfig holds the long-format data source settings
type LongFormatConfig struct {
	// Dir is the directory of one-row-per-question-response files.
	// Empty disables the long-format path.
	Dir string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			Dir:  os.Getenv("DATA_DIR"),
			Mode: getEnvOrDefault("DATA_MODE", "production"),
		},
		Long: LongFormatConfig{
			Dir: getEnvOrDefault("LONG_DATA_DIR", ""),
		},
		Logging: LoggingConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Data.Dir == "" {
		return errors.ConfigInvalid("DATA_DIR is required")
	}
	if config.Data.Mode != "test" && config.Data.Mode != "production" {
		return errors.ConfigInvalid("DATA_MODE must be test or production")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
