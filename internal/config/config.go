package config

import (
	"os"
	"strconv"

	"goanam/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Fit    FitConfig
	Paths  PathConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// FitConfig holds calibration defaults
type FitConfig struct {
	// DefaultOrder is the Hermite truncation order used when a request does
	// not specify one.
	DefaultOrder int
	// MaxOrder caps requested orders; the recurrence degrades numerically for
	// very large orders.
	MaxOrder int
}

// PathConfig holds file system paths
type PathConfig struct {
	ReportFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Fit: FitConfig{
			DefaultOrder: getEnvIntOrDefault("HERMITE_ORDER", 30),
			MaxOrder:     getEnvIntOrDefault("HERMITE_MAX_ORDER", 100),
		},
		Paths: PathConfig{
			ReportFile: getEnvOrDefault("REPORT_FILE", "calibration_report.xlsx"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Fit.DefaultOrder < 1 {
		return errors.ConfigInvalid("HERMITE_ORDER must be >= 1")
	}
	if config.Fit.MaxOrder < config.Fit.DefaultOrder {
		return errors.ConfigInvalid("HERMITE_MAX_ORDER must be >= HERMITE_ORDER")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
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

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
