// Package config provides configuration loading for the test runner
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileName is the optional environment file consulted by Load
const EnvFileName = ".go-test-runner.env"

// Config holds the framework-level configuration for the test runner.
// Suite-scoped requirement variables live in the configuration tree, not
// here; this covers how the runner itself behaves.
type Config struct {
	// Core settings
	ConfigFile string // GO_TEST_RUNNER_CONFIG_FILE
	BuildRoot  string // GO_TEST_RUNNER_BUILD_ROOT

	// Performance settings
	Performance struct {
		ParallelWorkers int  // GO_TEST_RUNNER_PARALLEL_WORKERS (0 = auto)
		Timeout         int  // GO_TEST_RUNNER_TIMEOUT (seconds, 0 = no overall limit)
		FailFast        bool // GO_TEST_RUNNER_FAIL_FAST
	}

	// UI settings
	UI struct {
		ColorOutput bool // GO_TEST_RUNNER_COLOR_OUTPUT (default: true)
	}
}

// Load reads configuration from the environment, first merging in the
// optional env file from the current directory. Variables already set in
// the environment win over the file.
func Load() (*Config, error) {
	if _, err := os.Stat(EnvFileName); err == nil {
		if err := godotenv.Load(EnvFileName); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", EnvFileName, err)
		}
	}

	cfg := &Config{}
	cfg.ConfigFile = getStringEnv("GO_TEST_RUNNER_CONFIG_FILE", "")
	cfg.BuildRoot = getStringEnv("GO_TEST_RUNNER_BUILD_ROOT", ".")
	cfg.Performance.ParallelWorkers = getIntEnv("GO_TEST_RUNNER_PARALLEL_WORKERS", 0) // 0 = auto
	cfg.Performance.Timeout = getIntEnv("GO_TEST_RUNNER_TIMEOUT", 0) // 0 = no overall limit
	cfg.Performance.FailFast = getBoolEnv("GO_TEST_RUNNER_FAIL_FAST", false)
	cfg.UI.ColorOutput = getBoolEnv("GO_TEST_RUNNER_COLOR_OUTPUT", true)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration and provides helpful error messages
func (c *Config) Validate() error {
	var errors []string

	if c.Performance.ParallelWorkers < 0 {
		errors = append(errors, "GO_TEST_RUNNER_PARALLEL_WORKERS must be 0 (auto) or positive")
	}

	if c.Performance.Timeout < 0 {
		errors = append(errors, "GO_TEST_RUNNER_TIMEOUT must be 0 (unlimited) or positive")
	}

	if c.BuildRoot == "" {
		errors = append(errors, "GO_TEST_RUNNER_BUILD_ROOT must not be empty")
	}

	if len(errors) > 0 {
		return &ValidationError{
			Errors: errors,
		}
	}

	return nil
}

// ValidationError represents configuration validation errors
type ValidationError struct {
	Errors []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Helper functions for environment variable parsing
func getBoolEnv(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return b
}

func getIntEnv(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

func getStringEnv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}
