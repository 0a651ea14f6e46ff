// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file, .env and environment variables.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Trials is the default number of simulated season continuations per run.
	Trials int `koanf:"trials"`

	// MaxTrials caps the trial count a single API request may ask for.
	MaxTrials int `koanf:"max_trials"`

	// MaxCompetitors caps the roster size accepted by the API.
	MaxCompetitors int `koanf:"max_competitors"`

	// WorkerCount sets the number of trial workers.
	WorkerCount int `koanf:"worker_count"`

	// BatchSize is the number of trials a worker takes off the queue at once.
	BatchSize int `koanf:"batch_size"`

	// Seed fixes the PRNG seed. Zero means a fresh random seed per run.
	Seed uint64 `koanf:"seed"`

	// ProgressSteps is how many progress lines a run logs. Zero disables them.
	ProgressSteps int `koanf:"progress_steps"`

	// RateLimitRPS and RateLimitBurst bound POST /v1/simulations.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// InflightSize bounds how many request ids the API tracks as running.
	InflightSize int `koanf:"inflight_size"`

	// CORSOrigins lists allowed browser origins for the API.
	CORSOrigins []string `koanf:"cors_origins"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		Trials:         10_000,
		MaxTrials:      1_000_000,
		MaxCompetitors: 100,
		WorkerCount:    runtime.NumCPU(),
		BatchSize:      250,
		Seed:           0,
		ProgressSteps:  20,
		RateLimitRPS:   5,
		RateLimitBurst: 10,
		InflightSize:   10_000,
		CORSOrigins:    []string{"*"},
	}
}
