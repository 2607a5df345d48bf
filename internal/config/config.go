// Package config defines process configuration and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - External errors are wrapped with ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"time"
)

// MemberConfig is one seller's score inside a configured partition.
type MemberConfig struct {
	Seller string  `koanf:"seller"`
	Score  float64 `koanf:"score"`
}

// ScenarioConfig is a quality-score dataset supplied through configuration.
// Partitions is keyed by partition name (ABC, AB_C, AC_B, A_BC, A_B_C_).
type ScenarioConfig struct {
	Name        string                    `koanf:"name"`
	Description string                    `koanf:"description"`
	Partitions  map[string][]MemberConfig `koanf:"partitions"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// DBPath is the SQLite file holding persisted equilibrium runs.
	DBPath string `koanf:"db_path"`
	// ReportFormat selects the report renderer: text or json.
	ReportFormat string `koanf:"report_format"`
	// MetricsFile, when set, receives a Prometheus text dump at exit.
	MetricsFile string `koanf:"metrics_file"`

	// Distribution is the valuation threshold family: uniform or truncnormal.
	Distribution string  `koanf:"distribution"`
	ThetaMax     float64 `koanf:"theta_max"`
	ThetaMean    float64 `koanf:"theta_mean"`
	ThetaStdDev  float64 `koanf:"theta_stddev"`
	// Squared uses squared quality scores in the indifference thresholds.
	Squared bool `koanf:"squared"`

	// BaselinePrice seeds every slot before the first cycle.
	BaselinePrice float64 `koanf:"baseline_price"`
	RTol          float64 `koanf:"rtol"`
	ATol          float64 `koanf:"atol"`
	MaxCycles     int     `koanf:"max_cycles"`
	// Timeout bounds one partition's equilibrium search.
	Timeout time.Duration `koanf:"timeout"`

	// Basin-hopping parameters of the best-response search.
	HopIterations  int     `koanf:"hop_iterations"`
	HopStepSize    float64 `koanf:"hop_step"`
	HopTemperature float64 `koanf:"hop_temperature"`
	// HopStepScale widens hops to this fraction of the current price.
	HopStepScale float64 `koanf:"hop_step_scale"`
	// ScanPoints is the size of the price scan seeding local searches.
	ScanPoints int   `koanf:"scan_points"`
	Seed       int64 `koanf:"seed"`

	// Parallelism is the number of partitions solved at once.
	Parallelism int `koanf:"parallelism"`

	// Scenarios overrides the built-in datasets when non-empty.
	Scenarios []ScenarioConfig `koanf:"scenarios"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		DBPath:         "bertrand.db",
		ReportFormat:   "text",
		Distribution:   "uniform",
		ThetaMax:       10000,
		ThetaMean:      5000,
		ThetaStdDev:    2500,
		Squared:        false,
		BaselinePrice:  5.0,
		RTol:           1e-6,
		ATol:           1e-8,
		MaxCycles:      1000,
		Timeout:        5 * time.Minute,
		HopIterations:  100,
		HopStepSize:    0.5,
		HopTemperature: 1.0,
		HopStepScale:   0.05,
		ScanPoints:     256,
		Seed:           42,
		Parallelism:    1,
	}
}
