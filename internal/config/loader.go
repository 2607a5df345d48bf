package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "BERTRAND_"
	EnvConfigPath = "BERTRAND_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if BERTRAND_CONFIG is set
//  3. env (prefix BERTRAND_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// BERTRAND_THETA_MAX -> theta_max; underscores are kept to match the
	// flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges that would otherwise fail deep in the solver.
func (c *Config) Validate() error {
	switch {
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.ThetaMax <= 0:
		return fmt.Errorf("%w: theta_max must be positive, got %v", ErrInvalidConfig, c.ThetaMax)
	case c.MaxCycles <= 0:
		return fmt.Errorf("%w: max_cycles must be positive, got %d", ErrInvalidConfig, c.MaxCycles)
	case c.RTol < 0 || c.ATol < 0:
		return fmt.Errorf("%w: tolerances must be non-negative", ErrInvalidConfig)
	case c.HopIterations < 0:
		return fmt.Errorf("%w: hop_iterations must not be negative", ErrInvalidConfig)
	case c.HopStepSize <= 0 || c.HopTemperature <= 0:
		return fmt.Errorf("%w: hop_step and hop_temperature must be positive", ErrInvalidConfig)
	case c.HopStepScale < 0 || c.ScanPoints < 0:
		return fmt.Errorf("%w: hop_step_scale and scan_points must not be negative", ErrInvalidConfig)
	case c.Timeout < 0:
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.ReportFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: report_format %q", ErrInvalidConfig, c.ReportFormat)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
