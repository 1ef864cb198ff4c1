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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if LAKEMAPPER_CONFIG is set
//  3. env (prefix LAKEMAPPER_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("LAKEMAPPER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: LAKEMAPPER_BUFFER_DISTANCE, LAKEMAPPER_TARGET_CRS, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("LAKEMAPPER_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "lakemapper_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations no run could succeed with.
func (c *Config) validate() error {
	if c.BufferDistance <= 0 {
		return fmt.Errorf("%w: buffer_distance must be positive", ErrInvalidConfig)
	}
	if c.TargetCRS == "" {
		return fmt.Errorf("%w: target_crs must not be empty", ErrInvalidConfig)
	}
	if c.MinLakeArea > c.MaxLakeArea {
		return fmt.Errorf("%w: min_lake_area exceeds max_lake_area", ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	}
	return nil
}
