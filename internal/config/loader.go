package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if NORDWATT_CONFIG is set
//  3. env (prefix NORDWATT_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("NORDWATT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: NORDWATT_ADDR, NORDWATT_RECHECK_HOUR, ...
	// Map env keys like NORDWATT_RECHECK_HOUR -> recheck_hour (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("NORDWATT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "nordwatt_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the scheduler cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DecimalPrecision < 0:
		return fmt.Errorf("%w: decimal_precision must not be negative", ErrInvalidConfig)
	case c.ConsecutiveHours <= 0 || c.ConsecutiveHours > 24:
		return fmt.Errorf("%w: consecutive_hours must be within 1..24", ErrInvalidConfig)
	case c.RecheckHour < 0 || c.RecheckHour > 23:
		return fmt.Errorf("%w: recheck_hour must be within 0..23", ErrInvalidConfig)
	case c.SolarOverrideJuneHourStart < 0 || c.SolarOverrideJuneHourStart > 23:
		return fmt.Errorf("%w: solar_override_june_hour_start must be within 0..23", ErrInvalidConfig)
	case c.SolarOverrideJuneHourEnd < 0 || c.SolarOverrideJuneHourEnd > 23:
		return fmt.Errorf("%w: solar_override_june_hour_end must be within 0..23", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, c.Timezone)
	}
	return nil
}

// Location resolves the configured timezone. Validation guarantees success
// for loaded configs.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, c.Timezone)
	}
	return loc, nil
}
