// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped with this package's sentinel errors.
package config

import (
	"fmt"

	"github.com/okian/outbreak/internal/domain/bounds"
	"github.com/okian/outbreak/internal/domain/projection"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// CacheSize bounds the result memo cache. Zero or less disables the bound.
	CacheSize int `koanf:"cache_size"`

	// Input ranges applied before every simulation.
	MinCases float64 `koanf:"min_cases"`
	MaxCases float64 `koanf:"max_cases"`
	MinWeeks int     `koanf:"min_weeks"`
	MaxWeeks int     `koanf:"max_weeks"`
	MinRate  float64 `koanf:"min_rate"`
	MaxRate  float64 `koanf:"max_rate"`

	// Values used when a request omits a field.
	DefaultCases           float64  `koanf:"default_cases"`
	DefaultWeeks           int      `koanf:"default_weeks"`
	DefaultRate            float64  `koanf:"default_rate"`
	DefaultStartWeek       int      `koanf:"default_start_week"`
	DefaultTransitionWeeks int      `koanf:"default_transition_weeks"`
	DefaultStrategies      []string `koanf:"default_strategies"`

	// Strategies overrides the built-in catalog when non-empty.
	Strategies []projection.Strategy `koanf:"strategies"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		CacheSize:              1024,
		MinCases:               bounds.DefaultMinCases,
		MaxCases:               bounds.DefaultMaxCases,
		MinWeeks:               bounds.DefaultMinWeeks,
		MaxWeeks:               bounds.DefaultMaxWeeks,
		MinRate:                bounds.DefaultMinRate,
		MaxRate:                bounds.DefaultMaxRate,
		DefaultCases:           100,
		DefaultWeeks:           20,
		DefaultRate:            1.2,
		DefaultStartWeek:       12,
		DefaultTransitionWeeks: 6,
		DefaultStrategies:      []string{"distanciamento", "mascaras"},
	}
}

// Bounds returns the configured input ranges.
func (c *Config) Bounds() bounds.Bounds {
	return bounds.Bounds{
		MinCases: c.MinCases,
		MaxCases: c.MaxCases,
		MinWeeks: c.MinWeeks,
		MaxWeeks: c.MaxWeeks,
		MinRate:  c.MinRate,
		MaxRate:  c.MaxRate,
	}
}

// Catalog returns the strategy catalog to serve. Nil means the built-in one.
func (c *Config) Catalog() []projection.Strategy {
	if len(c.Strategies) == 0 {
		return nil
	}
	return append([]projection.Strategy(nil), c.Strategies...)
}

// Validate checks internal consistency.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MinCases > c.MaxCases {
		return fmt.Errorf("%w: min_cases %g exceeds max_cases %g", ErrInvalidConfig, c.MinCases, c.MaxCases)
	}
	if c.MinWeeks > c.MaxWeeks {
		return fmt.Errorf("%w: min_weeks %d exceeds max_weeks %d", ErrInvalidConfig, c.MinWeeks, c.MaxWeeks)
	}
	if c.MinRate > c.MaxRate {
		return fmt.Errorf("%w: min_rate %g exceeds max_rate %g", ErrInvalidConfig, c.MinRate, c.MaxRate)
	}
	if c.Bounds().Overflows() {
		return fmt.Errorf("%w: max_cases %g grown at max_rate %g for max_weeks %d overflows", ErrInvalidConfig, c.MaxCases, c.MaxRate, c.MaxWeeks)
	}
	if err := projection.ValidateCatalog(c.Strategies); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
