// Package config loads and validates the engine configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Propagation PropagationConfig `yaml:"propagation"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Proximity   ProximityConfig   `yaml:"proximity"`
	RandomSeed  int64             `yaml:"random_seed"`
}

type PropagationConfig struct {
	// Alpha is the restart probability. Must be in (0, 1).
	Alpha float64 `yaml:"alpha"`

	// Tolerance is the L2 convergence threshold on successive iterates.
	Tolerance float64 `yaml:"tolerance"`

	// MaxIterations caps the propagation loop. Hitting the cap flags
	// the result but still returns the last iterate.
	MaxIterations int `yaml:"max_iterations"`

	// Normalization selects the adjacency operator normalization:
	// "column", "row" or "symmetric".
	Normalization string `yaml:"normalization"`
}

type ScoringConfig struct {
	// NRandomizations is the null-model trial count per module.
	NRandomizations int `yaml:"n_randomizations"`

	// DegreeBins is the number of degree-rank bins used for
	// degree-preserving randomization.
	DegreeBins int `yaml:"degree_bins"`

	// ClosenessThreshold separates disease-proximal from distal drugs
	// in the topological classification.
	ClosenessThreshold float64 `yaml:"closeness_threshold"`

	// SentinelDistance replaces infinite shortest-path distances so
	// downstream mean/variance arithmetic stays finite.
	SentinelDistance float64 `yaml:"sentinel_distance"`
}

type ProximityConfig struct {
	// Backend selects how PQAB is derived: "zscore" (null-model
	// normalized distances) or "propagation" (PRINCE fixed point).
	Backend string `yaml:"backend"`
}

const (
	BackendZScore      = "zscore"
	BackendPropagation = "propagation"
)

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Propagation: PropagationConfig{
			Alpha:         0.5,
			Tolerance:     1e-6,
			MaxIterations: 1000,
			Normalization: "column",
		},
		Scoring: ScoringConfig{
			NRandomizations:    1000,
			DegreeBins:         20,
			ClosenessThreshold: 3.0,
			SentinelDistance:   1000.0,
		},
		Proximity: ProximityConfig{
			Backend: BackendZScore,
		},
		RandomSeed: 42,
	}
}

// Load reads a YAML config file and merges it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks all numeric ranges and enum fields.
func (c *Config) Validate() error {
	if c.Propagation.Alpha <= 0 || c.Propagation.Alpha >= 1 {
		return fmt.Errorf("propagation.alpha must be in (0, 1), got %g", c.Propagation.Alpha)
	}
	if c.Propagation.Tolerance <= 0 {
		return fmt.Errorf("propagation.tolerance must be > 0, got %g", c.Propagation.Tolerance)
	}
	if c.Propagation.MaxIterations <= 0 {
		return fmt.Errorf("propagation.max_iterations must be > 0, got %d", c.Propagation.MaxIterations)
	}
	switch c.Propagation.Normalization {
	case "column", "row", "symmetric":
	default:
		return fmt.Errorf("propagation.normalization must be column, row or symmetric, got %q", c.Propagation.Normalization)
	}
	if c.Scoring.NRandomizations <= 0 {
		return fmt.Errorf("scoring.n_randomizations must be > 0, got %d", c.Scoring.NRandomizations)
	}
	if c.Scoring.DegreeBins <= 0 {
		return fmt.Errorf("scoring.degree_bins must be > 0, got %d", c.Scoring.DegreeBins)
	}
	if c.Scoring.SentinelDistance <= 0 {
		return fmt.Errorf("scoring.sentinel_distance must be > 0, got %g", c.Scoring.SentinelDistance)
	}
	switch c.Proximity.Backend {
	case BackendZScore, BackendPropagation:
	default:
		return fmt.Errorf("proximity.backend must be %s or %s, got %q", BackendZScore, BackendPropagation, c.Proximity.Backend)
	}
	return nil
}
