package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.5, cfg.Propagation.Alpha)
	assert.Equal(t, 1e-6, cfg.Propagation.Tolerance)
	assert.Equal(t, 1000, cfg.Propagation.MaxIterations)
	assert.Equal(t, 1000, cfg.Scoring.NRandomizations)
	assert.Equal(t, 20, cfg.Scoring.DegreeBins)
	assert.Equal(t, 1000.0, cfg.Scoring.SentinelDistance)
	assert.Equal(t, BackendZScore, cfg.Proximity.Backend)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
propagation:
  alpha: 0.75
scoring:
  n_randomizations: 250
proximity:
  backend: propagation
random_seed: 7
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.75, cfg.Propagation.Alpha)
	assert.Equal(t, 250, cfg.Scoring.NRandomizations)
	assert.Equal(t, BackendPropagation, cfg.Proximity.Backend)
	assert.Equal(t, int64(7), cfg.RandomSeed)

	// Untouched sections keep their defaults.
	assert.Equal(t, 1e-6, cfg.Propagation.Tolerance)
	assert.Equal(t, 20, cfg.Scoring.DegreeBins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("propagation:\n  alpha: 1.5\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alpha")
}

func TestValidateRanges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"alpha zero", func(c *Config) { c.Propagation.Alpha = 0 }},
		{"alpha one", func(c *Config) { c.Propagation.Alpha = 1 }},
		{"tolerance", func(c *Config) { c.Propagation.Tolerance = 0 }},
		{"max iterations", func(c *Config) { c.Propagation.MaxIterations = 0 }},
		{"normalization", func(c *Config) { c.Propagation.Normalization = "diag" }},
		{"randomizations", func(c *Config) { c.Scoring.NRandomizations = -1 }},
		{"degree bins", func(c *Config) { c.Scoring.DegreeBins = 0 }},
		{"sentinel", func(c *Config) { c.Scoring.SentinelDistance = 0 }},
		{"backend", func(c *Config) { c.Proximity.Backend = "oracle" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
