package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocredit/domain/core"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOCREDIT_CONFIG", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.90, cfg.Validation.ConfidenceLevel)
	assert.Equal(t, "one", cfg.Validation.Tail)
	assert.Equal(t, 0.40, cfg.Validation.R)
	assert.Equal(t, 10, cfg.Scale.BinNumber)
	assert.Equal(t, int64(1), cfg.Sampling.SeedValue)
	assert.Equal(t, 0.7, cfg.Validation.Anchor.LowerRed)
	assert.Equal(t, 25.0, cfg.Validation.PSI.Yellow)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gocredit.yaml")
	body := []byte(`validation:
  confidence_level: 0.99
  tail: two
  anchor:
    lower_red: 0.6
    lower_green: 0.75
    upper_green: 1.25
    upper_red: 1.4
scale:
  bin_number: 7
runtime:
  workers: 2
  log_level: DEBUG
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))
	t.Setenv("BIN_NUMBER", "12")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.99, cfg.Validation.ConfidenceLevel)
	assert.Equal(t, "two", cfg.Validation.Tail)
	assert.Equal(t, 1.4, cfg.Validation.Anchor.UpperRed)
	assert.Equal(t, 12, cfg.Scale.BinNumber)
	assert.Equal(t, 2, cfg.Runtime.Workers)
	assert.Equal(t, "WARN", cfg.Runtime.LogLevel)
	// untouched sections keep their defaults
	assert.Equal(t, 15.0, cfg.Scale.Increase)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"confidence above one", func(c *Config) { c.Validation.ConfidenceLevel = 1.2 }},
		{"unknown tail", func(c *Config) { c.Validation.Tail = "three" }},
		{"correlation of one", func(c *Config) { c.Validation.R = 1 }},
		{"unordered anchor bands", func(c *Config) { c.Validation.Anchor.LowerGreen = 1.1 }},
		{"psi green above yellow", func(c *Config) { c.Validation.PSI.Green = 30 }},
		{"zero bins", func(c *Config) { c.Scale.BinNumber = 0 }},
		{"non-positive increase", func(c *Config) { c.Scale.Increase = 0 }},
		{"ratio of one", func(c *Config) { c.Sampling.Ratio = 1 }},
		{"single fold", func(c *Config) { c.Sampling.Folds = 1 }},
		{"negative workers", func(c *Config) { c.Runtime.Workers = -1 }},
		{"unknown log level", func(c *Config) { c.Runtime.LogLevel = "LOUD" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, core.IsConfigurationError(err))
		})
	}
}

func TestLoadFileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scale: [unclosed"), 0o600))
	_, err := LoadFile(path)
	assert.True(t, core.IsConfigurationError(err))
}
