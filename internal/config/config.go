package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"gocredit/internal/errors"
	"gocredit/internal/validation"
)

// Config represents the complete toolkit configuration
type Config struct {
	Validation ValidationConfig `yaml:"validation"`
	Scale      ScaleConfig      `yaml:"scale"`
	Sampling   SamplingConfig   `yaml:"sampling"`
	Runtime    RuntimeConfig    `yaml:"runtime"`
}

// ValidationConfig holds the statistical test parameters
type ValidationConfig struct {
	ConfidenceLevel     float64               `yaml:"confidence_level"`
	ChiSquareConfidence float64               `yaml:"chi_square_confidence"`
	Tail                string                `yaml:"tail"`
	R                   float64               `yaml:"r"`
	CentralTendency     float64               `yaml:"central_tendency"`
	Anchor              validation.Bands      `yaml:"anchor"`
	PSI                 validation.Thresholds `yaml:"psi"`
}

// ScaleConfig holds master scale and score settings
type ScaleConfig struct {
	BinNumber    int     `yaml:"bin_number"`
	CeilingScore float64 `yaml:"ceiling_score"`
	Increase     float64 `yaml:"increase"`
}

// SamplingConfig holds split and cross-validation settings
type SamplingConfig struct {
	SeedValue int64   `yaml:"seed_value"`
	Ratio     float64 `yaml:"ratio"`
	Folds     int     `yaml:"folds"`
}

// RuntimeConfig holds process settings
type RuntimeConfig struct {
	Workers  int    `yaml:"workers"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the conventional parameter set
func Default() *Config {
	return &Config{
		Validation: ValidationConfig{
			ConfidenceLevel:     0.90,
			ChiSquareConfidence: 0.95,
			Tail:                string(validation.OneTail),
			R:                   0.40,
			Anchor:              validation.DefaultBands(),
			PSI:                 validation.DefaultThresholds(),
		},
		Scale: ScaleConfig{
			BinNumber:    10,
			CeilingScore: 1000,
			Increase:     15,
		},
		Sampling: SamplingConfig{
			SeedValue: 1,
			Ratio:     0.67,
			Folds:     5,
		},
		Runtime: RuntimeConfig{
			Workers:  4,
			LogLevel: "INFO",
		},
	}
}

// Load starts from the defaults, overlays the YAML file named by
// GOCREDIT_CONFIG if set, then applies environment overrides and validates
func Load() (*Config, error) {
	return LoadFile(os.Getenv("GOCREDIT_CONFIG"))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.Configuration("config_file", fmt.Sprintf("%s: %v", path, err))
		}
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func applyEnv(config *Config) {
	v := &config.Validation
	v.ConfidenceLevel = getEnvFloatOrDefault("CONFIDENCE_LEVEL", v.ConfidenceLevel)
	v.ChiSquareConfidence = getEnvFloatOrDefault("CHI_SQUARE_CONFIDENCE", v.ChiSquareConfidence)
	v.Tail = getEnvOrDefault("TAIL", v.Tail)
	v.R = getEnvFloatOrDefault("ASSET_CORRELATION", v.R)
	v.CentralTendency = getEnvFloatOrDefault("CENTRAL_TENDENCY", v.CentralTendency)
	v.Anchor.LowerRed = getEnvFloatOrDefault("LOWER_RED", v.Anchor.LowerRed)
	v.Anchor.LowerGreen = getEnvFloatOrDefault("LOWER_GREEN", v.Anchor.LowerGreen)
	v.Anchor.UpperGreen = getEnvFloatOrDefault("UPPER_GREEN", v.Anchor.UpperGreen)
	v.Anchor.UpperRed = getEnvFloatOrDefault("UPPER_RED", v.Anchor.UpperRed)
	v.PSI.Green = getEnvFloatOrDefault("PSI_GREEN", v.PSI.Green)
	v.PSI.Yellow = getEnvFloatOrDefault("PSI_YELLOW", v.PSI.Yellow)

	s := &config.Scale
	s.BinNumber = getEnvIntOrDefault("BIN_NUMBER", s.BinNumber)
	s.CeilingScore = getEnvFloatOrDefault("CEILING_SCORE", s.CeilingScore)
	s.Increase = getEnvFloatOrDefault("INCREASE", s.Increase)

	sm := &config.Sampling
	sm.SeedValue = int64(getEnvIntOrDefault("SEED_VALUE", int(sm.SeedValue)))
	sm.Ratio = getEnvFloatOrDefault("SPLIT_RATIO", sm.Ratio)
	sm.Folds = getEnvIntOrDefault("FOLDS", sm.Folds)

	r := &config.Runtime
	r.Workers = getEnvIntOrDefault("WORKERS", r.Workers)
	r.LogLevel = strings.ToUpper(getEnvOrDefault("LOG_LEVEL", r.LogLevel))
}

// Validate checks every parameter range and returns the first violation
func (c *Config) Validate() error {
	v := c.Validation
	if !(v.ConfidenceLevel > 0 && v.ConfidenceLevel < 1) {
		return errors.Configuration("confidence_level", fmt.Sprintf("must lie in (0,1), got %v", v.ConfidenceLevel))
	}
	if !(v.ChiSquareConfidence > 0 && v.ChiSquareConfidence < 1) {
		return errors.Configuration("chi_square_confidence", fmt.Sprintf("must lie in (0,1), got %v", v.ChiSquareConfidence))
	}
	if _, err := validation.ParseTail(v.Tail); err != nil {
		return err
	}
	if !(v.R >= 0 && v.R < 1) {
		return errors.Configuration("r", fmt.Sprintf("must lie in [0,1), got %v", v.R))
	}
	if !(v.CentralTendency >= 0 && v.CentralTendency < 1) {
		return errors.Configuration("central_tendency", fmt.Sprintf("must lie in [0,1), got %v", v.CentralTendency))
	}
	if err := v.Anchor.Validate(); err != nil {
		return err
	}
	if err := v.PSI.Validate(); err != nil {
		return err
	}

	if c.Scale.BinNumber < 1 {
		return errors.Configuration("bin_number", fmt.Sprintf("must be at least 1, got %d", c.Scale.BinNumber))
	}
	if c.Scale.Increase <= 0 {
		return errors.Configuration("increase", fmt.Sprintf("must be positive, got %v", c.Scale.Increase))
	}

	if !(c.Sampling.Ratio > 0 && c.Sampling.Ratio < 1) {
		return errors.Configuration("ratio", fmt.Sprintf("must lie in (0,1), got %v", c.Sampling.Ratio))
	}
	if c.Sampling.Folds < 2 {
		return errors.Configuration("folds", fmt.Sprintf("must be at least 2, got %d", c.Sampling.Folds))
	}

	if c.Runtime.Workers < 0 {
		return errors.Configuration("workers", "must not be negative")
	}
	switch c.Runtime.LogLevel {
	case "ERROR", "WARN", "INFO", "DEBUG", "TRACE":
	default:
		return errors.Configuration("log_level", fmt.Sprintf("unknown level %q", c.Runtime.LogLevel))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
