// Package config loads the survey configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"q47-expsums/pkg/primes"
	"q47-expsums/pkg/survey"
)

// Config holds all settings of a run.
type Config struct {
	Survey  SurveyConfig  `yaml:"survey"`
	Output  OutputConfig  `yaml:"output"`
	Report  ReportConfig  `yaml:"report"`
	Logging LoggingConfig `yaml:"logging"`
}

// SurveyConfig selects the primes and the polynomial.
type SurveyConfig struct {
	MaxPrime      uint32 `yaml:"max_prime"` // exclusive
	Start         uint32 `yaml:"start"`
	Modulus       uint32 `yaml:"modulus"`
	Residue       uint32 `yaml:"residue"`
	Degree        uint32 `yaml:"degree"`         // Q(n) = n^degree - (n-1)^degree
	Workers       int    `yaml:"workers"`        // 0 = one per CPU
	ProgressEvery int    `yaml:"progress_every"` // 0 = first prime only
}

// OutputConfig names the files written by a run.
type OutputConfig struct {
	CSV    string `yaml:"csv"`
	Figure string `yaml:"figure"` // .pdf, .png or .svg
}

// ReportConfig controls the statistics block and the figure annotations.
type ReportConfig struct {
	Exclude        []uint32    `yaml:"exclude"`   // primes reported separately
	Highlight      uint32      `yaml:"highlight"` // outlier marked in the scatter panel
	SimulateTrials int         `yaml:"simulate_trials"`
	Seed           string      `yaml:"seed"`
	References     []Reference `yaml:"references"`
}

// Reference is a predicted mean of |x_p| drawn for comparison.
type Reference struct {
	Name  string  `yaml:"name"`
	Mean  float64 `yaml:"mean"`
	Style string  `yaml:"style"` // solid, dashed, dotdash
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ValidStyles lists the accepted reference line styles.
var ValidStyles = []string{"solid", "dashed", "dotdash"}

// DefaultConfig returns the settings of the published survey.
func DefaultConfig() *Config {
	return &Config{
		Survey: SurveyConfig{
			MaxPrime:      50000,
			Start:         0,
			Modulus:       47,
			Residue:       1,
			Degree:        47,
			Workers:       1,
			ProgressEvery: 20,
		},
		Output: OutputConfig{
			CSV:    "data/exponential_sums.csv",
			Figure: "figures/expsum_figure.pdf",
		},
		Report: ReportConfig{
			Exclude:        []uint32{283},
			Highlight:      283,
			SimulateTrials: 10000,
			Seed:           "q47-expsums",
			References: []Reference{
				{Name: "USp(44)", Mean: 3.74, Style: "dashed"},
				{Name: "Gaussian RW", Mean: 5.97, Style: "dotdash"},
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("EXPSUM_MAX_PRIME"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid EXPSUM_MAX_PRIME %q: %w", v, err)
		}
		c.Survey.MaxPrime = uint32(n)
	}
	if v := os.Getenv("EXPSUM_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid EXPSUM_WORKERS %q: %w", v, err)
		}
		c.Survey.Workers = n
	}
	if v := os.Getenv("EXPSUM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	s := c.Survey
	if s.MaxPrime < 3 {
		return fmt.Errorf("max_prime must be at least 3, got %d", s.MaxPrime)
	}
	if s.MaxPrime <= s.Start {
		return fmt.Errorf("max_prime %d must exceed start %d", s.MaxPrime, s.Start)
	}
	if s.Modulus == 0 {
		return fmt.Errorf("modulus must be positive")
	}
	if s.Residue >= s.Modulus {
		return fmt.Errorf("residue %d must be below modulus %d", s.Residue, s.Modulus)
	}
	if s.Degree < 2 {
		return fmt.Errorf("degree must be at least 2, got %d", s.Degree)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", s.Workers)
	}
	if s.ProgressEvery < 0 {
		return fmt.Errorf("progress_every must not be negative, got %d", s.ProgressEvery)
	}
	if c.Report.SimulateTrials < 0 {
		return fmt.Errorf("simulate_trials must not be negative, got %d", c.Report.SimulateTrials)
	}

	for _, r := range c.Report.References {
		valid := false
		for _, s := range ValidStyles {
			if r.Style == s {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid style %q for reference %q (valid: %v)", r.Style, r.Name, ValidStyles)
		}
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses the configured logging level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid logging level %q: %w", c.Logging.Level, err)
	}
	return lvl, nil
}

// SurveyConfig converts the survey section for survey.Run.
func (c *Config) SurveyConfig() survey.Config {
	return survey.Config{
		Query: primes.Query{
			Start:   c.Survey.Start,
			Limit:   c.Survey.MaxPrime,
			Modulus: c.Survey.Modulus,
			Residue: c.Survey.Residue,
		},
		Degree:        c.Survey.Degree,
		Workers:       c.Survey.Workers,
		ProgressEvery: c.Survey.ProgressEvery,
	}
}
