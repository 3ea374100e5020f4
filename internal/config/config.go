package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "survkit.yaml"

// Config holds all survkit configuration.
type Config struct {
	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Engine descriptors added to, or overriding, the built-in table
	Engines []EngineConfig `yaml:"engines,omitempty"`
}

// EngineConfig describes an external survival engine.
type EngineConfig struct {
	ID        string            `yaml:"id"`
	Package   string            `yaml:"package"`
	Strata    string            `yaml:"strata"`               // argument, formula, unsupported
	Params    map[string]string `yaml:"params,omitempty"`     // framework name -> engine argument
	Predicts  []string          `yaml:"predicts,omitempty"`   // crank, lp, distr
	PathParam string            `yaml:"path_param,omitempty"` // hyperparameter predictable from one fit
}

// ValidLogLevels lists accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats lists accepted logging encodings.
var ValidLogFormats = []string{"json", "console"}

// ValidStrataPolicies lists accepted engine strata policies.
var ValidStrataPolicies = []string{"argument", "formula", "unsupported"}

// ValidPredictTypes lists accepted prediction types.
var ValidPredictTypes = []string{"crank", "lp", "distr"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
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
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("SURVKIT_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if format := os.Getenv("SURVKIT_LOG_FORMAT"); format != "" {
		c.Logging.Format = strings.ToLower(format)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if !contains(ValidLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid logging format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}

	seen := make(map[string]bool, len(c.Engines))
	for i, e := range c.Engines {
		if strings.TrimSpace(e.ID) == "" {
			return fmt.Errorf("engines[%d]: id is required", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("engines[%d]: duplicate engine id %q", i, e.ID)
		}
		seen[e.ID] = true

		if e.Strata != "" && !contains(ValidStrataPolicies, e.Strata) {
			return fmt.Errorf("engines[%d]: invalid strata policy: %s (valid: %v)", i, e.Strata, ValidStrataPolicies)
		}
		for _, p := range e.Predicts {
			if !contains(ValidPredictTypes, p) {
				return fmt.Errorf("engines[%d]: invalid predict type: %s (valid: %v)", i, p, ValidPredictTypes)
			}
		}
	}

	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
