package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	qerrors "github.com/dshills/quantaopt/internal/errors"
)

// Batch strategies.
const (
	StrategyOnce       = "once"
	StrategyFixedPoint = "fixed_point"
)

// Catalog drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config represents the complete optimizer configuration.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Optimizer configuration
	Optimizer OptimizerConfig `yaml:"optimizer"`

	// Catalog configuration
	Catalog CatalogConfig `yaml:"catalog"`

	// Feature flag overrides, keyed by flag name
	Features map[string]bool `yaml:"features"`
}

// OptimizerConfig represents the rule batches the optimizer runs.
type OptimizerConfig struct {
	ValidatePlans bool          `yaml:"validate_plans"`
	Batches       []BatchConfig `yaml:"batches"`
}

// BatchConfig represents one batch of rules.
type BatchConfig struct {
	Name          string   `yaml:"name"`
	Strategy      string   `yaml:"strategy"`       // "once", "fixed_point"
	MaxIterations int      `yaml:"max_iterations"` // fixed_point only
	Rules         []string `yaml:"rules"`
}

// CatalogConfig represents where leaf relation schemas come from.
type CatalogConfig struct {
	Driver string        `yaml:"driver"` // "memory", "postgres"
	DSN    string        `yaml:"dsn"`
	Schema string        `yaml:"schema"`
	Tables []TableConfig `yaml:"tables"`
}

// TableConfig represents a table definition for the memory catalog.
type TableConfig struct {
	Name    string         `yaml:"name"`
	Columns []ColumnConfig `yaml:"columns"`
}

// ColumnConfig represents a column definition.
type ColumnConfig struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Optimizer: OptimizerConfig{
			ValidatePlans: true,
			Batches: []BatchConfig{
				{
					Name:          "column-pruning",
					Strategy:      StrategyFixedPoint,
					MaxIterations: 100,
					Rules:         []string{"ColumnPruning", "RemoveNoopProject"},
				},
			},
		},
		Catalog: CatalogConfig{
			Driver: DriverMemory,
			Schema: "public",
		},
		Features: map[string]bool{},
	}
}

// LoadFromFile loads configuration from a YAML file. Values missing from the
// file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Validate and normalize
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// SaveToFile writes the configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// LoadFromFlags overrides configuration values set on the command line.
func (c *Config) LoadFromFlags(logLevel, logFormat string) {
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if logFormat != "" {
		c.LogFormat = logFormat
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// Validate logging
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		return qerrors.InvalidConfigError("invalid log level: %s", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
		// Valid
	default:
		return qerrors.InvalidConfigError("invalid log format: %s", c.LogFormat)
	}

	if err := c.validateOptimizer(); err != nil {
		return errors.Wrap(err, "invalid optimizer configuration")
	}

	if err := c.validateCatalog(); err != nil {
		return errors.Wrap(err, "invalid catalog configuration")
	}

	return nil
}

func (c *Config) validateOptimizer() error {
	for i, b := range c.Optimizer.Batches {
		if b.Name == "" {
			return qerrors.InvalidConfigError("batch %d has no name", i)
		}
		if len(b.Rules) == 0 {
			return qerrors.InvalidConfigError("batch %s has no rules", b.Name)
		}
		switch b.Strategy {
		case StrategyOnce:
		case StrategyFixedPoint:
			if b.MaxIterations < 1 {
				return qerrors.InvalidStrategyError(b.Strategy, b.MaxIterations)
			}
		default:
			return qerrors.InvalidStrategyError(b.Strategy, b.MaxIterations)
		}
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Catalog.DSN == "" {
			return qerrors.InvalidConfigError("dsn is required for the postgres catalog")
		}
	default:
		return qerrors.InvalidConfigError("invalid catalog driver: %s", c.Catalog.Driver)
	}

	seen := make(map[string]bool)
	for _, t := range c.Catalog.Tables {
		if t.Name == "" {
			return qerrors.InvalidConfigError("table with no name")
		}
		if seen[t.Name] {
			return qerrors.InvalidConfigError("table %s defined more than once", t.Name)
		}
		seen[t.Name] = true
		if len(t.Columns) == 0 {
			return qerrors.InvalidConfigError("table %s has no columns", t.Name)
		}
	}
	return nil
}
