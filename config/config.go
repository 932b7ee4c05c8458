// Package config loads AggMesh configuration from YAML files. It covers the
// engine's operational knobs, logging and telemetry; workflow definitions
// live in the workflow package.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/aggmesh/engine"
	"github.com/hupe1980/aggmesh/logging"
	"github.com/hupe1980/aggmesh/telemetry"
)

// EngineConfig mirrors engine.Config with yaml tags.
type EngineConfig struct {
	MaxConcurrentUnits int `yaml:"max_concurrent_units"`
	MetricsCapacity    int `yaml:"metrics_capacity"`
}

// LoggingConfig selects level and format for the built-in slog logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// Config is the root configuration document.
type Config struct {
	Engine    EngineConfig     `yaml:"engine"`
	Logging   LoggingConfig    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// Default returns the baseline configuration matching engine.DefaultConfig.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxConcurrentUnits: engine.DefaultConfig.MaxConcurrentUnits,
			MetricsCapacity:    engine.DefaultConfig.MetricsCapacity,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads and parses a YAML configuration file, layering it over the
// defaults. A missing path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// EngineConfig converts the document into the engine's Config type.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		MaxConcurrentUnits: c.Engine.MaxConcurrentUnits,
		MetricsCapacity:    c.Engine.MetricsCapacity,
	}
}

// BuildLogger constructs an AggMeshLogger from the logging section.
func (c *Config) BuildLogger() logging.Logger {
	lc := logging.DefaultLoggerConfig()
	lc.Level = logging.ParseLevel(c.Logging.Level)
	if c.Logging.Format != "" {
		lc.Format = c.Logging.Format
	}
	lc.AddSource = c.Logging.AddSource
	return logging.NewLogger(lc)
}
