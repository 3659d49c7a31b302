// Package config holds the daemon configuration: a YAML file with
// environment variable overrides on top. Every field has a usable default
// so the daemon runs with no config at all.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the full daemon configuration.
type Config struct {
	// HTTPAddr is the listen address of the HTTP API.
	HTTPAddr string `yaml:"http_addr"`
	// DataDir holds one JSON document per collection.
	DataDir string `yaml:"data_dir"`
	// PublicDir, when set, is served for non-API routes (SPA hosting).
	PublicDir string `yaml:"public_dir"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTPAddr: ":5050",
		DataDir:  "./data",
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads the config file at path (optional: a missing file just means
// defaults) and applies environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(content, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets the environment win over the file, which in turn
// wins over defaults.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KLINIK_HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("KLINIK_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("KLINIK_PUBLIC_DIR"); v != "" {
		c.PublicDir = v
	}
	if v := os.Getenv("KLINIK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// BuildLogger constructs the zap logger described by the logging section.
func (c *Config) BuildLogger() (*zap.Logger, error) {
	var zc zap.Config
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", c.Logging.Level, err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
