// Package config loads keymasterctl's configuration from a YAML file, with
// environment-variable overrides bound through viper.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is keymasterctl's full configuration.
type Config struct {
	RootOfTrustFile        string        `yaml:"root_of_trust_file"`
	OperationTableCapacity int           `yaml:"operation_table_capacity"`
	Logging                LoggingConfig `yaml:"logging"`
	Metrics                MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls whether Prometheus metrics are collected.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration keymasterctl runs with when no config
// file is supplied.
func Default() *Config {
	return &Config{
		RootOfTrustFile:        "",
		OperationTableCapacity: 16,
		Logging:                LoggingConfig{Level: "info", Format: "text"},
		Metrics:                MetricsConfig{Enabled: false},
	}
}

// Load reads configuration from the YAML file at path (skipped entirely if
// path is empty) and then applies KEYMASTER_*-prefixed environment variable
// overrides via viper.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("KEYMASTER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if rootOfTrustFile := v.GetString("root_of_trust_file"); rootOfTrustFile != "" {
		cfg.RootOfTrustFile = rootOfTrustFile
	}
	if logLevel := v.GetString("log_level"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat := v.GetString("log_format"); logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if v.IsSet("metrics_enabled") {
		cfg.Metrics.Enabled = v.GetBool("metrics_enabled")
	}
	if v.IsSet("operation_table_capacity") {
		cfg.OperationTableCapacity = v.GetInt("operation_table_capacity")
	}
}

// Validate checks cfg for internally-inconsistent values.
func (c *Config) Validate() error {
	if c.OperationTableCapacity <= 0 {
		return fmt.Errorf("operation_table_capacity must be positive, got %d", c.OperationTableCapacity)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "fatal": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}
