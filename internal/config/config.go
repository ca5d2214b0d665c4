package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Verify     bool   `yaml:"verify"`
	Workers    int    `yaml:"workers"`
	ReportFile string `yaml:"report_file"`
	LogLevel   string `yaml:"log_level"`
	LogFile    string `yaml:"log_file"`
	AssumeYes  bool   `yaml:"assume_yes"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

func DefaultConfig() *Config {
	return &Config{
		Workers:  runtime.NumCPU() * 2,
		LogLevel: "info",
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	for _, level := range logLevels {
		if c.LogLevel == level {
			return nil
		}
	}
	return fmt.Errorf("unknown log_level %q (want one of %s)", c.LogLevel, strings.Join(logLevels, ", "))
}
