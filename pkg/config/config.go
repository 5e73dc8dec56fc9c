// Package config loads and validates the headerforge runtime configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the headerforge configuration
type Config struct {
	Framework FrameworkConfig `yaml:"framework"`
	Models    ModelsConfig    `yaml:"models"`
	Generator GeneratorConfig `yaml:"generator"`
}

// FrameworkConfig contains general settings
type FrameworkConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// ModelsConfig points at the persisted network models and data tables.
// Network files may be plain JSON or single-member ZIP archives.
type ModelsConfig struct {
	InputNetwork       string `yaml:"input_network"`
	HeaderNetwork      string `yaml:"header_network"`
	FingerprintNetwork string `yaml:"fingerprint_network"`
	BrowserList        string `yaml:"browser_list"`
	HeaderOrder        string `yaml:"header_order"`
}

// GeneratorConfig contains request defaults applied when a caller leaves the
// corresponding option empty.
type GeneratorConfig struct {
	HTTPVersion      string   `yaml:"http_version"`
	Strict           bool     `yaml:"strict"`
	Locales          []string `yaml:"locales"`
	Browsers         []string `yaml:"browsers,omitempty"`
	OperatingSystems []string `yaml:"operating_systems,omitempty"`
	Devices          []string `yaml:"devices,omitempty"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Framework: FrameworkConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
		Models: ModelsConfig{
			InputNetwork:       "data/input-network.zip",
			HeaderNetwork:      "data/header-network.zip",
			FingerprintNetwork: "data/fingerprint-network.zip",
			BrowserList:        "data/browser-helper-file.json",
			HeaderOrder:        "data/headers-order.json",
		},
		Generator: GeneratorConfig{
			HTTPVersion: "2",
			Strict:      false,
			Locales:     []string{"en-US"},
		},
	}
}

// Load reads a configuration file and validates it
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	switch c.Generator.HTTPVersion {
	case "", "1", "2":
	default:
		return fmt.Errorf("generator.http_version must be \"1\" or \"2\", got %q", c.Generator.HTTPVersion)
	}

	switch c.Framework.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("framework.log_format must be \"text\" or \"json\", got %q", c.Framework.LogFormat)
	}

	if c.Models.InputNetwork == "" || c.Models.HeaderNetwork == "" {
		return fmt.Errorf("models.input_network and models.header_network are required")
	}
	if len(c.Generator.Locales) > 10 {
		return fmt.Errorf("generator.locales supports at most 10 entries, got %d", len(c.Generator.Locales))
	}
	return nil
}
