// Package config loads the optional YAML configuration file for rq.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bodgit/rq/mask"
	"gopkg.in/yaml.v3"
)

const defaultWorkers = 10

// Config holds the defaults used by the rq commands
type Config struct {
	// Mask is the channel mask used when encoding, e.g. "565"
	Mask string `yaml:"mask"`
	// Augment selects the fixed 5/6/5 reconstruction when decoding
	Augment bool `yaml:"augment"`
	// Workers is the number of concurrent encoders used by scan
	Workers int `yaml:"workers"`
	// DB is the path to the catalog database, empty disables it
	DB string `yaml:"db"`
	// MaxWidth and MaxHeight limit the size of encoded images, zero means
	// the format maximum
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Mask:    mask.DefaultString,
		Workers: defaultWorkers,
	}
}

// LoadConfig loads configuration from the specified path. Settings missing
// from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if _, err := mask.Parse(c.Mask); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid config: workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxWidth < 0 || c.MaxHeight < 0 {
		return fmt.Errorf("invalid config: negative maximum size")
	}
	return nil
}

// ParsedMask returns the configured mask
func (c *Config) ParsedMask() (mask.Mask, error) {
	return mask.Parse(c.Mask)
}
