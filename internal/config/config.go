// Package config loads cfx configuration from .cfx/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the cfx configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the cfx configuration directory.
const ConfigDirName = ".cfx"

// Config holds all cfx configuration.
type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	Outputs OutputsConfig `yaml:"outputs"`
	Index   IndexConfig   `yaml:"index"`
}

// ScanConfig holds configuration for source scanning.
type ScanConfig struct {
	// Exclude lists glob patterns for files and directories to skip.
	Exclude []string `yaml:"exclude"`
	// Workers caps concurrent per-file extraction; 0 means one per CPU.
	Workers int `yaml:"workers"`
}

// OutputsConfig holds the fact output file paths.
type OutputsConfig struct {
	Declarations string `yaml:"declarations"`
	Enums        string `yaml:"enums"`
	Relations    string `yaml:"relations"`
}

// IndexConfig holds configuration for the SQLite fact index.
type IndexConfig struct {
	// Enabled mirrors every emitted fact into .cfx/facts.db.
	Enabled bool `yaml:"enabled"`
}

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .cfx/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path. Missing files yield
// defaults; a present file is merged over the defaults and validated.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Outputs.Declarations == "" || c.Outputs.Enums == "" || c.Outputs.Relations == "" {
		return fmt.Errorf("%w: every output path must be set", ErrInvalidConfig)
	}
	if c.Scan.Workers < 0 {
		return fmt.Errorf("%w: scan.workers must not be negative", ErrInvalidConfig)
	}
	return nil
}

// FindConfigDir locates the nearest .cfx directory at or above startDir.
func FindConfigDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}

	for {
		candidate := filepath.Join(dir, ConfigDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s directory found above %s", ConfigDirName, startDir)
		}
		dir = parent
	}
}
