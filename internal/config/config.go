package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Config represents repricer configuration options
type Config struct {
	// ScanDir is the directory searched for pricing files
	ScanDir string `yaml:"scan_dir"`

	// Extensions is the list of file extensions treated as pricing files
	Extensions []string `yaml:"extensions"`

	// LabelField is the row field used to label rows in progress output
	LabelField string `yaml:"label_field"`

	// LockTimeout is the maximum time to wait for a file lock (0 = wait forever)
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		ScanDir:     ".",
		Extensions:  []string{".json", ".yaml", ".yml"},
		LabelField:  "size",
		LockTimeout: 5 * time.Second,
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, return defaults (not an error)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	// Use a temporary struct to handle duration parsing
	type yamlConfig struct {
		ScanDir     string   `yaml:"scan_dir"`
		Extensions  []string `yaml:"extensions"`
		LabelField  string   `yaml:"label_field"`
		LockTimeout string   `yaml:"lock_timeout"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.ScanDir != "" {
		cfg.ScanDir = yamlCfg.ScanDir
	}
	if len(yamlCfg.Extensions) > 0 {
		cfg.Extensions = yamlCfg.Extensions
	}
	if yamlCfg.LabelField != "" {
		cfg.LabelField = yamlCfg.LabelField
	}
	if yamlCfg.LockTimeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.LockTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid lock_timeout format %q: %w", yamlCfg.LockTimeout, err)
		}
		cfg.LockTimeout = timeout
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .repricer/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".repricer", "config.yaml")
	return LoadConfig(configPath)
}

// ApplyEnv overrides configuration values from REPRICER_* environment
// variables. A .env file in the working directory is loaded first when
// present.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()

	if v := os.Getenv("REPRICER_SCAN_DIR"); v != "" {
		c.ScanDir = v
	}
	if v := os.Getenv("REPRICER_LABEL_FIELD"); v != "" {
		c.LabelField = v
	}
	if v := os.Getenv("REPRICER_EXTENSIONS"); v != "" {
		exts := lo.FilterMap(strings.Split(v, ","), func(item string, _ int) (string, bool) {
			trimmed := strings.TrimSpace(item)
			return trimmed, trimmed != ""
		})
		if len(exts) > 0 {
			c.Extensions = exts
		}
	}
	if v := os.Getenv("REPRICER_LOCK_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REPRICER_LOCK_TIMEOUT %q: %w", v, err)
		}
		c.LockTimeout = timeout
	}

	return nil
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(scanDir *string, labelField *string, lockTimeout *time.Duration) {
	if scanDir != nil {
		c.ScanDir = *scanDir
	}
	if labelField != nil {
		c.LabelField = *labelField
	}
	if lockTimeout != nil {
		c.LockTimeout = *lockTimeout
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.ScanDir == "" {
		return fmt.Errorf("scan_dir cannot be empty")
	}

	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions cannot be empty")
	}
	for _, ext := range c.Extensions {
		if strings.TrimSpace(ext) == "" {
			return fmt.Errorf("extensions cannot contain blank entries")
		}
	}

	if c.LabelField == "" {
		return fmt.Errorf("label_field cannot be empty")
	}

	// LockTimeout can be 0 (wait forever) or positive, negative is invalid
	if c.LockTimeout < 0 {
		return fmt.Errorf("lock_timeout must be >= 0, got %v", c.LockTimeout)
	}

	return nil
}
