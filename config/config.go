// Package config loads the tastelist configuration file.
//
// Config file locations (priority order):
//  1. $TASTELIST_CONFIG
//  2. ./tastelist.yaml
//  3. ~/.config/tastelist/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	// Database is the badger data directory.
	Database string `yaml:"database"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Timezone is an IANA zone name used when stamping user activity.
	// Empty means UTC.
	Timezone string `yaml:"timezone"`
	// PoolSize bounds the verifier's concurrent board scans.
	// Zero means half the CPUs.
	PoolSize int `yaml:"pool_size"`
}

// Load finds and loads the config file, or returns defaults if none found.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// FindConfigPath returns the first config file that exists, or "".
func FindConfigPath() string {
	if path := os.Getenv("TASTELIST_CONFIG"); path != "" {
		return path
	}

	candidates := []string{"./tastelist.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "tastelist", "config.yaml"))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// DefaultConfig returns the defaults used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Database: "./tastelist.db",
		LogLevel: "info",
	}
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = "./tastelist.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
