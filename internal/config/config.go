// Package config provides configuration management for AssetWatch.
//
// Config file locations (priority order):
//  1. $ASSETWATCH_CONFIG
//  2. ./assetwatch.yaml
//  3. ~/.config/assetwatch/config.yaml
//  4. /etc/assetwatch/config.yaml
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	minProbeTimeout = 1 * time.Second
	maxProbeTimeout = 10 * time.Second
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
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
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "./assetwatch.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Scan.ProbeTimeout == 0 {
		c.Scan.ProbeTimeout = Duration(2 * time.Second)
	}
	if c.Scan.MaxConcurrent == 0 {
		c.Scan.MaxConcurrent = 32
	}
	if c.Overdue.Interval == 0 {
		c.Overdue.Interval = Duration(10 * time.Minute)
	}

	// Probe timeout is clamped rather than rejected; values outside
	// the window are almost always typos in the unit suffix.
	if c.Scan.ProbeTimeout.Duration() < minProbeTimeout {
		c.Scan.ProbeTimeout = Duration(minProbeTimeout)
	}
	if c.Scan.ProbeTimeout.Duration() > maxProbeTimeout {
		c.Scan.ProbeTimeout = Duration(maxProbeTimeout)
	}
}

// Validate rejects settings that cannot work at runtime.
func (c *Config) Validate() error {
	if c.Scan.Subnet != "" {
		if _, _, err := net.ParseCIDR(c.Scan.Subnet); err != nil {
			return fmt.Errorf("invalid scan subnet %q: %w", c.Scan.Subnet, err)
		}
	}
	if c.Scan.MaxConcurrent < 1 {
		return fmt.Errorf("scan max_concurrent must be positive, got %d", c.Scan.MaxConcurrent)
	}
	if c.Scan.Interval.Duration() != 0 && c.Scan.Subnet == "" {
		return fmt.Errorf("scan interval set but no subnet configured")
	}
	if c.Inventory.Watch && c.Inventory.Path == "" {
		return fmt.Errorf("inventory watch enabled but no path configured")
	}
	return nil
}
