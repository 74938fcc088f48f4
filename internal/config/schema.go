package config

import (
	"time"

	"assetwatch/internal/mail"
)

// Config is the root configuration structure
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	HTTP      HTTPConfig      `yaml:"http"`
	Scan      ScanConfig      `yaml:"scan"`
	Overdue   OverdueConfig   `yaml:"overdue"`
	SMTP      mail.SMTPConfig `yaml:"smtp"`
	Inventory InventoryConfig `yaml:"inventory"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// HTTPConfig holds the API listener settings
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// ScanConfig controls discovery scans.
type ScanConfig struct {
	// Subnet is the CIDR block scheduled scans cover. Empty disables
	// the scheduled scan; on-demand scans name their own subnet.
	Subnet        string   `yaml:"subnet"`
	ProbeTimeout  Duration `yaml:"probe_timeout"`
	MaxConcurrent int      `yaml:"max_concurrent"`
	Interval      Duration `yaml:"interval"`
	UseNmap       bool     `yaml:"use_nmap"`
}

// OverdueConfig controls the overdue-assignment job.
type OverdueConfig struct {
	Interval Duration `yaml:"interval"`
}

// InventoryConfig points at an optional seed file that is imported at
// startup and re-imported when it changes on disk.
type InventoryConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
