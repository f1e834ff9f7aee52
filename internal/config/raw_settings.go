package config

import "time"

// RawSettingsConfig holds general application settings
type RawSettingsConfig struct {
	Log     RawLogConfig     `yaml:"log"`
	Monitor RawMonitorConfig `yaml:"monitor"`
}

// RawLogConfig controls console logging
type RawLogConfig struct {
	Level  string            `yaml:"level"`
	Format string            `yaml:"format"`
	File   *RawLogFileConfig `yaml:"file,omitempty"`
}

// RawLogFileConfig enables rotating file output
type RawLogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// RawMonitorConfig controls the resource monitor
type RawMonitorConfig struct {
	Enabled  *bool         `yaml:"enabled,omitempty"`
	Interval time.Duration `yaml:"interval"`
}
