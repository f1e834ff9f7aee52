package config

import (
	"time"
)

// RawExportConfig defines where telemetry is sent
type RawExportConfig struct {
	OTEL       *RawOTELExportConfig       `yaml:"otel,omitempty"`
	Prometheus *RawPrometheusExportConfig `yaml:"prometheus,omitempty"`
}

// RawOTELExportConfig defines OTLP/HTTP push settings
type RawOTELExportConfig struct {
	Enabled  *bool             `yaml:"enabled,omitempty"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Insecure *bool             `yaml:"insecure,omitempty"`
	Timeout  time.Duration     `yaml:"timeout"`
	Interval time.Duration     `yaml:"interval"`
	Resource map[string]string `yaml:"resource,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	Retry    *RawRetryConfig   `yaml:"retry,omitempty"`
}

// RawRetryConfig defines bounded retry for OTLP exports
type RawRetryConfig struct {
	Enabled         bool          `yaml:"enabled"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
	MaxElapsed      time.Duration `yaml:"max_elapsed"`
}

// RawPrometheusExportConfig defines Prometheus pull endpoint settings
type RawPrometheusExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}
