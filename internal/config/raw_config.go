package config

import "time"

// RawConfig represents unparsed YAML structure
type RawConfig struct {
	Service   RawServiceConfig   `yaml:"service"`
	Server    RawServerConfig    `yaml:"server"`
	Endpoints RawEndpointsConfig `yaml:"endpoints"`
	Export    RawExportConfig    `yaml:"export"`
	Settings  RawSettingsConfig  `yaml:"settings"`
}

// RawServiceConfig identifies the running service
type RawServiceConfig struct {
	Name    *string `yaml:"name,omitempty"`
	Version *string `yaml:"version,omitempty"`
	Mode    *string `yaml:"mode,omitempty"`
}

// RawServerConfig defines the HTTP listener
type RawServerConfig struct {
	Host *string `yaml:"host,omitempty"`
	Port *int    `yaml:"port,omitempty"`
}

// RawEndpointsConfig holds per-endpoint tunables
type RawEndpointsConfig struct {
	Slow    RawSlowConfig    `yaml:"slow"`
	Compute RawComputeConfig `yaml:"compute"`
}

// RawSlowConfig bounds the artificial delay of /slow
type RawSlowConfig struct {
	Min *time.Duration `yaml:"min,omitempty"`
	Max *time.Duration `yaml:"max,omitempty"`
}

// RawComputeConfig holds /compute defaults
type RawComputeConfig struct {
	DefaultN *int `yaml:"default_n,omitempty"`
}
