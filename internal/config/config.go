package config

import (
	"net"
	"strconv"
	"time"
)

const (
	// Service defaults
	DefaultServiceVersion   = "1.0-BETA"
	DefaultManualName       = "cf-o11y"
	DefaultAutoName         = "cf-o11y-instrumentor"
	DefaultHost             = "0.0.0.0"
	DefaultManualPort       = 8001
	DefaultAutoPort         = 8000
	DefaultSlowMin          = 500 * time.Millisecond
	DefaultSlowMax          = 2 * time.Second
	DefaultComputeN         = 10
	DefaultMonitorInterval  = 15 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultLogFileMaxSizeMB = 100
)

// Mode selects how routes are instrumented.
type Mode string

const (
	// ModeManual wraps each route with explicit span, counter, histogram and log calls.
	ModeManual Mode = "manual"

	// ModeAuto relies on framework middleware for spans and HTTP server metrics.
	ModeAuto Mode = "auto"
)

// Config holds the complete resolved application configuration.
type Config struct {
	Service   ServiceConfig
	Server    ServerConfig
	Endpoints EndpointsConfig
	Export    ExportConfig
	Settings  SettingsConfig
}

// ServiceConfig identifies the service on every emitted signal.
type ServiceConfig struct {
	Name    string `validate:"required"`
	Version string `validate:"required"`
	Mode    Mode   `validate:"oneof=auto manual"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Host string
	Port int `validate:"min=1,max=65535"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// EndpointsConfig holds per-endpoint tunables.
type EndpointsConfig struct {
	Slow    SlowConfig
	Compute ComputeConfig
}

// SlowConfig bounds the uniformly random delay of /slow to [Min, Max).
type SlowConfig struct {
	Min time.Duration `validate:"gt=0"`
	Max time.Duration `validate:"gtfield=Min"`
}

// ComputeConfig holds /compute defaults.
type ComputeConfig struct {
	DefaultN int `validate:"gte=0"`
}
