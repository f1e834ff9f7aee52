package config

import (
	"fmt"
	"time"
)

const (
	// OTLP defaults
	DefaultOTELHost         = "localhost"
	DefaultOTELPortHTTP     = 4318
	DefaultOTELPushInterval = 60 * time.Second
	DefaultOTELTimeout      = 10 * time.Second
	DefaultTracesPath       = "/v1/traces"
	DefaultMetricsPath      = "/v1/metrics"
	DefaultLogsPath         = "/v1/logs"

	// Retry defaults, applied only when retry is enabled
	DefaultRetryInitialInterval = 1 * time.Second
	DefaultRetryMaxInterval     = 5 * time.Second
	DefaultRetryMaxElapsed      = 30 * time.Second

	// Prometheus defaults
	DefaultPrometheusPort = 9464
	DefaultPrometheusPath = "/metrics"
)

// ExportConfig defines where telemetry goes.
type ExportConfig struct {
	OTEL       OTELExportConfig
	Prometheus PrometheusExportConfig
}

// OTELExportConfig defines OTLP/HTTP push settings shared by traces, metrics and logs.
type OTELExportConfig struct {
	Enabled  bool
	Host     string `validate:"required"`
	Port     int    `validate:"min=1,max=65535"`
	Insecure bool
	Timeout  time.Duration `validate:"gt=0"`
	Interval time.Duration `validate:"gt=0"`
	Resource map[string]string
	Headers  map[string]string
	Retry    RetryConfig
}

// RetryConfig bounds export retries. Disabled means a failed batch is dropped.
type RetryConfig struct {
	Enabled         bool
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

// Endpoint returns the host:port of the collector.
func (c OTELExportConfig) Endpoint() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PrometheusExportConfig defines the optional Prometheus pull endpoint.
type PrometheusExportConfig struct {
	Enabled bool
	Port    int    `validate:"min=1,max=65535"`
	Path    string `validate:"startswith=/"`
}

func resolveOTELExport(raw *RawOTELExportConfig) OTELExportConfig {
	c := OTELExportConfig{
		Enabled:  true,
		Host:     DefaultOTELHost,
		Port:     DefaultOTELPortHTTP,
		Insecure: true,
		Timeout:  DefaultOTELTimeout,
		Interval: DefaultOTELPushInterval,
		Resource: map[string]string{},
		Headers:  map[string]string{},
	}
	if raw == nil {
		return c
	}

	if raw.Enabled != nil {
		c.Enabled = *raw.Enabled
	}
	if raw.Host != "" {
		c.Host = raw.Host
	}
	if raw.Port != 0 {
		c.Port = raw.Port
	}
	if raw.Insecure != nil {
		c.Insecure = *raw.Insecure
	}
	if raw.Timeout != 0 {
		c.Timeout = raw.Timeout
	}
	if raw.Interval != 0 {
		c.Interval = raw.Interval
	}
	for k, v := range raw.Resource {
		c.Resource[k] = v
	}
	for k, v := range raw.Headers {
		c.Headers[k] = v
	}

	if raw.Retry != nil && raw.Retry.Enabled {
		c.Retry = RetryConfig{
			Enabled:         true,
			InitialInterval: DefaultRetryInitialInterval,
			MaxInterval:     DefaultRetryMaxInterval,
			MaxElapsed:      DefaultRetryMaxElapsed,
		}
		if raw.Retry.InitialInterval != 0 {
			c.Retry.InitialInterval = raw.Retry.InitialInterval
		}
		if raw.Retry.MaxInterval != 0 {
			c.Retry.MaxInterval = raw.Retry.MaxInterval
		}
		if raw.Retry.MaxElapsed != 0 {
			c.Retry.MaxElapsed = raw.Retry.MaxElapsed
		}
	}

	return c
}

func resolvePrometheusExport(raw *RawPrometheusExportConfig) PrometheusExportConfig {
	c := PrometheusExportConfig{
		Port: DefaultPrometheusPort,
		Path: DefaultPrometheusPath,
	}
	if raw == nil {
		return c
	}

	c.Enabled = raw.Enabled
	if raw.Port != 0 {
		c.Port = raw.Port
	}
	if raw.Path != "" {
		c.Path = raw.Path
	}
	return c
}
