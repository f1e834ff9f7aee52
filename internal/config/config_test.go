package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(&RawConfig{})
	require.NoError(t, err)

	assert.Equal(t, ModeManual, cfg.Service.Mode)
	assert.Equal(t, DefaultManualName, cfg.Service.Name)
	assert.Equal(t, DefaultServiceVersion, cfg.Service.Version)
	assert.Equal(t, "0.0.0.0:8001", cfg.Server.Addr())

	assert.True(t, cfg.Export.OTEL.Enabled)
	assert.Equal(t, "localhost:4318", cfg.Export.OTEL.Endpoint())
	assert.True(t, cfg.Export.OTEL.Insecure)
	assert.Equal(t, DefaultOTELPushInterval, cfg.Export.OTEL.Interval)
	assert.False(t, cfg.Export.OTEL.Retry.Enabled)

	assert.False(t, cfg.Export.Prometheus.Enabled)
	assert.Equal(t, 9464, cfg.Export.Prometheus.Port)

	assert.Equal(t, 500*time.Millisecond, cfg.Endpoints.Slow.Min)
	assert.Equal(t, 2*time.Second, cfg.Endpoints.Slow.Max)
	assert.Equal(t, 10, cfg.Endpoints.Compute.DefaultN)

	assert.Equal(t, "info", cfg.Settings.Log.Level)
	assert.Nil(t, cfg.Settings.Log.File)
	assert.True(t, cfg.Settings.Monitor.Enabled)
}

func TestResolve_NilRaw(t *testing.T) {
	cfg, err := Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, ModeManual, cfg.Service.Mode)
}

func TestResolve_AutoModeDefaults(t *testing.T) {
	raw := &RawConfig{}
	raw.SetMode("auto")

	cfg, err := Resolve(raw)
	require.NoError(t, err)

	assert.Equal(t, ModeAuto, cfg.Service.Mode)
	assert.Equal(t, DefaultAutoName, cfg.Service.Name)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestParseBytes_FullConfig(t *testing.T) {
	data := []byte(`
service:
  name: demo
  version: "2.0"
  mode: auto
server:
  host: 127.0.0.1
  port: 9000
endpoints:
  slow:
    min: 10ms
    max: 20ms
  compute:
    default_n: 5
export:
  otel:
    host: collector
    port: 14318
    interval: 5s
    headers:
      x-token: abc
    resource:
      deployment.environment: test
    retry:
      enabled: true
      max_elapsed: 10s
  prometheus:
    enabled: true
    port: 9999
settings:
  log:
    level: debug
    format: json
  monitor:
    enabled: false
`)

	raw, err := ParseBytes(data)
	require.NoError(t, err)

	cfg, err := Resolve(raw)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Service.Name)
	assert.Equal(t, "2.0", cfg.Service.Version)
	assert.Equal(t, ModeAuto, cfg.Service.Mode)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, 10*time.Millisecond, cfg.Endpoints.Slow.Min)
	assert.Equal(t, 20*time.Millisecond, cfg.Endpoints.Slow.Max)
	assert.Equal(t, 5, cfg.Endpoints.Compute.DefaultN)

	assert.Equal(t, "collector:14318", cfg.Export.OTEL.Endpoint())
	assert.Equal(t, 5*time.Second, cfg.Export.OTEL.Interval)
	assert.Equal(t, "abc", cfg.Export.OTEL.Headers["x-token"])
	assert.Equal(t, "test", cfg.Export.OTEL.Resource["deployment.environment"])
	assert.True(t, cfg.Export.OTEL.Retry.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Export.OTEL.Retry.MaxElapsed)
	assert.Equal(t, DefaultRetryInitialInterval, cfg.Export.OTEL.Retry.InitialInterval)

	assert.True(t, cfg.Export.Prometheus.Enabled)
	assert.Equal(t, 9999, cfg.Export.Prometheus.Port)
	assert.Equal(t, "/metrics", cfg.Export.Prometheus.Path)

	assert.Equal(t, "debug", cfg.Settings.Log.Level)
	assert.Equal(t, "json", cfg.Settings.Log.Format)
	assert.False(t, cfg.Settings.Monitor.Enabled)
}

func TestParseBytes_OTELDisabled(t *testing.T) {
	raw, err := ParseBytes([]byte("export:\n  otel:\n    enabled: false\n"))
	require.NoError(t, err)

	cfg, err := Resolve(raw)
	require.NoError(t, err)
	assert.False(t, cfg.Export.OTEL.Enabled)
	assert.Equal(t, DefaultOTELHost, cfg.Export.OTEL.Host)
}

func TestParseBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown mode", "service:\n  mode: hybrid\n"},
		{"empty name", "service:\n  name: \"\"\n"},
		{"port out of range", "server:\n  port: 70000\n"},
		{"slow max below min", "endpoints:\n  slow:\n    min: 2s\n    max: 1s\n"},
		{"negative slow min", "endpoints:\n  slow:\n    min: -1s\n"},
		{"log file without path", "settings:\n  log:\n    file:\n      max_size_mb: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseBytes_MalformedYAML(t *testing.T) {
	_, err := ParseBytes([]byte("service: [unterminated"))
	require.Error(t, err)
}

func TestResolve_SemanticValidation(t *testing.T) {
	tests := []struct {
		name string
		raw  func() *RawConfig
	}{
		{"bad log level", func() *RawConfig {
			r := &RawConfig{}
			r.Settings.Log.Level = "verbose"
			return r
		}},
		{"bad log format", func() *RawConfig {
			r := &RawConfig{}
			r.Settings.Log.Format = "xml"
			return r
		}},
		{"slow max below default min", func() *RawConfig {
			r := &RawConfig{}
			d := 100 * time.Millisecond
			r.Endpoints.Slow.Max = &d
			return r
		}},
		{"prometheus path", func() *RawConfig {
			r := &RawConfig{}
			r.Export.Prometheus = &RawPrometheusExportConfig{Enabled: true, Path: "metrics"}
			return r
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.raw())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8123\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Server.Port)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultManualPort, cfg.Server.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSetOTLPEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		host     string
		port     int
		insecure bool
	}{
		{"collector:4318", "collector", 4318, true},
		{"collector", "collector", DefaultOTELPortHTTP, true},
		{"http://otel-collector:14318", "otel-collector", 14318, true},
		{"https://otel.example.com", "otel.example.com", DefaultOTELPortHTTP, false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			raw := &RawConfig{}
			require.NoError(t, raw.SetOTLPEndpoint(tt.endpoint))

			cfg, err := Resolve(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.host, cfg.Export.OTEL.Host)
			assert.Equal(t, tt.port, cfg.Export.OTEL.Port)
			assert.Equal(t, tt.insecure, cfg.Export.OTEL.Insecure)
		})
	}
}

func TestSetOTLPEndpoint_Invalid(t *testing.T) {
	raw := &RawConfig{}
	assert.ErrorIs(t, raw.SetOTLPEndpoint("grpc://collector:4317"), ErrInvalid)
	assert.ErrorIs(t, raw.SetOTLPEndpoint("collector:http"), ErrInvalid)
}

func TestLogConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", LogConfig{Level: "debug"}.SlogLevel().String())
	assert.Equal(t, "WARN", LogConfig{Level: "warn"}.SlogLevel().String())
	assert.Equal(t, "ERROR", LogConfig{Level: "error"}.SlogLevel().String())
	assert.Equal(t, "INFO", LogConfig{Level: "info"}.SlogLevel().String())
}

func TestParse_ShippedConfigs(t *testing.T) {
	for _, name := range []string{"manual.yaml", "auto.yaml"} {
		t.Run(name, func(t *testing.T) {
			raw, err := Parse(filepath.Join("..", "..", "configs", name))
			require.NoError(t, err)

			cfg, err := Resolve(raw)
			require.NoError(t, err)
			assert.Equal(t, Mode(strings.TrimSuffix(name, ".yaml")), cfg.Service.Mode)
		})
	}
}
