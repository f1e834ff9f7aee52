package app

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/neox5/o11ybox/internal/config"
	"github.com/neox5/o11ybox/internal/telemetry"
	"github.com/neox5/o11ybox/internal/telemetry/telemetrytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.Resolve(&config.RawConfig{})
	require.NoError(t, err)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Export.OTEL.Enabled = false
	cfg.Settings.Monitor.Enabled = false
	return cfg
}

func inMemory(logs *telemetrytest.LogRecorder) []telemetry.Option {
	return []telemetry.Option{
		telemetry.WithSpanExporter(tracetest.NewInMemoryExporter()),
		telemetry.WithMetricReader(sdkmetric.NewManualReader()),
		telemetry.WithLogExporter(logs),
		telemetry.WithConsoleWriter(&telemetrytest.SyncBuffer{}),
	}
}

func TestNew_Components(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Prometheus.Enabled = true
	cfg.Export.Prometheus.Port = 1
	cfg.Settings.Monitor.Enabled = true

	a, err := New(context.Background(), cfg, inMemory(&telemetrytest.LogRecorder{})...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Telemetry.Shutdown(context.Background()) })

	assert.NotNil(t, a.API)
	assert.NotNil(t, a.Server)
	assert.NotNil(t, a.Prometheus)
	assert.NotNil(t, a.Monitor)
}

func TestNew_OptionalComponentsDisabled(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), inMemory(&telemetrytest.LogRecorder{})...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Telemetry.Shutdown(context.Background()) })

	assert.Nil(t, a.Prometheus)
	assert.Nil(t, a.Monitor)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Settings.Monitor.Enabled = true
	cfg.Settings.Monitor.Interval = time.Hour

	logs := &telemetrytest.LogRecorder{}
	a, err := New(context.Background(), cfg, inMemory(logs)...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(logs.WithBody("starting server")) > 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}

	assert.NotEmpty(t, logs.WithBody("starting the server"))
	assert.NotEmpty(t, logs.WithBody("flushing telemetry"))
}

func TestRun_ServerFailureStopsEverything(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig(t)
	cfg.Settings.Monitor.Enabled = true
	cfg.Settings.Monitor.Interval = time.Hour
	cfg.Server.Port = ln.Addr().(*net.TCPAddr).Port

	a, err := New(context.Background(), cfg, inMemory(&telemetrytest.LogRecorder{})...)
	require.NoError(t, err)

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api server")
}
