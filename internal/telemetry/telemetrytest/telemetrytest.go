// Package telemetrytest builds a Telemetry whose signals are captured in
// memory, for use in tests of packages that emit spans, metrics and logs.
package telemetrytest

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/neox5/o11ybox/internal/config"
	"github.com/neox5/o11ybox/internal/telemetry"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Harness bundles a Telemetry with the in-memory sinks behind it.
type Harness struct {
	Config    *config.Config
	Telemetry *telemetry.Telemetry
	Spans     *tracetest.InMemoryExporter
	Reader    *sdkmetric.ManualReader
	Logs      *LogRecorder
	Console   *SyncBuffer
}

// New returns a Harness for the default configuration with OTLP export
// disabled. mutate may adjust the resolved config before telemetry is built.
// Providers are shut down when the test ends.
func New(t testing.TB, mutate ...func(*config.Config)) *Harness {
	t.Helper()

	cfg, err := config.Resolve(&config.RawConfig{})
	require.NoError(t, err)
	cfg.Export.OTEL.Enabled = false
	cfg.Settings.Monitor.Enabled = false
	for _, m := range mutate {
		m(cfg)
	}

	h := &Harness{
		Config:  cfg,
		Spans:   tracetest.NewInMemoryExporter(),
		Reader:  sdkmetric.NewManualReader(),
		Logs:    &LogRecorder{},
		Console: &SyncBuffer{},
	}

	h.Telemetry, err = telemetry.New(context.Background(), cfg,
		telemetry.WithSpanExporter(h.Spans),
		telemetry.WithMetricReader(h.Reader),
		telemetry.WithLogExporter(h.Logs),
		telemetry.WithConsoleWriter(h.Console),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = h.Telemetry.Shutdown(context.Background())
	})

	return h
}

// Collect reads the current metric state.
func (h *Harness) Collect(t testing.TB) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, h.Reader.Collect(context.Background(), &rm))
	return rm
}

// FindMetric returns the metric named name, if it was recorded.
func FindMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

// CounterValue sums all data points of an int64 counter. It returns -1 when
// the counter is missing.
func CounterValue(rm metricdata.ResourceMetrics, name string) int64 {
	m, ok := FindMetric(rm, name)
	if !ok {
		return -1
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		return -1
	}

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// HistogramCount sums the observation counts of a float64 histogram. It
// returns 0 when the histogram is missing.
func HistogramCount(rm metricdata.ResourceMetrics, name string) uint64 {
	m, ok := FindMetric(rm, name)
	if !ok {
		return 0
	}
	hist, ok := m.Data.(metricdata.Histogram[float64])
	if !ok {
		return 0
	}

	var total uint64
	for _, dp := range hist.DataPoints {
		total += dp.Count
	}
	return total
}

// LogRecorder is an sdklog.Exporter keeping every exported record.
type LogRecorder struct {
	mu      sync.Mutex
	records []sdklog.Record
}

// Export implements sdklog.Exporter.
func (r *LogRecorder) Export(_ context.Context, records []sdklog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		r.records = append(r.records, rec.Clone())
	}
	return nil
}

// Shutdown implements sdklog.Exporter. Recorded logs are kept.
func (r *LogRecorder) Shutdown(context.Context) error { return nil }

// ForceFlush implements sdklog.Exporter.
func (r *LogRecorder) ForceFlush(context.Context) error { return nil }

// Records returns a copy of the recorded logs.
func (r *LogRecorder) Records() []sdklog.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sdklog.Record, len(r.records))
	copy(out, r.records)
	return out
}

// WithBody returns the recorded logs whose body equals body.
func (r *LogRecorder) WithBody(body string) []sdklog.Record {
	var out []sdklog.Record
	for _, rec := range r.Records() {
		if rec.Body().Kind() == log.KindString && rec.Body().AsString() == body {
			out = append(out, rec)
		}
	}
	return out
}

// SyncBuffer is a bytes.Buffer safe for concurrent writers.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
