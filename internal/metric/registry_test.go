package metric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeterProvider(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func TestRouteDescriptors(t *testing.T) {
	requests, duration := RouteDescriptors("compute")

	assert.Equal(t, "compute_requests_total", requests.Name)
	assert.Equal(t, "1", requests.Unit)
	assert.Equal(t, "Total number of requests to the compute endpoint", requests.Description)

	assert.Equal(t, "compute_request_duration_seconds", duration.Name)
	assert.Equal(t, "s", duration.Unit)
}

func TestNew_CreatesInstrumentsPerRoute(t *testing.T) {
	mp, reader := newTestMeterProvider(t)

	reg, err := New(mp.Meter("test"), "slow", "error")
	require.NoError(t, err)
	assert.Len(t, reg.Metrics(), 4)
	assert.Equal(t, []string{
		"slow_requests_total",
		"slow_request_duration_seconds",
		"error_requests_total",
		"error_request_duration_seconds",
	}, reg.Names())

	slow, ok := reg.Route("slow")
	require.True(t, ok)
	slow.Requests.Add(context.Background(), 1)
	slow.Duration.Record(context.Background(), 0.75)

	_, ok = reg.Route("compute")
	assert.False(t, ok)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	sum, ok := byName["slow_requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
	assert.True(t, sum.IsMonotonic)

	hist, ok := byName["slow_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 0.75, hist.DataPoints[0].Sum, 1e-9)
	assert.Contains(t, hist.DataPoints[0].Bounds, 0.5)
}

func TestNew_DuplicateRoute(t *testing.T) {
	mp, _ := newTestMeterProvider(t)

	_, err := New(mp.Meter("test"), "slow", "slow")
	assert.ErrorIs(t, err, ErrDuplicateRoute)
}
