package telemetry

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
)

// createPrometheusRegistry creates a dedicated registry holding the Go and
// process collectors plus an OTEL reader that mirrors the service meters.
func createPrometheusRegistry() (*prometheus.Registry, *otelprom.Exporter, error) {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	reader, err := otelprom.New(otelprom.WithRegisterer(promRegistry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus reader: %w", err)
	}

	return promRegistry, reader, nil
}

// PrometheusHandler returns the scrape handler for the pull view, or nil when
// Prometheus export is disabled.
func (t *Telemetry) PrometheusHandler() http.Handler {
	if t.promRegistry == nil {
		return nil
	}

	handler := promhttp.HandlerFor(
		t.promRegistry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	)

	// promhttp_metric_handler_requests_total / _in_flight
	handler = promhttp.InstrumentMetricHandler(t.promRegistry, handler)

	return scrapeLogging(t.Logger, handler)
}

// scrapeLogging logs scrape requests when debug logging is enabled.
func scrapeLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.DebugContext(r.Context(), "prometheus scrape", "remote", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
