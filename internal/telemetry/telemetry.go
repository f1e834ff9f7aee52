package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/neox5/o11ybox/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ScopeName is the instrumentation scope of everything the service emits.
const ScopeName = "github.com/neox5/o11ybox"

// ErrNilConfig is returned by New when no configuration is given.
var ErrNilConfig = errors.New("telemetry: nil config")

// Telemetry owns the three signal pipelines of the service. It is built once
// at startup and passed explicitly to whatever needs a tracer, meter or logger.
type Telemetry struct {
	Resource       *resource.Resource
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	Propagator     propagation.TextMapPropagator

	// Logger tees to the console and the OTLP log pipeline.
	Logger *slog.Logger

	promRegistry *prometheus.Registry
	closers      []io.Closer
}

// Option customizes New. Options exist mainly so tests can capture signals
// in memory instead of pushing them to a collector.
type Option func(*options)

type options struct {
	spanExporter  sdktrace.SpanExporter
	metricReaders []sdkmetric.Reader
	logExporter   sdklog.Exporter
	consoleWriter io.Writer
}

// WithSpanExporter replaces the OTLP trace exporter. Spans are exported synchronously.
func WithSpanExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) { o.spanExporter = exp }
}

// WithMetricReader replaces the periodic OTLP reader. May be given more than once.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(o *options) { o.metricReaders = append(o.metricReaders, r) }
}

// WithLogExporter replaces the OTLP log exporter. Records are exported synchronously.
func WithLogExporter(exp sdklog.Exporter) Option {
	return func(o *options) { o.logExporter = exp }
}

// WithConsoleWriter redirects console log output.
func WithConsoleWriter(w io.Writer) Option {
	return func(o *options) { o.consoleWriter = w }
}

// New builds the resource, the tracer, meter and logger providers and the
// service logger. All providers share the same resource.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Telemetry, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	t := &Telemetry{
		Propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}

	level := cfg.Settings.Log.SlogLevel()
	w := o.consoleWriter
	if w == nil {
		var closer io.Closer
		w, closer = newConsoleWriter(cfg.Settings.Log)
		if closer != nil {
			t.closers = append(t.closers, closer)
		}
	}
	console := newConsoleHandler(w, cfg.Settings.Log, level)

	// Export failures must not go back through the OTLP log pipeline.
	consoleLogger := slog.New(console)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		consoleLogger.Error("telemetry export failed", "error", err)
	}))

	var err error
	t.Resource, err = createResource(ctx, cfg.Service.Name, cfg.Service.Version, cfg.Export.OTEL.Resource)
	if err != nil {
		t.abort(ctx)
		return nil, err
	}

	otelCfg := cfg.Export.OTEL

	t.TracerProvider, err = createTracerProvider(ctx, otelCfg, t.Resource, o.spanExporter)
	if err != nil {
		t.abort(ctx)
		return nil, err
	}

	var extra []sdkmetric.Reader
	if cfg.Export.Prometheus.Enabled {
		promRegistry, reader, err := createPrometheusRegistry()
		if err != nil {
			t.abort(ctx)
			return nil, err
		}
		t.promRegistry = promRegistry
		extra = append(extra, reader)
	}

	t.MeterProvider, err = createMeterProvider(ctx, otelCfg, t.Resource, o.metricReaders, extra...)
	if err != nil {
		t.abort(ctx)
		return nil, err
	}

	t.LoggerProvider, err = createLoggerProvider(ctx, otelCfg, t.Resource, o.logExporter)
	if err != nil {
		t.abort(ctx)
		return nil, err
	}

	t.Logger = newLogger(console, t.LoggerProvider, level)

	t.Logger.Debug("telemetry initialized",
		"service", cfg.Service.Name,
		"version", cfg.Service.Version,
		"otlp_enabled", otelCfg.Enabled,
		"otlp_endpoint", otelCfg.Endpoint(),
		"prometheus_enabled", cfg.Export.Prometheus.Enabled,
	)

	return t, nil
}

// abort releases what New built before it failed.
func (t *Telemetry) abort(ctx context.Context) {
	if t.LoggerProvider != nil {
		_ = t.LoggerProvider.Shutdown(ctx)
	}
	if t.MeterProvider != nil {
		_ = t.MeterProvider.Shutdown(ctx)
	}
	if t.TracerProvider != nil {
		_ = t.TracerProvider.Shutdown(ctx)
	}
	for _, c := range t.closers {
		_ = c.Close()
	}
	t.closers = nil
}

// Tracer returns a tracer from the service tracer provider.
func (t *Telemetry) Tracer(name string) trace.Tracer {
	return t.TracerProvider.Tracer(name)
}

// Meter returns a meter from the service meter provider.
func (t *Telemetry) Meter(name string) metric.Meter {
	return t.MeterProvider.Meter(name)
}

// Shutdown flushes pending telemetry and stops all providers. Errors from
// each provider are joined.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if err := t.TracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer provider: %w", err))
	}
	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("meter provider: %w", err))
	}
	if err := t.LoggerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("logger provider: %w", err))
	}
	for _, c := range t.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("log file: %w", err))
		}
	}

	return errors.Join(errs...)
}
