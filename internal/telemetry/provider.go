package telemetry

import (
	"context"
	"fmt"

	"github.com/neox5/o11ybox/internal/config"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// createTracerProvider creates a tracer provider that batches spans to the
// collector's /v1/traces endpoint. An injected exporter replaces the OTLP
// exporter and is fed synchronously.
func createTracerProvider(
	ctx context.Context,
	cfg config.OTELExportConfig,
	res *resource.Resource,
	injected sdktrace.SpanExporter,
) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	switch {
	case injected != nil:
		opts = append(opts, sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(injected)))

	case cfg.Enabled:
		exporterOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.Endpoint()),
			otlptracehttp.WithURLPath(config.DefaultTracesPath),
			otlptracehttp.WithTimeout(cfg.Timeout),
			otlptracehttp.WithRetry(otlptracehttp.RetryConfig{
				Enabled:         cfg.Retry.Enabled,
				InitialInterval: cfg.Retry.InitialInterval,
				MaxInterval:     cfg.Retry.MaxInterval,
				MaxElapsedTime:  cfg.Retry.MaxElapsed,
			}),
		}
		if cfg.Insecure {
			exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			exporterOpts = append(exporterOpts, otlptracehttp.WithHeaders(cfg.Headers))
		}

		exporter, err := otlptracehttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter)))
	}

	return sdktrace.NewTracerProvider(opts...), nil
}

// createMeterProvider creates a meter provider with a periodic OTLP push
// reader plus any additional readers (Prometheus pull, test readers).
func createMeterProvider(
	ctx context.Context,
	cfg config.OTELExportConfig,
	res *resource.Resource,
	injected []sdkmetric.Reader,
	extra ...sdkmetric.Reader,
) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
	}

	switch {
	case len(injected) > 0:
		for _, r := range injected {
			opts = append(opts, sdkmetric.WithReader(r))
		}

	case cfg.Enabled:
		exporterOpts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Endpoint()),
			otlpmetrichttp.WithURLPath(config.DefaultMetricsPath),
			otlpmetrichttp.WithTimeout(cfg.Timeout),
			otlpmetrichttp.WithRetry(otlpmetrichttp.RetryConfig{
				Enabled:         cfg.Retry.Enabled,
				InitialInterval: cfg.Retry.InitialInterval,
				MaxInterval:     cfg.Retry.MaxInterval,
				MaxElapsedTime:  cfg.Retry.MaxElapsed,
			}),
		}
		if cfg.Insecure {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}

		exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}

		// Push on a timer, independent of request activity
		reader := sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(cfg.Interval),
		)
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	for _, r := range extra {
		opts = append(opts, sdkmetric.WithReader(r))
	}

	return sdkmetric.NewMeterProvider(opts...), nil
}

// createLoggerProvider creates a logger provider that batches log records to
// the collector's /v1/logs endpoint.
func createLoggerProvider(
	ctx context.Context,
	cfg config.OTELExportConfig,
	res *resource.Resource,
	injected sdklog.Exporter,
) (*sdklog.LoggerProvider, error) {
	opts := []sdklog.LoggerProviderOption{
		sdklog.WithResource(res),
	}

	switch {
	case injected != nil:
		opts = append(opts, sdklog.WithProcessor(sdklog.NewSimpleProcessor(injected)))

	case cfg.Enabled:
		exporterOpts := []otlploghttp.Option{
			otlploghttp.WithEndpoint(cfg.Endpoint()),
			otlploghttp.WithURLPath(config.DefaultLogsPath),
			otlploghttp.WithTimeout(cfg.Timeout),
			otlploghttp.WithRetry(otlploghttp.RetryConfig{
				Enabled:         cfg.Retry.Enabled,
				InitialInterval: cfg.Retry.InitialInterval,
				MaxInterval:     cfg.Retry.MaxInterval,
				MaxElapsedTime:  cfg.Retry.MaxElapsed,
			}),
		}
		if cfg.Insecure {
			exporterOpts = append(exporterOpts, otlploghttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			exporterOpts = append(exporterOpts, otlploghttp.WithHeaders(cfg.Headers))
		}

		exporter, err := otlploghttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		opts = append(opts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)))
	}

	return sdklog.NewLoggerProvider(opts...), nil
}
