// Package instrument wraps route bodies with a span, a request counter, a
// duration histogram and a log record.
package instrument

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neox5/o11ybox/internal/metric"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrUnknownRoute is returned by Wrapper.Route for a route without instruments.
var ErrUnknownRoute = errors.New("no instruments registered for route")

// Body is the work of a route. It returns the message logged on success. On
// failure the message, if any, is logged at ERROR alongside the error.
type Body func(ctx context.Context, span trace.Span) (msg string, err error)

// Wrapper hands out instrumented routes sharing one tracer, registry and logger.
type Wrapper struct {
	tracer   trace.Tracer
	registry *metric.Registry
	logger   *slog.Logger
}

// New creates a Wrapper.
func New(tracer trace.Tracer, registry *metric.Registry, logger *slog.Logger) *Wrapper {
	return &Wrapper{
		tracer:   tracer,
		registry: registry,
		logger:   logger,
	}
}

// Route binds a route name to its instruments and span name.
func (w *Wrapper) Route(name, spanName string) (*Route, error) {
	inst, ok := w.registry.Route(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}

	return &Route{
		name:     name,
		spanName: spanName,
		tracer:   w.tracer,
		inst:     inst,
		logger:   w.logger,
	}, nil
}

// Route is one instrumented route.
type Route struct {
	name     string
	spanName string
	tracer   trace.Tracer
	inst     *metric.Instruments
	logger   *slog.Logger
}

// Do runs body inside a span named after the route. The counter is
// incremented before body runs; the duration, the log record and the span
// status are recorded on every exit path. A panic in body is re-raised once
// the bookkeeping is done.
func (r *Route) Do(ctx context.Context, body Body) (err error) {
	ctx, span := r.tracer.Start(ctx, r.spanName)
	r.inst.Requests.Add(ctx, 1)
	start := time.Now()

	var msg string
	defer func() {
		r.inst.Duration.Record(ctx, time.Since(start).Seconds())

		if p := recover(); p != nil {
			perr := fmt.Errorf("panic: %v", p)
			r.logger.ErrorContext(ctx, r.spanName+" panicked",
				"route", r.name,
				"error", perr)
			span.RecordError(perr, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, perr.Error())
			span.End()
			panic(p)
		}

		if err != nil {
			if msg == "" {
				msg = r.name + " request failed"
			}
			r.logger.ErrorContext(ctx, msg,
				"route", r.name,
				"error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			r.logger.InfoContext(ctx, msg)
		}
		span.End()
	}()

	msg, err = body(ctx, span)
	return err
}
