// Package api serves the demo endpoints. In manual mode each work route runs
// inside an instrument.Route; in auto mode otelgin instruments every route
// except /health.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neox5/o11ybox/internal/config"
	"github.com/neox5/o11ybox/internal/instrument"
	"github.com/neox5/o11ybox/internal/metric"
	"github.com/neox5/o11ybox/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

// Route names, used for metric names in manual mode.
const (
	RouteSlow          = "slow"
	RouteError         = "error"
	RouteCompute       = "compute"
	RouteServerRequest = "server_request"
)

// Routes lists the instrumented routes with their span names.
var Routes = []struct {
	Name     string
	SpanName string
}{
	{RouteSlow, "slow_endpoint_span"},
	{RouteError, "error_endpoint_span"},
	{RouteCompute, "compute_endpoint_span"},
	{RouteServerRequest, "server_request_span"},
}

const healthPath = "/health"

// runner executes a route body.
type runner interface {
	Do(ctx context.Context, body instrument.Body) error
}

// passthrough runs the body against whatever span is already in ctx.
type passthrough struct{}

func (passthrough) Do(ctx context.Context, body instrument.Body) error {
	_, err := body(ctx, trace.SpanFromContext(ctx))
	return err
}

// API holds the route handlers and the gin engine serving them.
type API struct {
	endpoints config.EndpointsConfig
	logger    *slog.Logger
	randFloat func() float64
	runners   map[string]runner
	engine    *gin.Engine
}

// Option customizes New.
type Option func(*API)

// WithRandFloat replaces the source of the /slow delay. f must return values
// in [0, 1) and be safe for concurrent use.
func WithRandFloat(f func() float64) Option {
	return func(a *API) { a.randFloat = f }
}

// New builds the router for cfg.Service.Mode.
func New(cfg *config.Config, tel *telemetry.Telemetry, opts ...Option) (*API, error) {
	a := &API{
		endpoints: cfg.Endpoints,
		logger:    tel.Logger.With("component", "api"),
		randFloat: rand.Float64,
		runners:   make(map[string]runner, len(Routes)),
	}
	for _, opt := range opts {
		opt(a)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	var metricNames []string

	switch cfg.Service.Mode {
	case config.ModeAuto:
		engine.Use(otelgin.Middleware(cfg.Service.Name,
			otelgin.WithTracerProvider(tel.TracerProvider),
			otelgin.WithMeterProvider(tel.MeterProvider),
			otelgin.WithPropagators(tel.Propagator),
			otelgin.WithGinFilter(func(c *gin.Context) bool {
				return c.FullPath() != healthPath
			}),
		))
		for _, r := range Routes {
			a.runners[r.Name] = passthrough{}
		}

	case config.ModeManual:
		engine.Use(extractTraceContext(tel.Propagator))

		names := make([]string, 0, len(Routes))
		for _, r := range Routes {
			names = append(names, r.Name)
		}
		reg, err := metric.New(tel.Meter(telemetry.ScopeName), names...)
		if err != nil {
			return nil, fmt.Errorf("failed to create route metrics: %w", err)
		}
		metricNames = reg.Names()

		w := instrument.New(tel.Tracer(telemetry.ScopeName), reg, tel.Logger)
		for _, r := range Routes {
			route, err := w.Route(r.Name, r.SpanName)
			if err != nil {
				return nil, err
			}
			a.runners[r.Name] = route
		}

	default:
		return nil, fmt.Errorf("%w: unknown mode %q", config.ErrInvalid, cfg.Service.Mode)
	}

	engine.Use(
		requestLogging(a.logger),
		gin.CustomRecovery(a.recovered),
	)

	engine.GET(healthPath, a.health)
	engine.GET("/slow", a.slow)
	engine.GET("/error", a.simulatedError)
	engine.GET("/compute", a.compute)
	engine.Match(
		[]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch},
		"/server_request",
		a.serverRequest,
	)

	a.engine = engine

	a.logger.Debug("router ready",
		"mode", cfg.Service.Mode,
		"routes", len(engine.Routes()),
		"metrics", metricNames)

	return a, nil
}

// Handler returns the HTTP handler serving all routes.
func (a *API) Handler() http.Handler {
	return a.engine
}

func (a *API) run(c *gin.Context, route string, body instrument.Body) error {
	return a.runners[route].Do(c.Request.Context(), body)
}
