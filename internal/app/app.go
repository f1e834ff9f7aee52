package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/neox5/o11ybox/internal/api"
	"github.com/neox5/o11ybox/internal/config"
	"github.com/neox5/o11ybox/internal/monitor"
	"github.com/neox5/o11ybox/internal/server"
	"github.com/neox5/o11ybox/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

const telemetryShutdownTimeout = 10 * time.Second

// App holds initialized application components.
type App struct {
	Config     *config.Config
	Telemetry  *telemetry.Telemetry
	API        *api.API
	Server     *server.Server
	Prometheus *server.Server
	Monitor    *monitor.Monitor
}

// New initializes the application from a resolved configuration. Telemetry
// options are passed through to telemetry.New.
func New(ctx context.Context, cfg *config.Config, opts ...telemetry.Option) (*App, error) {
	tel, err := telemetry.New(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	a := &App{
		Config:    cfg,
		Telemetry: tel,
	}

	a.API, err = api.New(cfg, tel)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create api: %w", err)
	}

	a.Server = server.New("api", cfg.Server.Addr(), a.API.Handler(), tel.Logger)

	if cfg.Export.Prometheus.Enabled {
		mux := newPrometheusMux(cfg.Export.Prometheus.Path, tel)
		addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Export.Prometheus.Port))
		a.Prometheus = server.New("prometheus", addr, mux, tel.Logger)
	}

	if cfg.Settings.Monitor.Enabled {
		a.Monitor, err = monitor.New(
			cfg.Settings.Monitor.Interval,
			tel.Logger.With("component", "monitor"),
			tel.Meter(telemetry.ScopeName),
		)
		if err != nil {
			_ = tel.Shutdown(ctx)
			return nil, fmt.Errorf("failed to create monitor: %w", err)
		}
	}

	return a, nil
}

// Run serves until ctx is cancelled or a component fails, then flushes and
// stops telemetry.
func (a *App) Run(ctx context.Context) error {
	logger := a.Telemetry.Logger
	cfg := a.Config

	logger.Info("starting the server",
		"service", cfg.Service.Name,
		"version", cfg.Service.Version,
		"mode", cfg.Service.Mode,
		"port", cfg.Server.Port)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Server.Start(gctx)
	})

	if a.Prometheus != nil {
		g.Go(func() error {
			return a.Prometheus.Start(gctx)
		})
	}

	if a.Monitor != nil {
		g.Go(func() error {
			a.Monitor.Run(gctx)
			a.Monitor.Wait()
			return nil
		})
	}

	runErr := g.Wait()
	if runErr != nil {
		logger.Error("component failed", "error", runErr)
	}

	// ctx is already done here
	shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()

	logger.Info("flushing telemetry")
	if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
		if runErr != nil {
			return fmt.Errorf("%w (telemetry shutdown: %v)", runErr, err)
		}
		return fmt.Errorf("telemetry shutdown: %w", err)
	}

	return runErr
}

// newPrometheusMux serves the scrape handler on path.
func newPrometheusMux(path string, tel *telemetry.Telemetry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(path, tel.PrometheusHandler())
	return mux
}
