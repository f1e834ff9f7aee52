package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/neox5/o11ybox/internal/app"
	"github.com/neox5/o11ybox/internal/config"
	"github.com/neox5/o11ybox/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:    "o11ybox",
		Usage:   "Demo HTTP service emitting traces, metrics and logs over OTLP",
		Version: version.String(),
		Commands: []*cli.Command{
			serveCommand(),
			{
				Name:  "version",
				Usage: "print build information",
				Action: func(_ context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintln(cmd.Root().Writer, version.String())
					return err
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the demo service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file (defaults apply when omitted)",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "instrumentation mode: manual or auto",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "listen host",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port (default 8001 manual, 8000 auto)",
			},
			&cli.StringFlag{
				Name:    "otlp-endpoint",
				Usage:   "OTLP/HTTP collector as host:port or http(s) URL",
				Sources: cli.EnvVars("OTEL_EXPORTER_OTLP_ENDPOINT"),
			},
			&cli.StringFlag{
				Name:    "service-name",
				Usage:   "service.name resource attribute",
				Sources: cli.EnvVars("OTEL_SERVICE_NAME"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	debug := cmd.Bool("debug")

	// Bootstrap logger until telemetry takes over
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Debug("--- Configuration Loading ---")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup graceful shutdown
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Debug("--- Application Initialization ---")
	application, err := app.New(shutdownCtx, cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	slog.SetDefault(application.Telemetry.Logger)

	slog.Info("starting o11ybox",
		"version", version.Version(),
		"mode", cfg.Service.Mode,
		"config", cmd.String("config"))

	if err := application.Run(shutdownCtx); err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "shutdown complete")
	return nil
}

// loadConfig reads the optional config file and applies flag overrides.
// Flags win over the file, the file wins over defaults.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	raw := &config.RawConfig{}
	if path := cmd.String("config"); path != "" {
		var err error
		raw, err = config.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if cmd.IsSet("mode") {
		raw.SetMode(cmd.String("mode"))
	}
	if cmd.IsSet("host") {
		raw.SetHost(cmd.String("host"))
	}
	if cmd.IsSet("port") {
		raw.SetPort(cmd.Int("port"))
	}
	if cmd.IsSet("service-name") {
		raw.SetServiceName(cmd.String("service-name"))
	}
	if cmd.IsSet("otlp-endpoint") {
		if err := raw.SetOTLPEndpoint(cmd.String("otlp-endpoint")); err != nil {
			return nil, err
		}
	}
	if cmd.Bool("debug") {
		raw.Settings.Log.Level = "debug"
	}

	if err := config.Validate(raw); err != nil {
		return nil, err
	}

	cfg, err := config.Resolve(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config: %w", err)
	}
	return cfg, nil
}
