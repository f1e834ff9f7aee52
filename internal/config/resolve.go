package config

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Resolve applies defaults to a raw configuration and validates the result.
// Mode is resolved first because the default service name and port depend on it.
func Resolve(raw *RawConfig) (*Config, error) {
	if raw == nil {
		raw = &RawConfig{}
	}

	mode := ModeManual
	if raw.Service.Mode != nil {
		mode = Mode(*raw.Service.Mode)
	}

	cfg := &Config{
		Service: ServiceConfig{
			Name:    defaultName(mode),
			Version: DefaultServiceVersion,
			Mode:    mode,
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: defaultPort(mode),
		},
		Endpoints: EndpointsConfig{
			Slow: SlowConfig{
				Min: DefaultSlowMin,
				Max: DefaultSlowMax,
			},
			Compute: ComputeConfig{
				DefaultN: DefaultComputeN,
			},
		},
		Export: ExportConfig{
			OTEL:       resolveOTELExport(raw.Export.OTEL),
			Prometheus: resolvePrometheusExport(raw.Export.Prometheus),
		},
		Settings: resolveSettings(raw.Settings),
	}

	if raw.Service.Name != nil {
		cfg.Service.Name = *raw.Service.Name
	}
	if raw.Service.Version != nil {
		cfg.Service.Version = *raw.Service.Version
	}
	if raw.Server.Host != nil {
		cfg.Server.Host = *raw.Server.Host
	}
	if raw.Server.Port != nil {
		cfg.Server.Port = *raw.Server.Port
	}
	if raw.Endpoints.Slow.Min != nil {
		cfg.Endpoints.Slow.Min = *raw.Endpoints.Slow.Min
	}
	if raw.Endpoints.Slow.Max != nil {
		cfg.Endpoints.Slow.Max = *raw.Endpoints.Slow.Max
	}
	if raw.Endpoints.Compute.DefaultN != nil {
		cfg.Endpoints.Compute.DefaultN = *raw.Endpoints.Compute.DefaultN
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	slog.Debug("resolved config",
		"service", cfg.Service.Name,
		"mode", cfg.Service.Mode,
		"addr", cfg.Server.Addr(),
		"otlp", cfg.Export.OTEL.Endpoint(),
		"otlp_enabled", cfg.Export.OTEL.Enabled)

	return cfg, nil
}

func defaultName(mode Mode) string {
	if mode == ModeAuto {
		return DefaultAutoName
	}
	return DefaultManualName
}

func defaultPort(mode Mode) int {
	if mode == ModeAuto {
		return DefaultAutoPort
	}
	return DefaultManualPort
}
