package config

import (
	"errors"
	"fmt"
)

// ErrInvalid marks configuration errors.
var ErrInvalid = errors.New("invalid configuration")

// Validate performs syntactic validation on raw config
func Validate(raw *RawConfig) error {
	return validateRawSyntax(raw)
}

// validateRawSyntax rejects values that cannot be given a meaning by Resolve.
func validateRawSyntax(raw *RawConfig) error {
	if m := raw.Service.Mode; m != nil {
		switch Mode(*m) {
		case ModeAuto, ModeManual:
		default:
			return fmt.Errorf("%w: service mode %q (must be auto or manual)", ErrInvalid, *m)
		}
	}

	if n := raw.Service.Name; n != nil && *n == "" {
		return fmt.Errorf("%w: service name cannot be empty", ErrInvalid)
	}

	if p := raw.Server.Port; p != nil && (*p <= 0 || *p > 65535) {
		return fmt.Errorf("%w: server port %d", ErrInvalid, *p)
	}

	slow := raw.Endpoints.Slow
	if slow.Min != nil && *slow.Min <= 0 {
		return fmt.Errorf("%w: slow min must be positive", ErrInvalid)
	}
	if slow.Min != nil && slow.Max != nil && *slow.Max <= *slow.Min {
		return fmt.Errorf("%w: slow max must be greater than min", ErrInvalid)
	}

	if o := raw.Export.OTEL; o != nil {
		if o.Port < 0 || o.Port > 65535 {
			return fmt.Errorf("%w: otel port %d", ErrInvalid, o.Port)
		}
		if o.Interval < 0 || o.Timeout < 0 {
			return fmt.Errorf("%w: otel interval and timeout cannot be negative", ErrInvalid)
		}
	}

	if f := raw.Settings.Log.File; f != nil && f.Path == "" {
		return fmt.Errorf("%w: log file path cannot be empty", ErrInvalid)
	}

	return nil
}
