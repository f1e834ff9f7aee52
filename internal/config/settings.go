package config

import (
	"log/slog"
	"time"
)

// SettingsConfig holds general application settings.
type SettingsConfig struct {
	Log     LogConfig
	Monitor MonitorConfig
}

// LogConfig controls the console side of logging. OTLP log export is
// governed by Export.OTEL.
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=text json"`
	File   *LogFileConfig
}

// LogFileConfig redirects console output to a rotating file.
type LogFileConfig struct {
	Path       string `validate:"required"`
	MaxSizeMB  int    `validate:"min=1"`
	MaxBackups int    `validate:"gte=0"`
	MaxAgeDays int    `validate:"gte=0"`
	Compress   bool
}

// MonitorConfig controls the process resource monitor.
type MonitorConfig struct {
	Enabled  bool
	Interval time.Duration `validate:"gt=0"`
}

// SlogLevel maps the configured level name to a slog.Level.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func resolveSettings(raw RawSettingsConfig) SettingsConfig {
	s := SettingsConfig{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Monitor: MonitorConfig{
			Enabled:  true,
			Interval: DefaultMonitorInterval,
		},
	}

	if raw.Log.Level != "" {
		s.Log.Level = raw.Log.Level
	}
	if raw.Log.Format != "" {
		s.Log.Format = raw.Log.Format
	}
	if f := raw.Log.File; f != nil {
		s.Log.File = &LogFileConfig{
			Path:       f.Path,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		}
		if s.Log.File.MaxSizeMB == 0 {
			s.Log.File.MaxSizeMB = DefaultLogFileMaxSizeMB
		}
	}

	if raw.Monitor.Enabled != nil {
		s.Monitor.Enabled = *raw.Monitor.Enabled
	}
	if raw.Monitor.Interval != 0 {
		s.Monitor.Interval = raw.Monitor.Interval
	}

	return s
}
