package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/LukaChassaing/meteo-dashboard/internal/config"
)

// New returns the process logger writing to stdout.
func New(cfg config.Config, version string, appName string) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg, version, appName)
}

// NewWithWriter uses tint for dev builds and JSON with version and env
// attributes otherwise.
func NewWithWriter(w io.Writer, cfg config.Config, version string, appName string) *slog.Logger {
	if version == "dev" {
		return slog.New(devHandler(w, cfg)).With("app", appName)
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}

func devHandler(w io.Writer, cfg config.Config) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      cfg.LogLevel,
		AddSource:  true,
		TimeFormat: time.Kitchen,
		NoColor: cfg.AppEnv == "prod",
	})
}
