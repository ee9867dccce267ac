package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/LukaChassaing/meteo-dashboard/internal/config"
	"github.com/LukaChassaing/meteo-dashboard/internal/observability"
)

func NewServer(cfg config.Config, mux *http.ServeMux, logger *slog.Logger, metrics *observability.Metrics) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(logger, metrics, mux),
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
}
