package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/series"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
)

// MeteoService is the subset of service.Service the handlers use.
type MeteoService interface {
	Measurements(ctx context.Context, period series.Period) ([]types.Reading, error)
	MeasurementsByLocation(ctx context.Context, location string, period series.Period) ([]types.Reading, error)
	Stats(ctx context.Context, period series.Period) ([]types.LocationStats, error)
	Locations(ctx context.Context) ([]string, error)
	RawMeasurements(ctx context.Context) ([]types.Reading, error)
	RawMeasurementsByLocation(ctx context.Context, location string) ([]types.Reading, error)
}

type MeteoController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type meteoControllerImpl struct {
	service MeteoService
	logger  *slog.Logger
}

func NewMeteoController(service MeteoService, logger *slog.Logger) MeteoController {
	if logger == nil {
		logger = slog.Default()
	}
	return &meteoControllerImpl{service: service, logger: logger}
}

func (c *meteoControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/locations", c.handleLocations)
	mux.HandleFunc("GET /api/v1/measurements", c.handleMeasurements)
	mux.HandleFunc("GET /api/v1/measurements/{location}", c.handleMeasurementsByLocation)
	mux.HandleFunc("GET /api/v1/stats", c.handleStats)

	// Raw readings in the upstream meteo API shape.
	mux.HandleFunc("GET /measurements", c.handleRawMeasurements)
	mux.HandleFunc("GET /measurements/{location}", c.handleRawMeasurementsByLocation)
}
