package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/repository"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/series"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/stats"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
	"github.com/LukaChassaing/meteo-dashboard/internal/observability"
)

// ErrLocationRequired is returned for blank location arguments.
var ErrLocationRequired = errors.New("location is required")

type Deps struct {
	Source     Source
	SourceName string
	// Repository stores ingested readings. It may be nil when the service
	// only reads from an upstream API.
	Repository repository.MeteoRepository
	Pipeline   *series.Pipeline
	Metrics    *observability.Metrics
	Logger     *slog.Logger
}

// Service fetches raw readings from its Source and reduces them for
// chart consumers.
type Service struct {
	source     Source
	sourceName string
	repository repository.MeteoRepository
	pipeline   *series.Pipeline
	metrics    *observability.Metrics
	logger     *slog.Logger
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Pipeline == nil {
		d.Pipeline = series.NewPipeline(nil, d.Logger, d.Metrics)
	}
	if d.SourceName == "" {
		d.SourceName = SourceSQLite
	}
	return &Service{
		source:     d.Source,
		sourceName: d.SourceName,
		repository: d.Repository,
		pipeline:   d.Pipeline,
		metrics:    d.Metrics,
		logger:     d.Logger,
	}
}

// Measurements returns the reduced series of every location for period.
func (s *Service) Measurements(ctx context.Context, period series.Period) ([]types.Reading, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	raw, err := s.fetch(ctx, func(ctx context.Context) ([]types.Reading, error) {
		return s.source.FetchReadings(ctx)
	})
	if err != nil {
		return nil, err
	}
	return s.pipeline.Reduce(raw, period)
}

// MeasurementsByLocation returns the reduced series of one location.
func (s *Service) MeasurementsByLocation(ctx context.Context, location string, period series.Period) ([]types.Reading, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	raw, err := s.RawMeasurementsByLocation(ctx, location)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Reduce(raw, period)
}

// Stats aggregates the reduced series per location.
func (s *Service) Stats(ctx context.Context, period series.Period) ([]types.LocationStats, error) {
	reduced, err := s.Measurements(ctx, period)
	if err != nil {
		return nil, err
	}
	return stats.Aggregate(reduced), nil
}

// RawMeasurements returns every reading as the source holds it.
func (s *Service) RawMeasurements(ctx context.Context) ([]types.Reading, error) {
	return s.fetch(ctx, func(ctx context.Context) ([]types.Reading, error) {
		return s.source.FetchReadings(ctx)
	})
}

func (s *Service) RawMeasurementsByLocation(ctx context.Context, location string) ([]types.Reading, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrLocationRequired
	}
	return s.fetch(ctx, func(ctx context.Context) ([]types.Reading, error) {
		return s.source.FetchReadingsByLocation(ctx, location)
	})
}

// Locations lists known locations in order of first appearance.
func (s *Service) Locations(ctx context.Context) ([]string, error) {
	if lister, ok := s.source.(LocationLister); ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		locs, err := lister.Locations(ctx)
		if err != nil {
			return nil, s.fetchErr(ctx, err)
		}
		return locs, nil
	}

	raw, err := s.RawMeasurements(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	locs := []string{}
	for _, r := range raw {
		if !seen[r.Location] {
			seen[r.Location] = true
			locs = append(locs, r.Location)
		}
	}
	return locs, nil
}

// Ingest stores one reading in the local store.
func (s *Service) Ingest(ctx context.Context, reading types.Reading) error {
	if s.repository == nil {
		return errors.New("no repository configured for ingest")
	}
	return s.repository.InsertReading(ctx, reading)
}

func (s *Service) fetch(ctx context.Context, get func(context.Context) ([]types.Reading, error)) ([]types.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	raw, err := get(ctx)
	s.metrics.ObserveFetch(s.sourceName, time.Since(start), err)
	if err != nil {
		return nil, s.fetchErr(ctx, err)
	}
	return raw, nil
}

// fetchErr reports a cancelled caller as ctx.Err() rather than the
// source's wrapped variant.
func (s *Service) fetchErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.logger.Debug("fetch cancelled", "source", s.sourceName, "error", err)
		return ctxErr
	}
	return fmt.Errorf("fetch readings from %s: %w", s.sourceName, err)
}

func checkPeriod(period series.Period) error {
	if !period.Valid() {
		return fmt.Errorf("%w: %q", series.ErrUnknownPeriod, period)
	}
	return nil
}
