package service

import (
	"context"

	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/repository"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
)

// Source names used as metric labels.
const (
	SourceSQLite   = "sqlite"
	SourceUpstream = "upstream"
)

// Source yields raw, unreduced readings. Implementations must honour ctx
// cancellation.
type Source interface {
	FetchReadings(ctx context.Context) ([]types.Reading, error)
	FetchReadingsByLocation(ctx context.Context, location string) ([]types.Reading, error)
}

// LocationLister is implemented by sources that can list locations without
// loading every reading.
type LocationLister interface {
	Locations(ctx context.Context) ([]string, error)
}

type repositorySource struct {
	repo repository.MeteoRepository
}

// NewRepositorySource exposes the local store as a Source.
func NewRepositorySource(repo repository.MeteoRepository) Source {
	return &repositorySource{repo: repo}
}

func (s *repositorySource) FetchReadings(ctx context.Context) ([]types.Reading, error) {
	return s.repo.GetReadings(ctx)
}

func (s *repositorySource) FetchReadingsByLocation(ctx context.Context, location string) ([]types.Reading, error) {
	return s.repo.GetReadingsByLocation(ctx, location)
}

func (s *repositorySource) Locations(ctx context.Context) ([]string, error) {
	return s.repo.GetLocations(ctx)
}
