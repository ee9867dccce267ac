package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
)

//go:embed sql/get-readings.sql
var getReadingsSQL string

//go:embed sql/get-readings-by-location.sql
var getReadingsByLocationSQL string

//go:embed sql/get-locations.sql
var getLocationsSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

// tsLayout is fixed-width so ORDER BY ts sorts chronologically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrInvalidReading is returned by InsertReading for readings that fail validation.
var ErrInvalidReading = types.ErrInvalidReading

type MeteoRepository interface {
	GetReadings(ctx context.Context) ([]types.Reading, error)
	GetReadingsByLocation(ctx context.Context, location string) ([]types.Reading, error)
	GetLocations(ctx context.Context) ([]string, error)
	InsertReading(ctx context.Context, reading types.Reading) error
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) MeteoRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) GetReadings(ctx context.Context) ([]types.Reading, error) {
	rows, err := r.db.QueryContext(ctx, getReadingsSQL)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()
	return scanReadings(rows)
}

func (r *repositoryImpl) GetReadingsByLocation(ctx context.Context, location string) ([]types.Reading, error) {
	rows, err := r.db.QueryContext(ctx, getReadingsByLocationSQL, location)
	if err != nil {
		return nil, fmt.Errorf("query readings for %q: %w", location, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close location readings rows", "location", location, "error", err)
		}
	}()
	return scanReadings(rows)
}

func (r *repositoryImpl) GetLocations(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, getLocationsSQL)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close locations rows", "error", err)
		}
	}()

	out := []string{}
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) InsertReading(ctx context.Context, reading types.Reading) error {
	if err := reading.Validate(); err != nil {
		return err
	}
	tsStr := reading.Timestamp.UTC().Format(tsLayout)
	location := strings.TrimSpace(reading.Location)
	if _, err := r.db.ExecContext(ctx, insertReadingSQL, location, tsStr, reading.Temperature, reading.Humidity); err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func scanReadings(rows *sql.Rows) ([]types.Reading, error) {
	out := []types.Reading{}
	for rows.Next() {
		var rec types.Reading
		var ts string
		if err := rows.Scan(&rec.Location, &ts, &rec.Temperature, &rec.Humidity); err != nil {
			return nil, err
		}
		t, err := parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		rec.Timestamp = t
		out = append(out, rec)
	}
	return out, rows.Err()
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err == nil {
		return t, nil
	}
	t, err2 := time.Parse(time.RFC3339, ts)
	if err2 != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: RFC3339Nano: %w; RFC3339: %w", ts, err, err2)
	}
	return t, nil
}
