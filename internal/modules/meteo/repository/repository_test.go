package repository

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/LukaChassaing/meteo-dashboard/internal/migrate"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"

	_ "github.com/mattn/go-sqlite3"
)

var base = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close db: %v", closeErr)
		}
	})
	if _, err := migrate.Run(context.Background(), db, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustInsert(t *testing.T, repo MeteoRepository, r types.Reading) {
	t.Helper()
	if err := repo.InsertReading(context.Background(), r); err != nil {
		t.Fatalf("InsertReading(%+v): %v", r, err)
	}
}

func TestNewRepository(t *testing.T) {
	if repo := NewRepository(setupTestDB(t)); repo == nil {
		t.Fatal("NewRepository returned nil")
	}
}

func TestGetReadings_Empty(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	readings, err := repo.GetReadings(context.Background())
	if err != nil {
		t.Fatalf("GetReadings: %v", err)
	}
	if readings == nil || len(readings) != 0 {
		t.Fatalf("GetReadings = %#v, want empty non-nil slice", readings)
	}

	locs, err := repo.GetLocations(context.Background())
	if err != nil {
		t.Fatalf("GetLocations: %v", err)
	}
	if len(locs) != 0 {
		t.Fatalf("GetLocations = %v, want empty", locs)
	}
}

func TestInsertAndGetReadings_OrderedByTimestamp(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	mustInsert(t, repo, types.Reading{Location: "exterior", Timestamp: base.Add(10 * time.Minute), Temperature: 12.5, Humidity: 80})
	mustInsert(t, repo, types.Reading{Location: "interior", Timestamp: base.Add(500 * time.Millisecond), Temperature: 21.1, Humidity: 45})
	mustInsert(t, repo, types.Reading{Location: "interior", Timestamp: base, Temperature: 21.0, Humidity: 44})

	got, err := repo.GetReadings(ctx)
	if err != nil {
		t.Fatalf("GetReadings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantTimes := []time.Time{base, base.Add(500 * time.Millisecond), base.Add(10 * time.Minute)}
	for i, want := range wantTimes {
		if !got[i].Timestamp.Equal(want) {
			t.Errorf("reading[%d].Timestamp = %v, want %v", i, got[i].Timestamp, want)
		}
	}
	if got[2].Location != "exterior" || got[2].Temperature != 12.5 || got[2].Humidity != 80 {
		t.Errorf("reading[2] = %+v", got[2])
	}
}

func TestGetReadingsByLocation(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	for i := range 4 {
		loc := "interior"
		if i%2 == 1 {
			loc = "exterior"
		}
		mustInsert(t, repo, types.Reading{Location: loc, Timestamp: base.Add(time.Duration(i) * 5 * time.Minute), Temperature: float64(i), Humidity: 50})
	}

	got, err := repo.GetReadingsByLocation(ctx, "exterior")
	if err != nil {
		t.Fatalf("GetReadingsByLocation: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, r := range got {
		if r.Location != "exterior" {
			t.Errorf("unexpected location %q", r.Location)
		}
	}

	none, err := repo.GetReadingsByLocation(ctx, "garage")
	if err != nil {
		t.Fatalf("GetReadingsByLocation(garage): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("garage readings = %d, want 0", len(none))
	}
}

func TestGetLocations_FirstSeenOrder(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	mustInsert(t, repo, types.Reading{Location: "interior", Timestamp: base, Temperature: 21, Humidity: 40})
	mustInsert(t, repo, types.Reading{Location: "exterior", Timestamp: base, Temperature: 9, Humidity: 70})
	mustInsert(t, repo, types.Reading{Location: "interior", Timestamp: base.Add(time.Minute), Temperature: 21, Humidity: 40})

	got, err := repo.GetLocations(context.Background())
	if err != nil {
		t.Fatalf("GetLocations: %v", err)
	}
	if len(got) != 2 || got[0] != "interior" || got[1] != "exterior" {
		t.Fatalf("GetLocations = %v, want [interior exterior]", got)
	}
}

func TestInsertReading_TrimsLocation(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	mustInsert(t, repo, types.Reading{Location: "  interior ", Timestamp: base, Temperature: 20, Humidity: 50})

	got, err := repo.GetReadingsByLocation(context.Background(), "interior")
	if err != nil {
		t.Fatalf("GetReadingsByLocation: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
}

func TestInsertReading_Validation(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	tests := []struct {
		name    string
		reading types.Reading
	}{
		{"missing location", types.Reading{Timestamp: base, Humidity: 50}},
		{"blank location", types.Reading{Location: "  ", Timestamp: base, Humidity: 50}},
		{"zero timestamp", types.Reading{Location: "interior", Humidity: 50}},
		{"humidity below range", types.Reading{Location: "interior", Timestamp: base, Humidity: -1}},
		{"humidity above range", types.Reading{Location: "interior", Timestamp: base, Humidity: 100.5}},
		{"nan temperature", types.Reading{Location: "interior", Timestamp: base, Temperature: math.NaN(), Humidity: 50}},
		{"infinite temperature", types.Reading{Location: "interior", Timestamp: base, Temperature: math.Inf(1), Humidity: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.InsertReading(context.Background(), tt.reading)
			if !errors.Is(err, ErrInvalidReading) {
				t.Fatalf("InsertReading error = %v, want ErrInvalidReading", err)
			}
		})
	}

	got, err := repo.GetReadings(context.Background())
	if err != nil {
		t.Fatalf("GetReadings: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("rejected readings were stored: %d rows", len(got))
	}
}

func TestInsertReading_BoundaryHumidity(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	mustInsert(t, repo, types.Reading{Location: "interior", Timestamp: base, Humidity: 0})
	mustInsert(t, repo, types.Reading{Location: "interior", Timestamp: base.Add(time.Minute), Humidity: 100})
}

func TestGetReadings_CancelledContext(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.GetReadings(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("GetReadings error = %v, want context.Canceled", err)
	}
}

func TestScanReadings_LegacyTimestamp(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.Exec(
		`INSERT INTO measurements (location, ts, temperature, humidity) VALUES (?, ?, ?, ?)`,
		"interior", "2026-10-18T10:00:00+02:00", 20.0, 50.0,
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := NewRepository(db).GetReadings(context.Background())
	if err != nil {
		t.Fatalf("GetReadings: %v", err)
	}
	if len(got) != 1 || !got[0].Timestamp.Equal(base.Add(-2*time.Hour)) {
		t.Fatalf("got %+v", got)
	}
}

func TestScanReadings_BadTimestamp(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.Exec(
		`INSERT INTO measurements (location, ts, temperature, humidity) VALUES (?, ?, ?, ?)`,
		"interior", "yesterday", 20.0, 50.0,
	); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := NewRepository(db).GetReadings(context.Background()); err == nil {
		t.Fatal("expected parse error for malformed timestamp")
	}
}
