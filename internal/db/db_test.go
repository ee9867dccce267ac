package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/LukaChassaing/meteo-dashboard/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.Config
		want    string
		wantPre string
	}{
		{
			name: "explicit dsn wins",
			cfg:  config.Config{SQLiteDSN: "file::memory:?cache=shared", SQLitePath: "ignored.db"},
			want: "file::memory:?cache=shared",
		},
		{
			name:    "plain path",
			cfg:     config.Config{SQLitePath: filepath.Join(dir, "sub", "meteo.db")},
			wantPre: "file:" + filepath.Join(dir, "sub", "meteo.db") + "?_foreign_keys=on",
		},
		{
			name:    "file uri with params",
			cfg:     config.Config{SQLitePath: "file:meteo.db?mode=rwc"},
			wantPre: "file:meteo.db?mode=rwc&_foreign_keys=on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if err != nil {
				t.Fatalf("buildDSN: %v", err)
			}
			if tt.want != "" && got != tt.want {
				t.Errorf("dsn = %q, want %q", got, tt.want)
			}
			if tt.wantPre != "" && !strings.HasPrefix(got, tt.wantPre) {
				t.Errorf("dsn = %q, want prefix %q", got, tt.wantPre)
			}
			if tt.cfg.SQLiteDSN == "" && !strings.Contains(got, "_journal_mode=WAL") {
				t.Errorf("dsn %q missing WAL pragma", got)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	for _, logQueries := range []bool{false, true} {
		cfg := config.Config{
			SQLiteDriver:       "sqlite3",
			SQLitePath:         filepath.Join(t.TempDir(), "meteo.db"),
			SQLiteMaxOpenConns: 1,
			SQLiteMaxIdleConns: 1,
			SQLiteLogQueries:   logQueries,
		}
		conn, err := Open(cfg, nil)
		if err != nil {
			t.Fatalf("Open(logQueries=%v): %v", logQueries, err)
		}
		var one int
		if err := conn.QueryRow("SELECT 1").Scan(&one); err != nil || one != 1 {
			t.Errorf("SELECT 1 = %d, %v", one, err)
		}
		if err := Close(conn); err != nil {
			t.Errorf("Close: %v", err)
		}
	}
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v", err)
	}
}
