package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LukaChassaing/meteo-dashboard/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

const pingTimeout = 5 * time.Second

// storeParams are appended to every file-backed DSN. WAL with a busy
// timeout lets API reads run while MQTT ingest writes.
var storeParams = []string{
	"_foreign_keys=on",
	"_busy_timeout=5000",
	"_journal_mode=WAL",
}

// Open opens the measurement store described by cfg and verifies it with a
// ping. With cfg.SQLiteLogQueries set, statements are logged through logger.
func Open(cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	var store *sql.DB
	if cfg.SQLiteLogQueries {
		store = sql.OpenDB(NewQueryLogConnector(dsn, logger))
	} else {
		store, err = sql.Open(cfg.SQLiteDriver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}
	configurePool(store, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := store.PingContext(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return store, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func configurePool(store *sql.DB, cfg config.Config) {
	if cfg.SQLiteMaxOpenConns > 0 {
		store.SetMaxOpenConns(cfg.SQLiteMaxOpenConns)
	}
	if cfg.SQLiteMaxIdleConns >= 0 {
		store.SetMaxIdleConns(cfg.SQLiteMaxIdleConns)
	}
	if cfg.SQLiteConnMaxLifetime > 0 {
		store.SetConnMaxLifetime(cfg.SQLiteConnMaxLifetime)
	}
}

func buildDSN(cfg config.Config) (string, error) {
	if cfg.SQLiteDSN != "" {
		return cfg.SQLiteDSN, nil
	}

	path := cfg.SQLitePath
	if strings.HasPrefix(path, "file:") {
		return withParams(path), nil
	}
	if err := ensureDir(path); err != nil {
		return "", err
	}
	return withParams("file:" + path), nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

func withParams(uri string) string {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + strings.Join(storeParams, "&")
}
