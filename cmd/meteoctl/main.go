package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/LukaChassaing/meteo-dashboard/internal/config"
	"github.com/LukaChassaing/meteo-dashboard/internal/db"
	"github.com/LukaChassaing/meteo-dashboard/internal/logging"
	"github.com/LukaChassaing/meteo-dashboard/internal/migrate"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/repository"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/series"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/stats"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
)

const appName = "meteoctl"

var version = "dev"

const usage = `usage: %s <command> [args]
  migrate                      apply pending schema migrations
  seed [days]                  insert synthetic interior/exterior readings (default 2 days)
  reduce <period> [location]   print the reduced series size and stats (period: 24h, 7d, 30d, all)
  simulate [interval]          publish synthetic readings over MQTT every interval (default 30s)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewWithWriter(os.Stderr, cfg, version, appName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if os.Args[1] == "simulate" {
		if err := simulate(ctx, cfg, os.Stdout, os.Args[1:], logger); err != nil {
			fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
			os.Exit(1)
		}
		return
	}

	conn, err := db.Open(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if err := run(ctx, os.Stdout, os.Args[1:], conn, logger); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, usage, os.Args[0])
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid arguments")

func run(ctx context.Context, out io.Writer, args []string, conn *sql.DB, logger *slog.Logger) error {
	switch args[0] {
	case "migrate":
		applied, err := migrate.Run(ctx, conn, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "migrations applied: %d\n", len(applied))
		return nil

	case "seed":
		days := 2
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("%w: days must be a positive integer, got %q", errUsage, args[1])
			}
			days = n
		}
		if _, err := migrate.Run(ctx, conn, logger); err != nil {
			return err
		}
		repo := repository.NewRepository(conn)
		n := 0
		for _, r := range syntheticReadings(time.Now().UTC(), days, 5*time.Minute, 1) {
			if err := repo.InsertReading(ctx, r); err != nil {
				return fmt.Errorf("insert reading %d: %w", n, err)
			}
			n++
		}
		fmt.Fprintf(out, "seeded %d readings over %d days\n", n, days)
		return nil

	case "reduce":
		if len(args) < 2 {
			return fmt.Errorf("%w: reduce needs a period", errUsage)
		}
		period, err := series.ParsePeriod(args[1])
		if err != nil {
			return err
		}
		repo := repository.NewRepository(conn)
		var raw []types.Reading
		if len(args) > 2 {
			raw, err = repo.GetReadingsByLocation(ctx, args[2])
		} else {
			raw, err = repo.GetReadings(ctx)
		}
		if err != nil {
			return err
		}
		reduced, err := series.Reduce(raw, period, time.Now())
		if err != nil {
			return err
		}
		return writeReport(out, period, len(raw), reduced)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

type report struct {
	Period string                `json:"period"`
	In     int                   `json:"points_in"`
	Out    int                   `json:"points_out"`
	Stats  []types.LocationStats `json:"stats"`
}

func writeReport(out io.Writer, period series.Period, in int, reduced []types.Reading) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report{
		Period: period.String(),
		In:     in,
		Out:    len(reduced),
		Stats:  stats.Aggregate(reduced),
	})
}
