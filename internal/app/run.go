package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/LukaChassaing/meteo-dashboard/internal/config"
	"github.com/LukaChassaing/meteo-dashboard/internal/db"
	"github.com/LukaChassaing/meteo-dashboard/internal/httpapi"
	"github.com/LukaChassaing/meteo-dashboard/internal/meteoapi"
	"github.com/LukaChassaing/meteo-dashboard/internal/migrate"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/repository"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/series"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/service"
	"github.com/LukaChassaing/meteo-dashboard/internal/mqtt"
	"github.com/LukaChassaing/meteo-dashboard/internal/observability"
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"sqliteLogQueries", cfg.SQLiteLogQueries,
		"mqttEnabled", cfg.MQTTEnabled,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
		"upstreamURL", cfg.UpstreamURL,
	)

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if _, err := migrate.Run(ctx, dbConn, logger); err != nil {
		return err
	}
	logger.Info("database ready")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	svc := newService(cfg, dbConn, metrics, logger)

	// The reading handler must be attached before Connect: the broker may
	// deliver queued messages right after CONNACK.
	var (
		subscriber *mqtt.Subscriber
		readingSub mqtt.ReadingSubscriber
		mqttStatus httpapi.ConnectionStatus
	)
	if cfg.MQTTEnabled {
		subscriber = mqtt.NewSubscriber(cfg, logger, metrics)
		readingSub, mqttStatus = subscriber, subscriber
	}

	mux := httpapi.NewMux(dbConn, reg, mqttStatus)
	meteo.RegisterFeature(mux, svc, readingSub, logger)

	if subscriber != nil {
		// Short timeout so a missing broker does not block startup.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	}

	srv := httpapi.NewServer(cfg, mux, logger, metrics)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if subscriber != nil {
		logger.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// newService reads from the upstream API when one is configured and from
// the local store otherwise. Ingest always writes to the local store.
func newService(cfg config.Config, dbConn *sql.DB, metrics *observability.Metrics, logger *slog.Logger) *service.Service {
	repo := repository.NewRepository(dbConn)

	source, sourceName := service.NewRepositorySource(repo), service.SourceSQLite
	if cfg.UpstreamURL != "" {
		source = meteoapi.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout)
		sourceName = service.SourceUpstream
	}
	logger.Info("reading source selected", "source", sourceName)

	return service.NewService(service.Deps{
		Source:     source,
		SourceName: sourceName,
		Repository: repo,
		Pipeline:   series.NewPipeline(clockwork.NewRealClock(), logger, metrics),
		Metrics:    metrics,
		Logger:     logger,
	})
}
