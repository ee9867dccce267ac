package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/LukaChassaing/meteo-dashboard/internal/config"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
	"github.com/LukaChassaing/meteo-dashboard/internal/mqtt"
)

const defaultSimulateInterval = 30 * time.Second

type readingPublisher interface {
	PublishReading(r types.Reading) error
}

// simulate publishes a synthetic interior/exterior pair over MQTT every
// interval until ctx is done, standing in for the sensor gateway.
func simulate(ctx context.Context, cfg config.Config, out io.Writer, args []string, logger *slog.Logger) error {
	interval, err := simulateInterval(args)
	if err != nil {
		return err
	}

	pub := mqtt.NewPublisher(cfg, logger)
	defer pub.Disconnect()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = pub.Connect(connectCtx)
	cancel()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "publishing every %s to %s:%d (ctrl-c to stop)\n", interval, cfg.MQTTBroker, cfg.MQTTPort)
	n, err := publishLoop(ctx, pub, clockwork.NewRealClock(), interval, newRand(uint64(time.Now().UnixNano())), logger)
	fmt.Fprintf(out, "published %d readings\n", n)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// publishLoop publishes immediately and then on every tick. Publish
// failures are logged and the loop keeps going; it returns the number of
// readings published once ctx is done.
func simulateInterval(args []string) (time.Duration, error) {
	if len(args) < 2 {
		return defaultSimulateInterval, nil
	}
	d, err := time.ParseDuration(args[1])
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: interval must be a positive duration, got %q", errUsage, args[1])
	}
	return d, nil
}

func publishLoop(ctx context.Context, pub readingPublisher, clock clockwork.Clock, interval time.Duration, rng *rand.Rand, logger *slog.Logger) (int, error) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	published := 0
	publish := func(ts time.Time) {
		for _, r := range syntheticAt(ts.UTC(), rng) {
			if err := pub.PublishReading(r); err != nil {
				logger.Warn("publish failed", "location", r.Location, "error", err)
				continue
			}
			published++
		}
	}

	publish(clock.Now())
	for {
		select {
		case <-ctx.Done():
			return published, ctx.Err()
		case ts := <-ticker.Chan():
			publish(ts)
		}
	}
}
