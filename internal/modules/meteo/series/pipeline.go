package series

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
	"github.com/LukaChassaing/meteo-dashboard/internal/observability"
)

// Reduce windows readings to period (relative to now) and samples the
// result down to the period's point budget.
func Reduce(readings []types.Reading, period Period, now time.Time) ([]types.Reading, error) {
	windowed, err := FilterByPeriod(readings, period, now)
	if err != nil {
		return nil, err
	}
	return Sample(windowed, period), nil
}

// Pipeline runs Reduce against an injectable clock. It keeps no state
// between calls and is safe for concurrent use.
type Pipeline struct {
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPipeline returns a Pipeline. A nil clock uses the real clock, a nil
// logger uses slog.Default() and nil metrics disables instrumentation.
func NewPipeline(clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{clock: clock, logger: logger, metrics: metrics}
}

func (p *Pipeline) Reduce(readings []types.Reading, period Period) ([]types.Reading, error) {
	start := p.clock.Now()
	out, err := Reduce(readings, period, start)
	if err != nil {
		if errors.Is(err, ErrUnknownPeriod) {
			p.metrics.ReductionRejected("unknown")
		}
		return nil, err
	}
	p.metrics.ObserveReduction(period.String(), len(readings), len(out), p.clock.Since(start))
	p.logger.Debug("series reduced",
		"period", period,
		"points_in", len(readings),
		"points_out", len(out),
		"budget", period.Budget(),
	)
	return out, nil
}
