package series

import (
	"fmt"
	"slices"
	"time"

	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
)

// FilterByPeriod returns the readings sorted ascending by timestamp and
// restricted to the trailing window of period, measured back from now.
// Readings exactly at the cutoff are excluded. PeriodAll keeps everything.
// The input slice is not modified.
func FilterByPeriod(readings []types.Reading, period Period, now time.Time) ([]types.Reading, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("filter by period %q: %w", period, ErrUnknownPeriod)
	}

	sorted := sortedCopy(readings)
	window, bounded := period.Window()
	if !bounded {
		return sorted, nil
	}

	cutoff := now.Add(-window)
	out := sorted[:0]
	for _, r := range sorted {
		if r.Timestamp.After(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func sortedCopy(readings []types.Reading) []types.Reading {
	out := make([]types.Reading, len(readings))
	copy(out, readings)
	slices.SortStableFunc(out, byTimestamp)
	return out
}

func byTimestamp(a, b types.Reading) int {
	return a.Timestamp.Compare(b.Timestamp)
}
