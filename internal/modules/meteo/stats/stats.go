// Package stats derives per-location summaries from a reduced series, so the
// figures shown next to a chart describe the same points the chart plots.
package stats

import (
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/series"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
)

// Aggregate groups readings by location, in order of first appearance, and
// computes the current reading, the mean conditions and the temperature
// range of each group.
func Aggregate(readings []types.Reading) []types.LocationStats {
	var order []string
	groups := make(map[string][]types.Reading)
	for _, r := range readings {
		if _, ok := groups[r.Location]; !ok {
			order = append(order, r.Location)
		}
		groups[r.Location] = append(groups[r.Location], r)
	}

	out := make([]types.LocationStats, 0, len(order))
	for _, location := range order {
		out = append(out, summarize(location, groups[location]))
	}
	return out
}

func summarize(location string, group []types.Reading) types.LocationStats {
	current := group[0]
	lo, hi := group[0].Temperature, group[0].Temperature
	for _, r := range group[1:] {
		if !r.Timestamp.Before(current.Timestamp) {
			current = r
		}
		lo = min(lo, r.Temperature)
		hi = max(hi, r.Temperature)
	}

	return types.LocationStats{
		Location: location,
		Current: types.Conditions{
			Temperature: current.Temperature,
			Humidity:    current.Humidity,
		},
		Daily: types.DailyStats{
			Average:        series.Mean(group),
			MinTemperature: lo,
			MaxTemperature: hi,
		},
	}
}
