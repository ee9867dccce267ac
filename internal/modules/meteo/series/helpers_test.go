package series

import (
	"math/rand"
	"time"

	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func reading(ts time.Time, temp float64) types.Reading {
	return types.Reading{Temperature: temp, Humidity: 50, Location: "interior", Timestamp: ts}
}

// series returns n readings spaced step apart, oldest first, the last one at end.
func series(n int, step time.Duration, end time.Time, temp func(i int) float64) []types.Reading {
	out := make([]types.Reading, n)
	for i := range out {
		ts := end.Add(-time.Duration(n-1-i) * step)
		out[i] = reading(ts, temp(i))
	}
	return out
}

func randomTemps(seed int64) func(int) float64 {
	rng := rand.New(rand.NewSource(seed))
	return func(int) float64 { return 10 + rng.Float64()*20 }
}

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

func containsAt(out []types.Reading, ts time.Time) int {
	n := 0
	for _, r := range out {
		if r.Timestamp.Equal(ts) {
			n++
		}
	}
	return n
}
