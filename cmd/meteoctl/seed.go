package main

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// syntheticReadings returns interior and exterior readings every step over
// the days before end; the seed makes output reproducible.
func syntheticReadings(end time.Time, days int, step time.Duration, seed uint64) []types.Reading {
	rng := newRand(seed)
	n := int(time.Duration(days) * 24 * time.Hour / step)
	start := end.Add(-time.Duration(n-1) * step)

	out := make([]types.Reading, 0, 2*n)
	for i := range n {
		out = append(out, syntheticAt(start.Add(time.Duration(i)*step), rng)...)
	}
	return out
}

// syntheticAt returns one interior and one exterior reading for ts.
// Temperatures follow a diurnal sine peaking at 15:00 with gaussian noise.
func syntheticAt(ts time.Time, rng *rand.Rand) []types.Reading {
	hour := float64(ts.Hour()) + float64(ts.Minute())/60
	phase := math.Sin((hour - 9) / 24 * 2 * math.Pi)

	return []types.Reading{
		{
			Location:    "interior",
			Timestamp:   ts,
			Temperature: round1(20.5 + 1.5*phase + rng.NormFloat64()*0.2),
			Humidity:    clamp(round1(47-3*phase+rng.NormFloat64()), 0, 100),
		},
		{
			Location:    "exterior",
			Timestamp:   ts,
			Temperature: round1(11 + 6*phase + rng.NormFloat64()*0.6),
			Humidity:    clamp(round1(75-15*phase+rng.NormFloat64()*3), 0, 100),
		},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
