package series

import (
	"math"
	"slices"

	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
)

// Sample reduces readings (sorted ascending by timestamp) to roughly the
// point budget of period.
//
// The input is split into contiguous buckets of len/budget readings. For
// Period24h every bucket contributes its minimum and maximum temperature
// readings, or its middle reading when the bucket is flat. Other periods
// keep the one reading per bucket closest to the bucket's mean temperature.
// The first and last readings are always kept and the result is sorted by
// timestamp. Ties go to the earliest reading.
//
// A series already within budget is returned as a copy, unchanged.
func Sample(readings []types.Reading, period Period) []types.Reading {
	n := len(readings)
	budget := period.Budget()
	if n <= budget {
		out := make([]types.Reading, n)
		copy(out, readings)
		return out
	}

	bucketSize := n / budget
	picked := make([]int, 0, 2*(n/bucketSize)+2)
	picked = append(picked, 0)

	for start := 0; start < n-1; start += bucketSize {
		end := min(start+bucketSize, n)
		if period == Period24h {
			lo, hi := extremes(readings, start, end)
			if lo != hi {
				picked = append(picked, lo, hi)
			} else {
				picked = append(picked, start+(end-start)/2)
			}
			continue
		}
		picked = append(picked, closestToMean(readings, start, end))
	}

	if picked[len(picked)-1] != n-1 {
		picked = append(picked, n-1)
	}

	return collect(readings, picked)
}

// extremes returns the indexes of the first minimum and first maximum
// temperature in readings[start:end].
func extremes(readings []types.Reading, start, end int) (lo, hi int) {
	lo, hi = start, start
	for i := start + 1; i < end; i++ {
		t := readings[i].Temperature
		if t > readings[hi].Temperature {
			hi = i
		}
		if t < readings[lo].Temperature {
			lo = i
		}
	}
	return lo, hi
}

func closestToMean(readings []types.Reading, start, end int) int {
	mean := Mean(readings[start:end]).Temperature
	best := start
	bestDist := math.Abs(readings[start].Temperature - mean)
	for i := start + 1; i < end; i++ {
		if d := math.Abs(readings[i].Temperature - mean); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// collect materializes picked indexes. A reading picked more than once (the
// first reading is often also a bucket extreme) is emitted once.
func collect(readings []types.Reading, picked []int) []types.Reading {
	slices.Sort(picked)
	picked = slices.Compact(picked)

	out := make([]types.Reading, 0, len(picked))
	for _, i := range picked {
		out = append(out, readings[i])
	}
	slices.SortStableFunc(out, byTimestamp)
	return out
}

// Mean returns the arithmetic mean temperature and humidity of readings.
// It returns the zero value for an empty slice.
func Mean(readings []types.Reading) types.Conditions {
	if len(readings) == 0 {
		return types.Conditions{}
	}
	var sum types.Conditions
	for _, r := range readings {
		sum.Temperature += r.Temperature
		sum.Humidity += r.Humidity
	}
	n := float64(len(readings))
	return types.Conditions{
		Temperature: sum.Temperature / n,
		Humidity:    sum.Humidity / n,
	}
}
