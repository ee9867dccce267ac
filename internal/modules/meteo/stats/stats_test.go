package stats

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
)

var base = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

func at(location string, minutes int, temp, hum float64) types.Reading {
	return types.Reading{
		Temperature: temp,
		Humidity:    hum,
		Location:    location,
		Timestamp:   base.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestAggregate(t *testing.T) {
	in := []types.Reading{
		at("interior", 0, 20, 40),
		at("exterior", 0, 5, 80),
		at("interior", 10, 22, 44),
		at("exterior", 10, 9, 70),
		at("interior", 20, 21, 42),
		at("exterior", 20, 7, 75),
	}

	got := Aggregate(in)

	want := []types.LocationStats{
		{
			Location: "interior",
			Current:  types.Conditions{Temperature: 21, Humidity: 42},
			Daily: types.DailyStats{
				Average:        types.Conditions{Temperature: 21, Humidity: 42},
				MinTemperature: 20,
				MaxTemperature: 22,
			},
		},
		{
			Location: "exterior",
			Current:  types.Conditions{Temperature: 7, Humidity: 75},
			Daily: types.DailyStats{
				Average:        types.Conditions{Temperature: 7, Humidity: 75},
				MinTemperature: 5,
				MaxTemperature: 9,
			},
		},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Aggregate() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_CurrentIsMostRecentRegardlessOfOrder(t *testing.T) {
	in := []types.Reading{
		at("interior", 30, 25, 50),
		at("interior", 0, 18, 60),
		at("interior", 10, 19, 55),
	}
	got := Aggregate(in)
	require.Len(t, got, 1)
	assert.Equal(t, types.Conditions{Temperature: 25, Humidity: 50}, got[0].Current)
}

func TestAggregate_EqualTimestampsLaterWins(t *testing.T) {
	in := []types.Reading{
		at("exterior", 0, 1, 10),
		at("exterior", 0, 2, 20),
	}
	got := Aggregate(in)
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Current.Temperature)
}

func TestAggregate_SingleReading(t *testing.T) {
	got := Aggregate([]types.Reading{at("garage", 0, -3.5, 90)})
	require.Len(t, got, 1)
	assert.Equal(t, "garage", got[0].Location)
	assert.Equal(t, -3.5, got[0].Daily.MinTemperature)
	assert.Equal(t, -3.5, got[0].Daily.MaxTemperature)
	assert.Equal(t, -3.5, got[0].Daily.Average.Temperature)
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
