package types

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidReading marks readings that cannot be stored.
var ErrInvalidReading = errors.New("invalid reading")

// Reading is one timestamped temperature/humidity observation for a location.
type Reading struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Location    string    `json:"location"`
	Timestamp   time.Time `json:"timestamp"`
}

// Validate reports why r cannot be stored. Errors wrap ErrInvalidReading.
func (r Reading) Validate() error {
	switch {
	case strings.TrimSpace(r.Location) == "":
		return fmt.Errorf("%w: location is required", ErrInvalidReading)
	case r.Timestamp.IsZero():
		return fmt.Errorf("%w: timestamp is required", ErrInvalidReading)
	case math.IsNaN(r.Temperature) || math.IsInf(r.Temperature, 0):
		return fmt.Errorf("%w: temperature is not a finite number", ErrInvalidReading)
	case math.IsNaN(r.Humidity) || r.Humidity < 0 || r.Humidity > 100:
		return fmt.Errorf("%w: humidity out of range: %g (must be 0-100)", ErrInvalidReading, r.Humidity)
	}
	return nil
}

// Conditions is a temperature/humidity pair used by the stats view.
type Conditions struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

type DailyStats struct {
	Average        Conditions `json:"average"`
	MinTemperature float64    `json:"min_temperature"`
	MaxTemperature float64    `json:"max_temperature"`
}

// LocationStats summarizes a reduced series for a single location.
type LocationStats struct {
	Location string     `json:"location"`
	Current  Conditions `json:"current"`
	Daily    DailyStats `json:"daily"`
}
