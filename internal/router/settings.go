package router

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	minutesPerHour     = 60.0
	metersPerKilometer = 1000.0
)

// Settings holds the routing parameters read from routing_settings.
type Settings struct {
	// BusWaitTime is the dwell in minutes before every boarding.
	BusWaitTime int `yaml:"bus_wait_time" validate:"gte=1,lte=1000"`
	// BusVelocity is the bus speed in km/h.
	BusVelocity float64 `yaml:"bus_velocity" validate:"gt=0,lte=1000"`
}

// Validate checks the settings against their allowed ranges.
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid routing settings: %w", err)
	}
	return nil
}

// travelTime converts a road distance in meters into minutes at the
// configured velocity.
func (s Settings) travelTime(meters int) float64 {
	return float64(meters) * minutesPerHour / (s.BusVelocity * metersPerKilometer)
}
