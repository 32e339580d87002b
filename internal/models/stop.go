package models

import "github.com/busnet/transitcat/internal/geo"

// Stop is a named point of the network. Stops are owned by the catalogue and
// shared by pointer; a Stop must not be modified once registered.
type Stop struct {
	Name     string
	Position geo.Coordinates
}

// NewStop creates a stop at the given coordinates.
func NewStop(name string, lat, lng float64) *Stop {
	return &Stop{
		Name:     name,
		Position: geo.Coordinates{Lat: lat, Lng: lng},
	}
}

// Empty reports whether the stop lacks a name and therefore cannot be registered.
func (s *Stop) Empty() bool {
	return s == nil || s.Name == ""
}

// StopStats lists the routes serving a stop.
type StopStats struct {
	Name string
	// Buses is sorted lexicographically and holds each route name once.
	Buses []string
}
