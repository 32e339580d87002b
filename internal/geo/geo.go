// Package geo holds the coordinate type shared by the catalogue and the map
// renderer together with the great-circle distance used for route curvature.
package geo

import "math"

const (
	// RadiusOfEarthInMeters is the mean Earth radius used for every
	// great-circle computation in the network.
	RadiusOfEarthInMeters = 6371000.0

	degreesToRadians = math.Pi / 180
)

// Coordinates is a point on the Earth's surface in decimal degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Equal reports whether both coordinates denote exactly the same point.
func (c Coordinates) Equal(other Coordinates) bool {
	return c.Lat == other.Lat && c.Lng == other.Lng
}

// Distance returns the great-circle distance between two points in meters.
func Distance(from, to Coordinates) float64 {
	if from.Equal(to) {
		return 0
	}

	lat1 := from.Lat * degreesToRadians
	lat2 := to.Lat * degreesToRadians
	deltaLng := math.Abs(from.Lng-to.Lng) * degreesToRadians

	cosAngle := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(deltaLng)
	// rounding can push the cosine just outside [-1, 1] for near-identical points
	cosAngle = math.Max(-1, math.Min(1, cosAngle))

	return math.Acos(cosAngle) * RadiusOfEarthInMeters
}

// CoordinateBounds represents a bounding box with min/max latitude and longitude
type CoordinateBounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// LatSpan is the north-south extent of the box in degrees.
func (b CoordinateBounds) LatSpan() float64 {
	return b.MaxLat - b.MinLat
}

// LonSpan is the east-west extent of the box in degrees.
func (b CoordinateBounds) LonSpan() float64 {
	return b.MaxLon - b.MinLon
}
