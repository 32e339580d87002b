package models

// Route is a named bus line. Stops holds the full driving sequence: for a
// route that is not a round trip the input sequence is mirrored back to its
// origin when the route is constructed.
type Route struct {
	Name      string
	Stops     []*Stop
	RoundTrip bool
}

// NewRoute builds a route from the stops a bus visits in one direction.
// A round-trip route keeps the sequence as given. Otherwise [s0 ... sn]
// becomes [s0 ... sn, s(n-1) ... s0].
func NewRoute(name string, stops []*Stop, roundTrip bool) *Route {
	driving := make([]*Stop, 0, drivingLength(len(stops), roundTrip))
	driving = append(driving, stops...)

	if !roundTrip && len(stops) > 1 {
		for i := len(stops) - 2; i >= 0; i-- {
			driving = append(driving, stops[i])
		}
	}

	return &Route{
		Name:      name,
		Stops:     driving,
		RoundTrip: roundTrip,
	}
}

func drivingLength(n int, roundTrip bool) int {
	if roundTrip || n == 0 {
		return n
	}
	return 2*n - 1
}

// Empty reports whether the route lacks a name and therefore cannot be registered.
func (r *Route) Empty() bool {
	return r == nil || r.Name == ""
}

// Contains reports whether the driving sequence visits the stop.
func (r *Route) Contains(stop *Stop) bool {
	for _, s := range r.Stops {
		if s == stop {
			return true
		}
	}
	return false
}

// Terminus returns the turnaround stop of a route that is not a round trip,
// i.e. the last stop of the input sequence. Round trips and empty routes
// have no separate terminus.
func (r *Route) Terminus() (*Stop, bool) {
	if r.RoundTrip || len(r.Stops) == 0 {
		return nil, false
	}
	return r.Stops[len(r.Stops)/2], true
}

// RouteStats aggregates the figures reported for a route.
type RouteStats struct {
	Name string
	// StopCount counts every stop of the expanded driving sequence.
	StopCount int
	// UniqueStopCount counts distinct stops; it never exceeds StopCount.
	UniqueStopCount int
	// RouteLength is the sum of recorded road distances in meters.
	RouteLength float64
	// GeoLength is the sum of great-circle distances in meters.
	GeoLength float64
	// Curvature is RouteLength / GeoLength, or 0 when GeoLength is zero.
	Curvature float64
}
