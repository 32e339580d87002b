// Package catalogue stores the stops and routes of a transit network together
// with the directed road distances between stops, and derives per-route and
// per-stop statistics from them.
//
// The catalogue is filled during a single load phase and is read-only
// afterwards. Stops and routes are allocated individually and kept by
// pointer, so a *models.Stop or *models.Route handed out by the catalogue
// stays valid for the catalogue's lifetime no matter how many entities are
// added later.
package catalogue

import (
	"sort"

	"github.com/busnet/transitcat/internal/geo"
	"github.com/busnet/transitcat/internal/models"
)

type stopPair struct {
	from *models.Stop
	to   *models.Stop
}

// Catalogue owns all stops, routes and distances of the network.
type Catalogue struct {
	stops      []*models.Stop
	routes     []*models.Route
	stopIndex  map[string]*models.Stop
	routeIndex map[string]*models.Route
	distances  map[stopPair]int
}

// New creates an empty catalogue.
func New() *Catalogue {
	return &Catalogue{
		stopIndex:  make(map[string]*models.Stop),
		routeIndex: make(map[string]*models.Route),
		distances:  make(map[stopPair]int),
	}
}

// AddStop registers a stop. It returns false and leaves the catalogue
// unchanged when the stop has no name or the name is already taken.
func (c *Catalogue) AddStop(stop *models.Stop) bool {
	if stop.Empty() {
		return false
	}
	if _, exists := c.stopIndex[stop.Name]; exists {
		return false
	}
	c.stops = append(c.stops, stop)
	c.stopIndex[stop.Name] = stop
	return true
}

// AddRoute registers a route. The caller resolves the route's stops against
// this catalogue beforehand; AddRoute does not check them. It returns false
// and leaves the catalogue unchanged when the route has no name or the name
// is already taken.
func (c *Catalogue) AddRoute(route *models.Route) bool {
	if route.Empty() {
		return false
	}
	if _, exists := c.routeIndex[route.Name]; exists {
		return false
	}
	c.routes = append(c.routes, route)
	c.routeIndex[route.Name] = route
	return true
}

// GetStop looks a stop up by name.
func (c *Catalogue) GetStop(name string) (*models.Stop, bool) {
	stop, ok := c.stopIndex[name]
	return stop, ok
}

// GetRoute looks a route up by name.
func (c *Catalogue) GetRoute(name string) (*models.Route, bool) {
	route, ok := c.routeIndex[name]
	return route, ok
}

// Stops returns the registered stops in registration order.
// The slice must not be modified.
func (c *Catalogue) Stops() []*models.Stop {
	return c.stops
}

// Routes returns the registered routes in registration order.
// The slice must not be modified.
func (c *Catalogue) Routes() []*models.Route {
	return c.routes
}

// Counts reports how many stops, routes and directed distances are stored.
func (c *Catalogue) Counts() (stops, routes, distances int) {
	return len(c.stops), len(c.routes), len(c.distances)
}

func (c *Catalogue) registered(stop *models.Stop) bool {
	if stop == nil {
		return false
	}
	return c.stopIndex[stop.Name] == stop
}

// SetStopsDistance records the road distance in meters from one stop to
// another. Both stops must be registered in this catalogue. The first value
// recorded for a directed pair is kept.
func (c *Catalogue) SetStopsDistance(from, to *models.Stop, meters int) error {
	if !c.registered(from) || !c.registered(to) {
		return &IntegrityError{
			Op:     "SetStopsDistance",
			From:   stopName(from),
			To:     stopName(to),
			Reason: "both stops must be registered before a distance is set",
		}
	}
	if meters < 0 {
		return &IntegrityError{
			Op:     "SetStopsDistance",
			From:   from.Name,
			To:     to.Name,
			Reason: "distance must not be negative",
		}
	}

	key := stopPair{from: from, to: to}
	if _, exists := c.distances[key]; !exists {
		c.distances[key] = meters
	}
	return nil
}

// GetStopsDistance returns the recorded distance from one stop to another.
// When no forward distance exists and bidirectional is set, the distance
// recorded in the opposite direction is used instead.
func (c *Catalogue) GetStopsDistance(from, to *models.Stop, bidirectional bool) (int, bool) {
	if from == nil || to == nil {
		return 0, false
	}
	if d, ok := c.distances[stopPair{from: from, to: to}]; ok {
		return d, true
	}
	if bidirectional {
		if d, ok := c.distances[stopPair{from: to, to: from}]; ok {
			return d, true
		}
	}
	return 0, false
}

// GetRouteStats computes the statistics of a route. It returns ErrNotFound
// for an unknown route and an *IntegrityError when two consecutive stops of
// the route have no recorded distance in either direction.
func (c *Catalogue) GetRouteStats(name string) (models.RouteStats, error) {
	route, ok := c.GetRoute(name)
	if !ok {
		return models.RouteStats{}, ErrNotFound
	}

	unique := make(map[*models.Stop]struct{}, len(route.Stops))
	for _, stop := range route.Stops {
		unique[stop] = struct{}{}
	}

	stats := models.RouteStats{
		Name:            route.Name,
		StopCount:       len(route.Stops),
		UniqueStopCount: len(unique),
	}

	for i := 1; i < len(route.Stops); i++ {
		from, to := route.Stops[i-1], route.Stops[i]

		stats.GeoLength += geo.Distance(from.Position, to.Position)

		d, ok := c.GetStopsDistance(from, to, true)
		if !ok {
			return models.RouteStats{}, &IntegrityError{
				Op:     "GetRouteStats",
				From:   from.Name,
				To:     to.Name,
				Reason: "no road distance recorded on route " + route.Name,
			}
		}
		stats.RouteLength += float64(d)
	}

	if stats.GeoLength > 0 {
		stats.Curvature = stats.RouteLength / stats.GeoLength
	}

	return stats, nil
}

// GetStopStats lists the routes whose driving sequence visits the stop.
// It returns ErrNotFound for an unknown stop.
func (c *Catalogue) GetStopStats(name string) (models.StopStats, error) {
	stop, ok := c.GetStop(name)
	if !ok {
		return models.StopStats{}, ErrNotFound
	}

	stats := models.StopStats{
		Name:  stop.Name,
		Buses: []string{},
	}
	for _, route := range c.routes {
		if route.Contains(stop) {
			stats.Buses = append(stats.Buses, route.Name)
		}
	}
	sort.Strings(stats.Buses)

	return stats, nil
}

func stopName(stop *models.Stop) string {
	if stop == nil {
		return "<nil>"
	}
	return stop.Name
}
