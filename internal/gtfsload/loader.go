// Package gtfsload builds catalogue stops, routes and road distances from a
// GTFS static feed.
package gtfsload

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/OneBusAway/go-gtfs"

	"github.com/busnet/transitcat/internal/catalogue"
	"github.com/busnet/transitcat/internal/geo"
	"github.com/busnet/transitcat/internal/logging"
	"github.com/busnet/transitcat/internal/models"
)

// Summary counts what a feed contributed to the catalogue.
type Summary struct {
	Stops         int
	Routes        int
	Distances     int
	SkippedStops  int
	SkippedRoutes int
	Warnings      int
}

// Load parses a GTFS zip archive and adds its network to cat.
//
// Stops without coordinates are skipped. Stops are registered by name, so a
// second GTFS stop with an already registered name is merged into the first.
// Each GTFS route contributes the stop sequence of its longest trip as a
// round-trip route named by its short name, or its id when the short name
// is empty. Road distances between consecutive stops come from
// shape_dist_traveled when both stop times carry it, and from the rounded
// great-circle distance otherwise.
func Load(data []byte, cat *catalogue.Catalogue, logger *slog.Logger) (Summary, error) {
	static, err := gtfs.ParseStatic(data, gtfs.ParseStaticOptions{})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to parse GTFS static data: %w", err)
	}

	summary := Summary{Warnings: len(static.Warnings)}

	stops := registerStops(static, cat, &summary)
	trips := longestTrips(static.Trips)

	for _, r := range static.Routes {
		trip, ok := trips[r.Id]
		if !ok {
			summary.SkippedRoutes++
			continue
		}

		sequence, shapeDist := resolveStops(trip, stops)
		if len(sequence) < 2 {
			summary.SkippedRoutes++
			continue
		}

		for i := 1; i < len(sequence); i++ {
			meters := segmentLength(sequence[i-1], sequence[i], shapeDist[i-1], shapeDist[i])
			if err := cat.SetStopsDistance(sequence[i-1], sequence[i], meters); err != nil {
				return summary, fmt.Errorf("route %s: %w", r.Id, err)
			}
			summary.Distances++
		}

		name := r.ShortName
		if name == "" {
			name = r.Id
		}
		if !cat.AddRoute(models.NewRoute(name, sequence, true)) {
			summary.SkippedRoutes++
			continue
		}
		summary.Routes++
	}

	logging.LogOperation(logger, "gtfs_feed_loaded",
		slog.String("component", "gtfsload"),
		slog.Int("stops", summary.Stops),
		slog.Int("routes", summary.Routes),
		slog.Int("distances", summary.Distances),
		slog.Int("skipped_stops", summary.SkippedStops),
		slog.Int("skipped_routes", summary.SkippedRoutes),
		slog.Int("warnings", summary.Warnings))

	return summary, nil
}

// registerStops adds every stop with coordinates and maps GTFS stop ids to
// catalogue stops.
func registerStops(static *gtfs.Static, cat *catalogue.Catalogue, summary *Summary) map[string]*models.Stop {
	byID := make(map[string]*models.Stop, len(static.Stops))
	for _, s := range static.Stops {
		if s.Latitude == nil || s.Longitude == nil {
			summary.SkippedStops++
			continue
		}
		name := s.Name
		if name == "" {
			name = s.Id
		}
		stop := models.NewStop(name, *s.Latitude, *s.Longitude)
		if cat.AddStop(stop) {
			summary.Stops++
			byID[s.Id] = stop
			continue
		}
		summary.SkippedStops++
		if existing, ok := cat.GetStop(name); ok {
			byID[s.Id] = existing
		}
	}
	return byID
}

// longestTrips picks, per route id, the trip with the most stop times. Ties
// go to the trip listed first.
func longestTrips(trips []gtfs.ScheduledTrip) map[string]*gtfs.ScheduledTrip {
	longest := make(map[string]*gtfs.ScheduledTrip)
	for i := range trips {
		t := &trips[i]
		if t.Route == nil {
			continue
		}
		if best, ok := longest[t.Route.Id]; !ok || len(t.StopTimes) > len(best.StopTimes) {
			longest[t.Route.Id] = t
		}
	}
	return longest
}

// resolveStops returns the trip's catalogue stops in stop_sequence order
// together with their shape_dist_traveled values, dropping stop times whose
// stop was not registered and consecutive repeats of the same stop.
func resolveStops(trip *gtfs.ScheduledTrip, stops map[string]*models.Stop) ([]*models.Stop, []*float64) {
	order := make([]int, len(trip.StopTimes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return trip.StopTimes[order[a]].StopSequence < trip.StopTimes[order[b]].StopSequence
	})

	var (
		sequence  []*models.Stop
		shapeDist []*float64
	)
	for _, i := range order {
		st := &trip.StopTimes[i]
		if st.Stop == nil {
			continue
		}
		stop, ok := stops[st.Stop.Id]
		if !ok {
			continue
		}
		if n := len(sequence); n > 0 && sequence[n-1] == stop {
			continue
		}
		sequence = append(sequence, stop)
		shapeDist = append(shapeDist, st.ShapeDistanceTraveled)
	}
	return sequence, shapeDist
}

func segmentLength(from, to *models.Stop, fromDist, toDist *float64) int {
	if fromDist != nil && toDist != nil {
		if d := *toDist - *fromDist; d > 0 {
			return int(math.Round(d))
		}
	}
	return int(math.Round(geo.Distance(from.Position, to.Position)))
}
