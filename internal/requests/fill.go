package requests

import (
	"log/slog"

	"github.com/busnet/transitcat/internal/catalogue"
	"github.com/busnet/transitcat/internal/logging"
	"github.com/busnet/transitcat/internal/models"
)

// FillSummary counts what Fill registered and what it rejected.
type FillSummary struct {
	Stops          int
	Routes         int
	Distances      int
	RejectedStops  int
	RejectedRoutes int
}

// Fill registers all stops, then all routes, then all road distances, so
// that base requests may reference stops declared later in the document.
// Stops and routes with an empty or already taken name are skipped and
// counted as rejected; the road distances of a rejected stop are ignored.
// A route or distance naming an unknown stop is a *catalogue.IntegrityError.
func Fill(cat *catalogue.Catalogue, in Input, logger *slog.Logger) (FillSummary, error) {
	var summary FillSummary

	added := make([]*models.Stop, len(in.Stops))
	for i, req := range in.Stops {
		stop := models.NewStop(req.Name, req.Position.Lat, req.Position.Lng)
		if !cat.AddStop(stop) {
			summary.RejectedStops++
			warn(logger, "stop_rejected", slog.String("stop", req.Name))
			continue
		}
		added[i] = stop
		summary.Stops++
	}

	for _, req := range in.Buses {
		stops := make([]*models.Stop, 0, len(req.Stops))
		for _, name := range req.Stops {
			stop, ok := cat.GetStop(name)
			if !ok {
				return summary, &catalogue.IntegrityError{
					Op:     "AddRoute",
					From:   req.Name,
					To:     name,
					Reason: "route references an unknown stop",
				}
			}
			stops = append(stops, stop)
		}
		if !cat.AddRoute(models.NewRoute(req.Name, stops, req.RoundTrip)) {
			summary.RejectedRoutes++
			warn(logger, "route_rejected", slog.String("route", req.Name))
			continue
		}
		summary.Routes++
	}

	for i, req := range in.Stops {
		from := added[i]
		if from == nil {
			continue
		}
		for _, d := range req.RoadDistances {
			to, ok := cat.GetStop(d.To)
			if !ok {
				return summary, &catalogue.IntegrityError{
					Op:     "SetStopsDistance",
					From:   req.Name,
					To:     d.To,
					Reason: "road distance to an unknown stop",
				}
			}
			if err := cat.SetStopsDistance(from, to, d.Meters); err != nil {
				return summary, err
			}
			summary.Distances++
		}
	}

	logging.LogOperation(logger, "catalogue_filled",
		slog.String("component", "requests"),
		slog.Int("stops", summary.Stops),
		slog.Int("routes", summary.Routes),
		slog.Int("distances", summary.Distances))

	return summary, nil
}

func warn(logger *slog.Logger, msg string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	args := []any{slog.String("component", "requests")}
	for _, a := range attrs {
		args = append(args, a)
	}
	logger.Warn(msg, args...)
}
