package requests

import (
	"fmt"
	"log/slog"

	"github.com/busnet/transitcat/internal/app"
	"github.com/busnet/transitcat/internal/clock"
	"github.com/busnet/transitcat/internal/logging"
	"github.com/busnet/transitcat/internal/maprender"
	"github.com/busnet/transitcat/internal/router"
)

// Prepare runs the load phase: it fills the application's catalogue from the
// base requests, then builds the router and the renderer when their
// settings are available. Routing settings from the document take
// precedence over the configured fallback. After Prepare the catalogue must
// not change.
func Prepare(application *app.Application, in Input) (FillSummary, error) {
	c := application.Clock
	if c == nil {
		c = clock.RealClock{}
	}
	start := c.Now()

	summary, err := Fill(application.Catalogue, in, application.Logger)
	if err != nil {
		return summary, fmt.Errorf("fill catalogue: %w", err)
	}

	routing := in.Routing
	if routing == nil {
		routing = application.Config.Routing
	}
	if routing != nil {
		rt := router.NewWithLogger(application.Catalogue, *routing, application.Logger, c)
		if err := rt.Initialize(); err != nil {
			return summary, fmt.Errorf("build router: %w", err)
		}
		application.Router = rt
	}

	if in.Render != nil {
		if err := in.Render.Validate(); err != nil {
			return summary, err
		}
		application.Renderer = maprender.NewRenderer(*in.Render)
	}

	duration := clock.Since(c, start)
	stops, routes, _ := application.Catalogue.Counts()
	var vertices, edges int
	if application.Router != nil {
		vertices, edges = application.Router.GraphStats()
	}
	application.Metrics.SetNetwork(stops, routes, vertices, edges)
	application.Metrics.SetLoadDuration(duration)

	logging.LogOperation(application.Logger, "load_phase_complete",
		slog.String("component", "requests"),
		slog.Bool("routing", application.Router != nil),
		slog.Bool("rendering", application.Renderer != nil),
		slog.Duration("duration", duration))

	return summary, nil
}
