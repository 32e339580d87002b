package requests

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/twpayne/go-polyline"

	"github.com/busnet/transitcat/internal/app"
	"github.com/busnet/transitcat/internal/catalogue"
	"github.com/busnet/transitcat/internal/clock"
	"github.com/busnet/transitcat/internal/metrics"
	"github.com/busnet/transitcat/internal/router"
)

// Handler answers stat requests against the application's catalogue,
// router and renderer.
type Handler struct {
	app *app.Application
}

// NewHandler creates a handler. The catalogue must be fully loaded and the
// router, if any, initialized.
func NewHandler(application *app.Application) *Handler {
	return &Handler{app: application}
}

// HandleAll answers requests in order. It stops at the first error, which is
// always fatal: not-found conditions are answered with a NotFoundResult.
func (h *Handler) HandleAll(reqs []StatRequest) ([]Result, error) {
	results := make([]Result, 0, len(reqs))
	for _, req := range reqs {
		res, err := h.Handle(req)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Handle answers a single request.
func (h *Handler) Handle(req StatRequest) (Result, error) {
	c := h.clock()
	start := c.Now()

	res, err := h.dispatch(req)

	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case isNotFound(res):
		outcome = metrics.OutcomeNotFound
	}
	duration := clock.Since(c, start)
	h.app.Metrics.ObserveRequest(req.Type, outcome, duration)

	if h.app.Logger != nil {
		h.app.Logger.Debug("stat_request",
			slog.String("component", "requests"),
			slog.Int("request_id", req.ID),
			slog.String("type", req.Type),
			slog.String("outcome", outcome),
			slog.Duration("duration", duration))
	}

	if err != nil {
		return nil, fmt.Errorf("request %d (%s): %w", req.ID, req.Type, err)
	}
	return res, nil
}

func (h *Handler) clock() clock.Clock {
	if h.app.Clock == nil {
		return clock.RealClock{}
	}
	return h.app.Clock
}

func isNotFound(r Result) bool {
	_, ok := r.(NotFoundResult)
	return ok
}

func (h *Handler) dispatch(req StatRequest) (Result, error) {
	switch req.Type {
	case TypeStop:
		return h.stop(req)
	case TypeBus:
		return h.bus(req)
	case TypeMap:
		return h.renderMap(req)
	case TypeRoute:
		return h.route(req)
	case TypeShape:
		return h.shape(req)
	}
	return NotFoundResult{ID: req.ID}, nil
}

func (h *Handler) stop(req StatRequest) (Result, error) {
	stats, err := h.app.Catalogue.GetStopStats(req.Name)
	if errors.Is(err, catalogue.ErrNotFound) {
		return NotFoundResult{ID: req.ID}, nil
	}
	if err != nil {
		return nil, err
	}
	return StopResult{ID: req.ID, Stats: stats}, nil
}

func (h *Handler) bus(req StatRequest) (Result, error) {
	stats, err := h.app.Catalogue.GetRouteStats(req.Name)
	if errors.Is(err, catalogue.ErrNotFound) {
		return NotFoundResult{ID: req.ID}, nil
	}
	if err != nil {
		return nil, err
	}
	return BusResult{ID: req.ID, Stats: stats}, nil
}

func (h *Handler) renderMap(req StatRequest) (Result, error) {
	if h.app.Renderer == nil {
		h.unavailable(req, "render_settings")
		return NotFoundResult{ID: req.ID}, nil
	}
	doc, err := h.app.Renderer.Render(h.app.Catalogue)
	if err != nil {
		return nil, err
	}
	return MapResult{ID: req.ID, SVG: doc}, nil
}

func (h *Handler) route(req StatRequest) (Result, error) {
	if h.app.Router == nil {
		h.unavailable(req, "routing_settings")
		return NotFoundResult{ID: req.ID}, nil
	}
	itinerary, err := h.app.Router.BuildRoute(req.From, req.To)
	if errors.Is(err, router.ErrNotFound) {
		return NotFoundResult{ID: req.ID}, nil
	}
	if err != nil {
		return nil, err
	}
	return RouteResult{ID: req.ID, Itinerary: itinerary}, nil
}

func (h *Handler) shape(req StatRequest) (Result, error) {
	route, ok := h.app.Catalogue.GetRoute(req.Name)
	if !ok {
		return NotFoundResult{ID: req.ID}, nil
	}
	coords := make([][]float64, len(route.Stops))
	for i, stop := range route.Stops {
		coords[i] = []float64{stop.Position.Lat, stop.Position.Lng}
	}
	return ShapeResult{
		ID:        req.ID,
		Points:    string(polyline.EncodeCoords(coords)),
		StopCount: len(route.Stops),
	}, nil
}

func (h *Handler) unavailable(req StatRequest, section string) {
	if h.app.Logger == nil {
		return
	}
	h.app.Logger.Warn("request_unanswerable",
		slog.String("component", "requests"),
		slog.Int("request_id", req.ID),
		slog.String("type", req.Type),
		slog.String("missing_section", section))
}
