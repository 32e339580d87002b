// Package router plans the fastest bus itinerary between two stops.
//
// The catalogue is converted once into a directed weighted graph. Each stop
// served by a route is split into an arrival and a departure vertex joined by
// a wait edge, and every pair of stops reachable along one route without
// changing buses gets its own ride edge priced for the whole ride. A shortest
// path in that graph is therefore an itinerary of alternating waits and rides.
package router

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/busnet/transitcat/internal/catalogue"
	"github.com/busnet/transitcat/internal/clock"
	"github.com/busnet/transitcat/internal/graph"
	"github.com/busnet/transitcat/internal/logging"
	"github.com/busnet/transitcat/internal/models"
)

var (
	// ErrNotFound is returned when a stop is unknown, served by no route, or
	// cannot be reached from the origin.
	ErrNotFound = errors.New("not found")
	// ErrNotInitialized is returned by queries issued before Initialize.
	ErrNotInitialized = errors.New("router is not initialized")
	// ErrAlreadyInitialized is returned by a second call to Initialize.
	ErrAlreadyInitialized = errors.New("router is already initialized")
)

// Router answers itinerary queries against a catalogue that no longer
// changes. It holds the catalogue by reference and never modifies it.
type Router struct {
	catalogue *catalogue.Catalogue
	settings  Settings
	logger    *slog.Logger
	clock     clock.Clock

	graph    *graph.DirectedWeightedGraph
	engine   *graph.Router
	vertices map[*models.Stop]stopVertices
	edges    []Item
}

// New creates a router over a fully loaded catalogue.
func New(cat *catalogue.Catalogue, settings Settings) *Router {
	return NewWithLogger(cat, settings, nil, clock.RealClock{})
}

// NewWithLogger creates a router that reports graph construction to logger.
// A nil clock falls back to the system clock.
func NewWithLogger(cat *catalogue.Catalogue, settings Settings, logger *slog.Logger, c clock.Clock) *Router {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Router{
		catalogue: cat,
		settings:  settings,
		logger:    logger,
		clock:     c,
	}
}

// Initialize builds the routing graph from the current catalogue contents.
// It must run after the catalogue is fully loaded and before any query, and
// only once: later catalogue changes are not reflected in the graph.
func (r *Router) Initialize() error {
	if r.engine != nil {
		return ErrAlreadyInitialized
	}
	if err := r.settings.Validate(); err != nil {
		return err
	}

	start := r.clock.Now()

	b := graphBuilder{
		settings: r.settings,
		distance: r.catalogue.GetStopsDistance,
	}
	b.build(r.catalogue.Routes())

	r.graph = b.graph
	r.vertices = b.vertices
	r.edges = b.edges
	r.engine = graph.NewRouter(r.graph)

	logging.LogOperation(r.logger, "routing_graph_built",
		slog.String("component", "router"),
		slog.Int("vertices", r.graph.VertexCount()),
		slog.Int("edges", r.graph.EdgeCount()),
		slog.Duration("duration", clock.Since(r.clock, start)))

	return nil
}

// GraphStats reports the size of the routing graph; both values are zero
// before Initialize.
func (r *Router) GraphStats() (vertices, edges int) {
	if r.graph == nil {
		return 0, 0
	}
	return r.graph.VertexCount(), r.graph.EdgeCount()
}

// BuildRoute returns the fastest itinerary from one stop to another. The
// itinerary starts with the wait at the origin. ErrNotFound is returned when
// either stop is unknown or not served by any route, or when no path exists.
func (r *Router) BuildRoute(from, to string) (Itinerary, error) {
	if r.engine == nil {
		return Itinerary{}, ErrNotInitialized
	}

	fromVertices, err := r.stopVertices(from)
	if err != nil {
		return Itinerary{}, err
	}
	toVertices, err := r.stopVertices(to)
	if err != nil {
		return Itinerary{}, err
	}

	info, ok := r.engine.BuildRoute(fromVertices.arrival, toVertices.arrival)
	if !ok {
		return Itinerary{}, fmt.Errorf("no path from %q to %q: %w", from, to, ErrNotFound)
	}

	itinerary := Itinerary{
		Items:     make([]Item, 0, len(info.Edges)),
		TotalTime: info.Weight,
	}
	for _, id := range info.Edges {
		itinerary.Items = append(itinerary.Items, r.edges[id])
	}
	return itinerary, nil
}

func (r *Router) stopVertices(name string) (stopVertices, error) {
	stop, ok := r.catalogue.GetStop(name)
	if !ok {
		return stopVertices{}, fmt.Errorf("stop %q: %w", name, ErrNotFound)
	}
	v, ok := r.vertices[stop]
	if !ok {
		return stopVertices{}, fmt.Errorf("stop %q is not served by any route: %w", name, ErrNotFound)
	}
	return v, nil
}
