package router

import (
	"fmt"

	"github.com/busnet/transitcat/internal/graph"
	"github.com/busnet/transitcat/internal/models"
)

// stopVertices are the two graph vertices of a stop. Every route edge ends at
// an arrival vertex and starts at a departure vertex, and the only way from
// arrival to departure is the wait edge, so each boarding pays the wait.
type stopVertices struct {
	arrival   graph.VertexID
	departure graph.VertexID
}

// graphBuilder turns the catalogue's routes into a weighted graph whose
// shortest paths are the fastest itineraries. edges[id] describes what the
// graph edge with that id means.
type graphBuilder struct {
	settings Settings
	distance func(from, to *models.Stop, bidirectional bool) (int, bool)

	graph    *graph.DirectedWeightedGraph
	vertices map[*models.Stop]stopVertices
	edges    []Item
}

func (b *graphBuilder) build(routes []*models.Route) {
	stops := servedStops(routes)

	b.graph = graph.NewDirectedWeightedGraph(2 * len(stops))
	b.vertices = make(map[*models.Stop]stopVertices, len(stops))
	b.edges = nil

	b.addWaitEdges(stops)
	for _, route := range routes {
		b.addRouteEdges(route)
	}
}

// servedStops lists every stop visited by at least one route, in order of
// first appearance.
func servedStops(routes []*models.Route) []*models.Stop {
	seen := make(map[*models.Stop]struct{})
	var stops []*models.Stop
	for _, route := range routes {
		for _, stop := range route.Stops {
			if _, ok := seen[stop]; ok {
				continue
			}
			seen[stop] = struct{}{}
			stops = append(stops, stop)
		}
	}
	return stops
}

func (b *graphBuilder) addWaitEdges(stops []*models.Stop) {
	wait := float64(b.settings.BusWaitTime)
	for i, stop := range stops {
		v := stopVertices{
			arrival:   graph.VertexID(2 * i),
			departure: graph.VertexID(2*i + 1),
		}
		b.vertices[stop] = v
		b.addEdge(graph.Edge{From: v.arrival, To: v.departure, Weight: wait},
			WaitItem{Stop: stop, Time: wait})
	}
}

// addRouteEdges emits one edge for every (boarding, alighting) pair of the
// route that can be priced. From each boarding index the running time is
// accumulated hop by hop; a hop with no known distance is skipped and the
// next stop is priced from the last stop that was reached.
func (b *graphBuilder) addRouteEdges(route *models.Route) {
	stops := route.Stops
	bidirectional := !route.RoundTrip

	for i := range stops {
		var total float64
		prev := i
		for j := i + 1; j < len(stops); j++ {
			meters, ok := b.distance(stops[prev], stops[j], bidirectional)
			if !ok {
				continue
			}
			total += b.settings.travelTime(meters)
			prev = j

			b.addEdge(graph.Edge{
				From:   b.vertices[stops[i]].departure,
				To:     b.vertices[stops[j]].arrival,
				Weight: total,
			}, RideItem{Route: route, SpanCount: j - i, Time: total})
		}
	}
}

func (b *graphBuilder) addEdge(edge graph.Edge, meaning Item) {
	id := b.graph.AddEdge(edge)
	if int(id) != len(b.edges) {
		panic(fmt.Sprintf("router: edge id %d out of step with metadata table of %d entries", id, len(b.edges)))
	}
	b.edges = append(b.edges, meaning)
}
