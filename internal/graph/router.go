package graph

import (
	"container/heap"
	"math"
)

// RouteInfo is a shortest path: the edges to follow in travel order and the
// sum of their weights.
type RouteInfo struct {
	Weight float64
	Edges  []EdgeID
}

// Router answers shortest-path queries over a graph that no longer changes.
type Router struct {
	graph *DirectedWeightedGraph
}

// NewRouter creates a router. The graph must not be modified afterwards.
func NewRouter(g *DirectedWeightedGraph) *Router {
	return &Router{graph: g}
}

// BuildRoute finds a minimum-weight path between two vertices using
// Dijkstra's algorithm. It reports false when the target is unreachable or
// either vertex is out of range. A path from a vertex to itself is empty and
// weighs zero.
func (r *Router) BuildRoute(from, to VertexID) (RouteInfo, bool) {
	if !r.graph.valid(from) || !r.graph.valid(to) {
		return RouteInfo{}, false
	}

	n := r.graph.VertexCount()
	dist := make([]float64, n)
	prevEdge := make([]EdgeID, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prevEdge[i] = -1
	}
	dist[from] = 0

	queue := &vertexQueue{{vertex: from, dist: 0}}
	for queue.Len() > 0 {
		item := heap.Pop(queue).(queueItem)
		if item.dist > dist[item.vertex] {
			continue
		}
		if item.vertex == to {
			break
		}
		for _, id := range r.graph.IncidentEdges(item.vertex) {
			edge := r.graph.Edge(id)
			candidate := item.dist + edge.Weight
			if candidate < dist[edge.To] {
				dist[edge.To] = candidate
				prevEdge[edge.To] = id
				heap.Push(queue, queueItem{vertex: edge.To, dist: candidate})
			}
		}
	}

	if math.IsInf(dist[to], 1) {
		return RouteInfo{}, false
	}

	var edges []EdgeID
	for v := to; v != from; {
		id := prevEdge[v]
		edges = append(edges, id)
		v = r.graph.Edge(id).From
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	return RouteInfo{Weight: dist[to], Edges: edges}, true
}

type queueItem struct {
	vertex VertexID
	dist   float64
}

// vertexQueue is a min-heap of tentative distances.
type vertexQueue []queueItem

func (q vertexQueue) Len() int           { return len(q) }
func (q vertexQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q vertexQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *vertexQueue) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *vertexQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
