// Package graph implements a directed weighted graph with non-negative edge
// weights and a shortest-path router over it.
package graph

import "fmt"

// VertexID identifies a vertex; vertices are numbered 0..VertexCount()-1.
type VertexID int

// EdgeID identifies an edge. Ids are assigned sequentially in the order edges
// are added, starting at zero.
type EdgeID int

// Edge is a directed, weighted connection between two vertices.
type Edge struct {
	From   VertexID
	To     VertexID
	Weight float64
}

// DirectedWeightedGraph stores edges and, for every vertex, the ids of the
// edges leaving it.
type DirectedWeightedGraph struct {
	edges     []Edge
	incidence [][]EdgeID
}

// NewDirectedWeightedGraph creates a graph with a fixed number of vertices
// and no edges.
func NewDirectedWeightedGraph(vertexCount int) *DirectedWeightedGraph {
	return &DirectedWeightedGraph{
		incidence: make([][]EdgeID, vertexCount),
	}
}

// AddEdge appends an edge and returns its id. It panics if an endpoint is out
// of range or the weight is negative: both are programming errors in the
// caller that builds the graph.
func (g *DirectedWeightedGraph) AddEdge(edge Edge) EdgeID {
	if !g.valid(edge.From) || !g.valid(edge.To) {
		panic(fmt.Sprintf("graph: edge %d->%d out of range for %d vertices", edge.From, edge.To, len(g.incidence)))
	}
	if edge.Weight < 0 {
		panic(fmt.Sprintf("graph: negative weight %v on edge %d->%d", edge.Weight, edge.From, edge.To))
	}

	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, edge)
	g.incidence[edge.From] = append(g.incidence[edge.From], id)
	return id
}

// VertexCount returns the number of vertices.
func (g *DirectedWeightedGraph) VertexCount() int {
	return len(g.incidence)
}

// EdgeCount returns the number of edges added so far.
func (g *DirectedWeightedGraph) EdgeCount() int {
	return len(g.edges)
}

// Edge returns the edge with the given id.
func (g *DirectedWeightedGraph) Edge(id EdgeID) Edge {
	return g.edges[id]
}

// IncidentEdges returns the ids of the edges leaving a vertex.
// The slice must not be modified.
func (g *DirectedWeightedGraph) IncidentEdges(v VertexID) []EdgeID {
	return g.incidence[v]
}

func (g *DirectedWeightedGraph) valid(v VertexID) bool {
	return v >= 0 && int(v) < len(g.incidence)
}
