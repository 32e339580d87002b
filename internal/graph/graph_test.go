package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeAssignsSequentialIDs(t *testing.T) {
	g := NewDirectedWeightedGraph(3)

	first := g.AddEdge(Edge{From: 0, To: 1, Weight: 1})
	second := g.AddEdge(Edge{From: 1, To: 2, Weight: 2})
	third := g.AddEdge(Edge{From: 0, To: 2, Weight: 5})

	assert.Equal(t, EdgeID(0), first)
	assert.Equal(t, EdgeID(1), second)
	assert.Equal(t, EdgeID(2), third)
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, 3, g.VertexCount())
	assert.Equal(t, []EdgeID{0, 2}, g.IncidentEdges(0))
	assert.Equal(t, Edge{From: 1, To: 2, Weight: 2}, g.Edge(second))
}

func TestAddEdgePanicsOnInvalidInput(t *testing.T) {
	g := NewDirectedWeightedGraph(2)

	assert.Panics(t, func() { g.AddEdge(Edge{From: 0, To: 2, Weight: 1}) })
	assert.Panics(t, func() { g.AddEdge(Edge{From: -1, To: 1, Weight: 1}) })
	assert.Panics(t, func() { g.AddEdge(Edge{From: 0, To: 1, Weight: -0.5}) })
	assert.Zero(t, g.EdgeCount())
}

func TestBuildRoute(t *testing.T) {
	// 0 -> 1 -> 3 costs 3, 0 -> 2 -> 3 costs 4, 0 -> 3 directly costs 10.
	g := NewDirectedWeightedGraph(5)
	g.AddEdge(Edge{From: 0, To: 1, Weight: 1})  // 0
	g.AddEdge(Edge{From: 1, To: 3, Weight: 2})  // 1
	g.AddEdge(Edge{From: 0, To: 2, Weight: 2})  // 2
	g.AddEdge(Edge{From: 2, To: 3, Weight: 2})  // 3
	g.AddEdge(Edge{From: 0, To: 3, Weight: 10}) // 4
	r := NewRouter(g)

	t.Run("shortest path", func(t *testing.T) {
		info, ok := r.BuildRoute(0, 3)
		require.True(t, ok)
		assert.Equal(t, 3.0, info.Weight)
		assert.Equal(t, []EdgeID{0, 1}, info.Edges)
	})

	t.Run("path to itself", func(t *testing.T) {
		info, ok := r.BuildRoute(2, 2)
		require.True(t, ok)
		assert.Zero(t, info.Weight)
		assert.Empty(t, info.Edges)
	})

	t.Run("unreachable vertex", func(t *testing.T) {
		_, ok := r.BuildRoute(0, 4)
		assert.False(t, ok)
	})

	t.Run("edges are directed", func(t *testing.T) {
		_, ok := r.BuildRoute(3, 0)
		assert.False(t, ok)
	})

	t.Run("out of range", func(t *testing.T) {
		_, ok := r.BuildRoute(0, 99)
		assert.False(t, ok)
	})
}

func TestBuildRouteWeightMatchesEdges(t *testing.T) {
	g := NewDirectedWeightedGraph(6)
	for v := 0; v < 5; v++ {
		g.AddEdge(Edge{From: VertexID(v), To: VertexID(v + 1), Weight: float64(v) + 0.5})
	}
	g.AddEdge(Edge{From: 0, To: 5, Weight: 100})
	g.AddEdge(Edge{From: 1, To: 4, Weight: 0})

	info, ok := NewRouter(g).BuildRoute(0, 5)
	require.True(t, ok)

	var sum float64
	for _, id := range info.Edges {
		sum += g.Edge(id).Weight
	}
	assert.InDelta(t, info.Weight, sum, 1e-9)
	assert.Equal(t, 0.5+0+4.5, info.Weight)
}
