package router

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busnet/transitcat/internal/catalogue"
	"github.com/busnet/transitcat/internal/clock"
	"github.com/busnet/transitcat/internal/logging"
	"github.com/busnet/transitcat/internal/models"
)

// network is a small fixture describing stops, forward distances and routes.
type network struct {
	stops     []string
	distances []struct {
		from, to string
		meters   int
	}
	routes []struct {
		name      string
		stops     []string
		roundTrip bool
	}
}

func (n network) distance(from, to string, meters int) network {
	n.distances = append(n.distances, struct {
		from, to string
		meters   int
	}{from, to, meters})
	return n
}

func (n network) route(name string, roundTrip bool, stops ...string) network {
	n.routes = append(n.routes, struct {
		name      string
		stops     []string
		roundTrip bool
	}{name, stops, roundTrip})
	return n
}

func (n network) build(t *testing.T) *catalogue.Catalogue {
	t.Helper()
	c := catalogue.New()
	for i, name := range n.stops {
		require.True(t, c.AddStop(models.NewStop(name, 55+float64(i)*0.001, 37)))
	}
	for _, d := range n.distances {
		from, _ := c.GetStop(d.from)
		to, _ := c.GetStop(d.to)
		require.NoError(t, c.SetStopsDistance(from, to, d.meters))
	}
	for _, r := range n.routes {
		stops := make([]*models.Stop, 0, len(r.stops))
		for _, name := range r.stops {
			stop, ok := c.GetStop(name)
			require.True(t, ok)
			stops = append(stops, stop)
		}
		require.True(t, c.AddRoute(models.NewRoute(r.name, stops, r.roundTrip)))
	}
	return c
}

// oneKmPerMinute waits five minutes per boarding and drives 1000 m per minute.
var oneKmPerMinute = Settings{BusWaitTime: 5, BusVelocity: 60}

func newRouter(t *testing.T, c *catalogue.Catalogue, settings Settings) *Router {
	t.Helper()
	r := New(c, settings)
	require.NoError(t, r.Initialize())
	return r
}

func assertItemsSum(t *testing.T, itinerary Itinerary) {
	t.Helper()
	var sum float64
	for _, item := range itinerary.Items {
		sum += item.Duration()
	}
	assert.InDelta(t, itinerary.TotalTime, sum, 1e-9)
}

func TestBuildRouteRidesThroughIntermediateStops(t *testing.T) {
	c := network{stops: []string{"A", "B", "C"}}.
		distance("A", "B", 1000).
		distance("B", "C", 1000).
		route("R", true, "A", "B", "C").
		build(t)
	r := newRouter(t, c, oneKmPerMinute)

	itinerary, err := r.BuildRoute("A", "C")
	require.NoError(t, err)

	a, _ := c.GetStop("A")
	route, _ := c.GetRoute("R")
	assert.Equal(t, []Item{
		WaitItem{Stop: a, Time: 5},
		RideItem{Route: route, SpanCount: 2, Time: 2},
	}, itinerary.Items)
	assert.Equal(t, 7.0, itinerary.TotalTime)
	assertItemsSum(t, itinerary)
}

func TestBuildRouteWithTransfer(t *testing.T) {
	c := network{stops: []string{"A", "B", "C"}}.
		distance("A", "B", 1000).
		distance("B", "C", 2000).
		route("first", false, "A", "B").
		route("second", false, "B", "C").
		build(t)
	r := newRouter(t, c, Settings{BusWaitTime: 2, BusVelocity: 60})

	itinerary, err := r.BuildRoute("A", "C")
	require.NoError(t, err)
	require.Len(t, itinerary.Items, 4)

	wait, ok := itinerary.Items[2].(WaitItem)
	require.True(t, ok, "a transfer waits at the interchange")
	assert.Equal(t, "B", wait.Stop.Name)

	ride, ok := itinerary.Items[3].(RideItem)
	require.True(t, ok)
	assert.Equal(t, "second", ride.Route.Name)
	assert.Equal(t, 1, ride.SpanCount)
	assert.Equal(t, 2.0, ride.Time)

	assert.Equal(t, 7.0, itinerary.TotalTime)
	assertItemsSum(t, itinerary)
}

func TestBuildRouteNotFound(t *testing.T) {
	c := network{stops: []string{"A", "B", "C", "D", "Lonely"}}.
		distance("A", "B", 1000).
		distance("C", "D", 1000).
		route("left", false, "A", "B").
		route("right", false, "C", "D").
		build(t)
	r := newRouter(t, c, oneKmPerMinute)

	tests := []struct {
		name     string
		from, to string
	}{
		{name: "unknown origin", from: "Nowhere", to: "A"},
		{name: "unknown destination", from: "A", to: "Nowhere"},
		{name: "stop served by no route", from: "A", to: "Lonely"},
		{name: "disconnected components", from: "A", to: "D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.BuildRoute(tt.from, tt.to)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBuildRouteSameStop(t *testing.T) {
	c := network{stops: []string{"A", "B"}}.
		distance("A", "B", 1000).
		route("R", false, "A", "B").
		build(t)
	r := newRouter(t, c, oneKmPerMinute)

	itinerary, err := r.BuildRoute("A", "A")
	require.NoError(t, err)
	assert.Empty(t, itinerary.Items)
	assert.Zero(t, itinerary.TotalTime)
}

func TestReverseDistanceOnlyForLinearRoutes(t *testing.T) {
	t.Run("linear route falls back to the reverse distance", func(t *testing.T) {
		c := network{stops: []string{"A", "B"}}.
			distance("A", "B", 3000).
			route("R", false, "A", "B").
			build(t)
		r := newRouter(t, c, oneKmPerMinute)

		itinerary, err := r.BuildRoute("B", "A")
		require.NoError(t, err)
		assert.Equal(t, 8.0, itinerary.TotalTime)
	})

	t.Run("round trip uses recorded directions only", func(t *testing.T) {
		c := network{stops: []string{"A", "B"}}.
			distance("A", "B", 3000).
			route("R", true, "A", "B", "A").
			build(t)
		r := newRouter(t, c, oneKmPerMinute)

		_, err := r.BuildRoute("B", "A")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSpanCountCountsPositionsNotPricedHops(t *testing.T) {
	// B->C is unknown, so the ride from A to D is priced A->B then B->D while
	// still advancing three positions along the route.
	c := network{stops: []string{"A", "B", "C", "D"}}.
		distance("A", "B", 1000).
		distance("B", "D", 3000).
		distance("C", "D", 1000).
		route("R", true, "A", "B", "C", "D").
		build(t)
	r := newRouter(t, c, oneKmPerMinute)

	itinerary, err := r.BuildRoute("A", "D")
	require.NoError(t, err)
	require.Len(t, itinerary.Items, 2)

	ride := itinerary.Items[1].(RideItem)
	assert.Equal(t, 3, ride.SpanCount)
	assert.Equal(t, 4.0, ride.Time)
	assert.Equal(t, 9.0, itinerary.TotalTime)
}

func TestGraphShape(t *testing.T) {
	c := network{stops: []string{"A", "B", "C", "Unused"}}.
		distance("A", "B", 1000).
		distance("B", "C", 1000).
		route("R", true, "A", "B", "C").
		build(t)
	r := New(c, oneKmPerMinute)

	vertices, edges := r.GraphStats()
	assert.Zero(t, vertices)
	assert.Zero(t, edges)

	require.NoError(t, r.Initialize())

	vertices, edges = r.GraphStats()
	assert.Equal(t, 6, vertices, "two vertices per served stop")
	assert.Equal(t, 3+3, edges, "three waits plus A-B, A-C, B-C rides")
}

func TestLinearRouteGetsQuadraticRideEdges(t *testing.T) {
	n := network{stops: []string{"S0", "S1", "S2", "S3"}}
	for i := 0; i < 3; i++ {
		n = n.distance(n.stops[i], n.stops[i+1], 500)
	}
	c := n.route("R", false, n.stops...).build(t)
	r := newRouter(t, c, oneKmPerMinute)

	// The expanded sequence has seven stops, so every ordered pair of
	// positions yields a ride edge: 7*6/2 = 21, plus four wait edges.
	_, edges := r.GraphStats()
	assert.Equal(t, 21+4, edges)
}

func TestInitialize(t *testing.T) {
	c := network{stops: []string{"A", "B"}}.
		distance("A", "B", 1000).
		route("R", false, "A", "B").
		build(t)

	t.Run("query before initialization", func(t *testing.T) {
		_, err := New(c, oneKmPerMinute).BuildRoute("A", "B")
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("second initialization", func(t *testing.T) {
		r := newRouter(t, c, oneKmPerMinute)
		assert.ErrorIs(t, r.Initialize(), ErrAlreadyInitialized)
	})

	t.Run("invalid settings", func(t *testing.T) {
		for _, settings := range []Settings{
			{BusWaitTime: 0, BusVelocity: 60},
			{BusWaitTime: 6, BusVelocity: 0},
			{BusWaitTime: 1001, BusVelocity: 60},
		} {
			assert.Error(t, New(c, settings).Initialize(), "%+v", settings)
		}
	})

	t.Run("logs graph size", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)
		mock := clock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		mock.SetStep(time.Millisecond)

		r := NewWithLogger(c, oneKmPerMinute, logger, mock)
		require.NoError(t, r.Initialize())

		output := buf.String()
		assert.Contains(t, output, `"msg":"routing_graph_built"`)
		assert.Contains(t, output, `"component":"router"`)
		assert.Contains(t, output, `"vertices":4`)
	})
}

func TestTravelTime(t *testing.T) {
	settings := Settings{BusWaitTime: 6, BusVelocity: 40}
	assert.InDelta(t, 1.5, settings.travelTime(1000), 1e-12)
	assert.Zero(t, settings.travelTime(0))
}
