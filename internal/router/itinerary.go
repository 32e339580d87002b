package router

import "github.com/busnet/transitcat/internal/models"

// Item is one segment of an itinerary: a WaitItem or a RideItem.
// The interface is sealed; consumers switch over the two concrete types.
type Item interface {
	// Duration is the segment time in minutes.
	Duration() float64
	item()
}

// WaitItem is the mandatory dwell at a stop before boarding.
type WaitItem struct {
	Stop *models.Stop
	Time float64
}

// RideItem is a ride on one route without changing buses.
type RideItem struct {
	Route *models.Route
	// SpanCount is the number of positions advanced along the route's
	// driving sequence between boarding and alighting.
	SpanCount int
	Time      float64
}

func (w WaitItem) Duration() float64 { return w.Time }
func (r RideItem) Duration() float64 { return r.Time }

func (WaitItem) item() {}
func (RideItem) item() {}

// Itinerary is the fastest way between two stops. TotalTime equals the sum
// of the item durations.
type Itinerary struct {
	Items     []Item
	TotalTime float64
}
