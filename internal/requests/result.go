package requests

import (
	"fmt"

	"github.com/busnet/transitcat/internal/jsondoc"
	"github.com/busnet/transitcat/internal/models"
	"github.com/busnet/transitcat/internal/router"
)

const notFoundMessage = "not found"

// Result is the answer to one stat request: one of NotFoundResult,
// StopResult, BusResult, MapResult, RouteResult or ShapeResult.
type Result interface {
	RequestID() int
	result()
}

// NotFoundResult answers a request naming an unknown entity, an unknown
// request type, or a route query with no path.
type NotFoundResult struct{ ID int }

// StopResult answers a Stop request.
type StopResult struct {
	ID    int
	Stats models.StopStats
}

// BusResult answers a Bus request.
type BusResult struct {
	ID    int
	Stats models.RouteStats
}

// MapResult answers a Map request with the rendered SVG document.
type MapResult struct {
	ID  int
	SVG string
}

// RouteResult answers a Route request.
type RouteResult struct {
	ID        int
	Itinerary router.Itinerary
}

// ShapeResult answers a Shape request with the route's driving sequence as
// an encoded polyline.
type ShapeResult struct {
	ID        int
	Points    string
	StopCount int
}

func (r NotFoundResult) RequestID() int { return r.ID }
func (r StopResult) RequestID() int     { return r.ID }
func (r BusResult) RequestID() int      { return r.ID }
func (r MapResult) RequestID() int      { return r.ID }
func (r RouteResult) RequestID() int    { return r.ID }
func (r ShapeResult) RequestID() int    { return r.ID }

func (NotFoundResult) result() {}
func (StopResult) result()     {}
func (BusResult) result()      {}
func (MapResult) result()      {}
func (RouteResult) result()    {}
func (ShapeResult) result()    {}

// Encode converts results into the response document, an array with one
// object per result.
func Encode(results []Result) (any, error) {
	b := jsondoc.NewBuilder().StartArray()
	for _, r := range results {
		b.Value(resultValue(r))
	}
	return b.EndArray().Build()
}

func resultValue(r Result) any {
	b := jsondoc.NewBuilder().StartMap().Key("request_id").Value(r.RequestID())

	switch r := r.(type) {
	case NotFoundResult:
		b.Key("error_message").Value(notFoundMessage)
	case StopResult:
		b.Key("buses").StartArray()
		for _, name := range r.Stats.Buses {
			b.Value(name)
		}
		b.EndArray()
	case BusResult:
		b.Key("curvature").Value(r.Stats.Curvature).
			Key("route_length").Value(r.Stats.RouteLength).
			Key("stop_count").Value(r.Stats.StopCount).
			Key("unique_stop_count").Value(r.Stats.UniqueStopCount)
	case MapResult:
		b.Key("map").Value(r.SVG)
	case RouteResult:
		b.Key("items").StartArray()
		for _, item := range r.Itinerary.Items {
			b.Value(itemValue(item))
		}
		b.EndArray().Key("total_time").Value(r.Itinerary.TotalTime)
	case ShapeResult:
		b.Key("points").Value(r.Points).
			Key("stop_count").Value(r.StopCount)
	default:
		panic(fmt.Sprintf("requests: unexpected result type %T", r))
	}

	v, err := b.EndMap().Build()
	if err != nil {
		panic(fmt.Sprintf("requests: encoding %T: %v", r, err))
	}
	return v
}

func itemValue(item router.Item) any {
	b := jsondoc.NewBuilder().StartMap()
	switch item := item.(type) {
	case router.WaitItem:
		b.Key("type").Value("Wait").
			Key("stop_name").Value(item.Stop.Name).
			Key("time").Value(item.Time)
	case router.RideItem:
		b.Key("type").Value("Bus").
			Key("bus").Value(item.Route.Name).
			Key("span_count").Value(item.SpanCount).
			Key("time").Value(item.Time)
	default:
		panic(fmt.Sprintf("requests: unexpected itinerary item %T", item))
	}
	v, err := b.EndMap().Build()
	if err != nil {
		panic(fmt.Sprintf("requests: encoding %T: %v", item, err))
	}
	return v
}
