// Package maprender draws the network as an SVG map: one polyline per route,
// route and stop labels, and a circle per served stop.
package maprender

import (
	"errors"
	"sort"

	"github.com/busnet/transitcat/internal/geo"
	"github.com/busnet/transitcat/internal/models"
	"github.com/busnet/transitcat/internal/svg"
)

// ErrEmptyPalette is returned when there is a route to draw but no color to
// draw it with.
var ErrEmptyPalette = errors.New("render settings have an empty color palette")

const fontFamily = "Verdana"

// RouteSource lists the routes to draw.
type RouteSource interface {
	Routes() []*models.Route
}

// Renderer draws maps with fixed settings. It keeps no state between
// renders.
type Renderer struct {
	settings Settings
}

// NewRenderer creates a renderer.
func NewRenderer(settings Settings) *Renderer {
	return &Renderer{settings: settings}
}

// Settings returns the renderer's settings.
func (r *Renderer) Settings() Settings {
	return r.settings
}

// Render draws every non-empty route of src and returns the SVG document.
func (r *Renderer) Render(src RouteSource) (string, error) {
	doc, err := r.Document(src)
	if err != nil {
		return "", err
	}
	return doc.String(), nil
}

// Document draws the map into a new SVG document. Layers, bottom to top:
// route lines, route labels, stop circles, stop labels.
func (r *Renderer) Document(src RouteSource) (*svg.Document, error) {
	routes := drawableRoutes(src.Routes())
	if len(routes) > 0 && len(r.settings.ColorPalette) == 0 {
		return nil, ErrEmptyPalette
	}

	stops := servedStops(routes)
	positions := make([]geo.Coordinates, len(stops))
	for i, stop := range stops {
		positions[i] = stop.Position
	}
	projector := NewSphereProjector(positions, r.settings.Width, r.settings.Height, r.settings.Padding)

	colors := make([]svg.Color, len(routes))
	for i := range routes {
		colors[i] = r.settings.ColorPalette[i%len(r.settings.ColorPalette)]
	}

	doc := &svg.Document{}
	r.drawRouteLines(doc, routes, colors, projector)
	r.drawRouteLabels(doc, routes, colors, projector)
	r.drawStopCircles(doc, stops, projector)
	r.drawStopLabels(doc, stops, projector)
	return doc, nil
}

// drawableRoutes returns the routes with at least one stop, sorted by name.
func drawableRoutes(all []*models.Route) []*models.Route {
	routes := make([]*models.Route, 0, len(all))
	for _, route := range all {
		if len(route.Stops) > 0 {
			routes = append(routes, route)
		}
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Name < routes[j].Name })
	return routes
}

// servedStops returns the distinct stops visited by routes, sorted by name.
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
	sort.Slice(stops, func(i, j int) bool { return stops[i].Name < stops[j].Name })
	return stops
}

func (r *Renderer) drawRouteLines(doc *svg.Document, routes []*models.Route, colors []svg.Color, p SphereProjector) {
	for i, route := range routes {
		line := &svg.Polyline{PathProps: svg.PathProps{
			Fill:        svg.None,
			Stroke:      colors[i],
			StrokeWidth: r.settings.LineWidth,
			LineCap:     svg.LineCapRound,
			LineJoin:    svg.LineJoinRound,
		}}
		for _, stop := range route.Stops {
			line.AddPoint(p.Project(stop.Position))
		}
		doc.Add(line)
	}
}

func (r *Renderer) drawRouteLabels(doc *svg.Document, routes []*models.Route, colors []svg.Color, p SphereProjector) {
	for i, route := range routes {
		first := route.Stops[0]
		r.addLabel(doc, r.routeLabel(route.Name, p.Project(first.Position), colors[i]))
		if terminus, ok := route.Terminus(); ok && terminus != first {
			r.addLabel(doc, r.routeLabel(route.Name, p.Project(terminus.Position), colors[i]))
		}
	}
}

func (r *Renderer) drawStopCircles(doc *svg.Document, stops []*models.Stop, p SphereProjector) {
	for _, stop := range stops {
		doc.Add(&svg.Circle{
			Center:    p.Project(stop.Position),
			Radius:    r.settings.StopRadius,
			PathProps: svg.PathProps{Fill: svg.NamedColor("white")},
		})
	}
}

func (r *Renderer) drawStopLabels(doc *svg.Document, stops []*models.Stop, p SphereProjector) {
	for _, stop := range stops {
		r.addLabel(doc, svg.Text{
			Position:   p.Project(stop.Position),
			Offset:     r.settings.StopLabelOffset,
			FontSize:   r.settings.StopLabelFontSize,
			FontFamily: fontFamily,
			Data:       stop.Name,
			PathProps:  svg.PathProps{Fill: svg.NamedColor("black")},
		})
	}
}

func (r *Renderer) routeLabel(name string, pos svg.Point, color svg.Color) svg.Text {
	return svg.Text{
		Position:   pos,
		Offset:     r.settings.BusLabelOffset,
		FontSize:   r.settings.BusLabelFontSize,
		FontFamily: fontFamily,
		FontWeight: "bold",
		Data:       name,
		PathProps:  svg.PathProps{Fill: color},
	}
}

// addLabel draws label over an underlayer copy of itself stroked in the
// underlayer color.
func (r *Renderer) addLabel(doc *svg.Document, label svg.Text) {
	underlayer := label
	underlayer.PathProps = svg.PathProps{
		Fill:        r.settings.UnderlayerColor,
		Stroke:      r.settings.UnderlayerColor,
		StrokeWidth: r.settings.UnderlayerWidth,
		LineCap:     svg.LineCapRound,
		LineJoin:    svg.LineJoinRound,
	}
	doc.Add(&underlayer)
	doc.Add(&label)
}
