// Package requests reads the request document, fills the catalogue from its
// base requests and answers its stat requests.
package requests

import (
	"fmt"

	"github.com/busnet/transitcat/internal/geo"
	"github.com/busnet/transitcat/internal/jsondoc"
	"github.com/busnet/transitcat/internal/maprender"
	"github.com/busnet/transitcat/internal/router"
	"github.com/busnet/transitcat/internal/svg"
)

// Stat request types.
const (
	TypeStop  = "Stop"
	TypeBus   = "Bus"
	TypeMap   = "Map"
	TypeRoute = "Route"
	TypeShape = "Shape"
)

// RoadDistance is one entry of a stop's road_distances.
type RoadDistance struct {
	To     string
	Meters int
}

// StopRequest registers a stop and the road distances leaving it.
type StopRequest struct {
	Name          string
	Position      geo.Coordinates
	RoadDistances []RoadDistance
}

// BusRequest registers a route over named stops.
type BusRequest struct {
	Name      string
	Stops     []string
	RoundTrip bool
}

// StatRequest is one query. Name is used by Stop, Bus and Shape requests,
// From and To by Route requests.
type StatRequest struct {
	ID   int
	Type string
	Name string
	From string
	To   string
}

// Input is the decoded request document. Routing and Render are nil when the
// document has no such section.
type Input struct {
	Stops   []StopRequest
	Buses   []BusRequest
	Routing *router.Settings
	Render  *maprender.Settings
	Stats   []StatRequest
}

// ReadInput decodes a request document. Every section is optional.
func ReadInput(doc *jsondoc.Document) (Input, error) {
	root := doc.Root()
	if _, err := root.Map(); err != nil {
		return Input{}, err
	}

	var in Input

	if node, ok := root.Lookup("base_requests"); ok {
		if err := in.readBaseRequests(node); err != nil {
			return Input{}, err
		}
	}

	if node, ok := root.Lookup("routing_settings"); ok {
		settings, err := readRoutingSettings(node)
		if err != nil {
			return Input{}, err
		}
		in.Routing = &settings
	}

	if node, ok := root.Lookup("render_settings"); ok {
		settings, err := readRenderSettings(node)
		if err != nil {
			return Input{}, err
		}
		in.Render = &settings
	}

	if node, ok := root.Lookup("stat_requests"); ok {
		items, err := node.Array()
		if err != nil {
			return Input{}, err
		}
		for _, item := range items {
			req, err := readStatRequest(item)
			if err != nil {
				return Input{}, err
			}
			in.Stats = append(in.Stats, req)
		}
	}

	return in, nil
}

func (in *Input) readBaseRequests(node jsondoc.Node) error {
	items, err := node.Array()
	if err != nil {
		return err
	}
	for _, item := range items {
		kind, err := stringField(item, "type")
		if err != nil {
			return err
		}
		switch kind {
		case "Stop":
			stop, err := readStopRequest(item)
			if err != nil {
				return err
			}
			in.Stops = append(in.Stops, stop)
		case "Bus":
			bus, err := readBusRequest(item)
			if err != nil {
				return err
			}
			in.Buses = append(in.Buses, bus)
		default:
			return fmt.Errorf("%s: unknown base request type %q", item.Path(), kind)
		}
	}
	return nil
}

func readStopRequest(node jsondoc.Node) (StopRequest, error) {
	var (
		req StopRequest
		err error
	)
	if req.Name, err = stringField(node, "name"); err != nil {
		return StopRequest{}, err
	}
	if req.Position.Lat, err = floatField(node, "latitude"); err != nil {
		return StopRequest{}, err
	}
	if req.Position.Lng, err = floatField(node, "longitude"); err != nil {
		return StopRequest{}, err
	}

	distances, ok := node.Lookup("road_distances")
	if !ok {
		return req, nil
	}
	names, err := distances.Keys()
	if err != nil {
		return StopRequest{}, err
	}
	for _, to := range names {
		meters, err := intField(distances, to)
		if err != nil {
			return StopRequest{}, err
		}
		req.RoadDistances = append(req.RoadDistances, RoadDistance{To: to, Meters: meters})
	}
	return req, nil
}

func readBusRequest(node jsondoc.Node) (BusRequest, error) {
	var (
		req BusRequest
		err error
	)
	if req.Name, err = stringField(node, "name"); err != nil {
		return BusRequest{}, err
	}
	if req.RoundTrip, err = boolField(node, "is_roundtrip"); err != nil {
		return BusRequest{}, err
	}

	stops, err := node.Get("stops")
	if err != nil {
		return BusRequest{}, err
	}
	items, err := stops.Array()
	if err != nil {
		return BusRequest{}, err
	}
	req.Stops = make([]string, 0, len(items))
	for _, item := range items {
		name, err := item.String()
		if err != nil {
			return BusRequest{}, err
		}
		req.Stops = append(req.Stops, name)
	}
	return req, nil
}

func readStatRequest(node jsondoc.Node) (StatRequest, error) {
	var (
		req StatRequest
		err error
	)
	if req.ID, err = intField(node, "id"); err != nil {
		return StatRequest{}, err
	}
	if req.Type, err = stringField(node, "type"); err != nil {
		return StatRequest{}, err
	}
	if req.Name, err = optionalString(node, "name"); err != nil {
		return StatRequest{}, err
	}
	if req.From, err = optionalString(node, "from"); err != nil {
		return StatRequest{}, err
	}
	if req.To, err = optionalString(node, "to"); err != nil {
		return StatRequest{}, err
	}
	return req, nil
}

func readRoutingSettings(node jsondoc.Node) (router.Settings, error) {
	var (
		s   router.Settings
		err error
	)
	if s.BusWaitTime, err = intField(node, "bus_wait_time"); err != nil {
		return router.Settings{}, err
	}
	if s.BusVelocity, err = floatField(node, "bus_velocity"); err != nil {
		return router.Settings{}, err
	}
	return s, nil
}

func readRenderSettings(node jsondoc.Node) (maprender.Settings, error) {
	var (
		s   maprender.Settings
		err error
	)
	floats := []struct {
		key string
		dst *float64
	}{
		{"width", &s.Width},
		{"height", &s.Height},
		{"padding", &s.Padding},
		{"line_width", &s.LineWidth},
		{"stop_radius", &s.StopRadius},
		{"underlayer_width", &s.UnderlayerWidth},
	}
	for _, f := range floats {
		if *f.dst, err = floatField(node, f.key); err != nil {
			return maprender.Settings{}, err
		}
	}

	if s.BusLabelFontSize, err = fontSizeField(node, "bus_label_font_size"); err != nil {
		return maprender.Settings{}, err
	}
	if s.StopLabelFontSize, err = fontSizeField(node, "stop_label_font_size"); err != nil {
		return maprender.Settings{}, err
	}
	if s.BusLabelOffset, err = pointField(node, "bus_label_offset"); err != nil {
		return maprender.Settings{}, err
	}
	if s.StopLabelOffset, err = pointField(node, "stop_label_offset"); err != nil {
		return maprender.Settings{}, err
	}

	underlayer, err := node.Get("underlayer_color")
	if err != nil {
		return maprender.Settings{}, err
	}
	if s.UnderlayerColor, err = readColor(underlayer); err != nil {
		return maprender.Settings{}, err
	}

	palette, err := node.Get("color_palette")
	if err != nil {
		return maprender.Settings{}, err
	}
	colors, err := palette.Array()
	if err != nil {
		return maprender.Settings{}, err
	}
	for _, item := range colors {
		c, err := readColor(item)
		if err != nil {
			return maprender.Settings{}, err
		}
		s.ColorPalette = append(s.ColorPalette, c)
	}

	return s, nil
}

// readColor accepts a color name, [r, g, b] or [r, g, b, opacity].
func readColor(node jsondoc.Node) (svg.Color, error) {
	if name, err := node.String(); err == nil {
		return svg.NamedColor(name), nil
	}

	parts, err := node.Array()
	if err != nil || (len(parts) != 3 && len(parts) != 4) {
		return nil, &jsondoc.TypeError{Path: node.Path(), Want: "color", Got: node.Kind()}
	}

	var rgb [3]uint8
	for i := range rgb {
		v, err := parts[i].Int()
		if err != nil {
			return nil, err
		}
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%s: color component %d out of range", parts[i].Path(), v)
		}
		rgb[i] = uint8(v)
	}
	if len(parts) == 3 {
		return svg.RGB{Red: rgb[0], Green: rgb[1], Blue: rgb[2]}, nil
	}

	opacity, err := parts[3].Float()
	if err != nil {
		return nil, err
	}
	return svg.RGBA{Red: rgb[0], Green: rgb[1], Blue: rgb[2], Opacity: opacity}, nil
}

func pointField(node jsondoc.Node, key string) (svg.Point, error) {
	child, err := node.Get(key)
	if err != nil {
		return svg.Point{}, err
	}
	parts, err := child.Array()
	if err != nil {
		return svg.Point{}, err
	}
	if len(parts) != 2 {
		return svg.Point{}, &jsondoc.TypeError{Path: child.Path(), Want: "[dx, dy]", Got: fmt.Sprintf("array of %d", len(parts))}
	}
	x, err := parts[0].Float()
	if err != nil {
		return svg.Point{}, err
	}
	y, err := parts[1].Float()
	if err != nil {
		return svg.Point{}, err
	}
	return svg.Point{X: x, Y: y}, nil
}

func fontSizeField(node jsondoc.Node, key string) (uint32, error) {
	v, err := intField(node, key)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%s.%s: font size must not be negative", node.Path(), key)
	}
	return uint32(v), nil
}

func stringField(node jsondoc.Node, key string) (string, error) {
	child, err := node.Get(key)
	if err != nil {
		return "", err
	}
	return child.String()
}

func optionalString(node jsondoc.Node, key string) (string, error) {
	child, ok := node.Lookup(key)
	if !ok {
		return "", nil
	}
	return child.String()
}

func intField(node jsondoc.Node, key string) (int, error) {
	child, err := node.Get(key)
	if err != nil {
		return 0, err
	}
	return child.Int()
}

func floatField(node jsondoc.Node, key string) (float64, error) {
	child, err := node.Get(key)
	if err != nil {
		return 0, err
	}
	return child.Float()
}

func boolField(node jsondoc.Node, key string) (bool, error) {
	child, err := node.Get(key)
	if err != nil {
		return false, err
	}
	return child.Bool()
}
