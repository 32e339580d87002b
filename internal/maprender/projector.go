package maprender

import (
	"math"

	"github.com/tidwall/rtree"

	"github.com/busnet/transitcat/internal/geo"
	"github.com/busnet/transitcat/internal/svg"
)

// epsilon is the smallest coordinate extent that still counts as non-zero
// when computing the zoom.
const epsilon = 1e-6

func isZero(v float64) bool {
	return math.Abs(v) < epsilon
}

// SphereProjector maps coordinates onto the canvas so that the bounding box
// of the projected points fits inside the padded area while keeping the
// aspect ratio.
type SphereProjector struct {
	padding float64
	minLon  float64
	maxLat  float64
	zoom    float64
}

// NewSphereProjector fits the given points into a width x height canvas.
// With no points, or a single distinct point, every coordinate projects to
// (padding, padding).
func NewSphereProjector(points []geo.Coordinates, width, height, padding float64) SphereProjector {
	p := SphereProjector{padding: padding}
	bounds, ok := boundsOf(points)
	if !ok {
		return p
	}
	p.minLon = bounds.MinLon
	p.maxLat = bounds.MaxLat

	var widthZoom, heightZoom float64
	hasWidth := !isZero(bounds.LonSpan())
	hasHeight := !isZero(bounds.LatSpan())
	if hasWidth {
		widthZoom = (width - 2*padding) / bounds.LonSpan()
	}
	if hasHeight {
		heightZoom = (height - 2*padding) / bounds.LatSpan()
	}

	switch {
	case hasWidth && hasHeight:
		p.zoom = math.Min(widthZoom, heightZoom)
	case hasWidth:
		p.zoom = widthZoom
	case hasHeight:
		p.zoom = heightZoom
	}
	return p
}

// Project converts a coordinate into a canvas point.
func (p SphereProjector) Project(c geo.Coordinates) svg.Point {
	return svg.Point{
		X: (c.Lng-p.minLon)*p.zoom + p.padding,
		Y: (p.maxLat-c.Lat)*p.zoom + p.padding,
	}
}

// boundsOf indexes the points as degenerate rectangles (x = longitude,
// y = latitude) and reads the extent back from the index.
func boundsOf(points []geo.Coordinates) (geo.CoordinateBounds, bool) {
	if len(points) == 0 {
		return geo.CoordinateBounds{}, false
	}
	var index rtree.RTreeG[int]
	for i, pt := range points {
		corner := [2]float64{pt.Lng, pt.Lat}
		index.Insert(corner, corner, i)
	}
	lo, hi := index.Bounds()
	return geo.CoordinateBounds{
		MinLat: lo[1],
		MaxLat: hi[1],
		MinLon: lo[0],
		MaxLon: hi[0],
	}, true
}
