// Package svg writes the small subset of SVG 1.1 used by the map renderer:
// circles, polylines and text with fill and stroke properties.
package svg

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Color is one of NoColor, NamedColor, RGB or RGBA.
type Color interface {
	String() string
	color()
}

// NoColor renders as "none".
type NoColor struct{}

// NamedColor is a CSS color keyword or any literal color string.
type NamedColor string

// RGB is an opaque color.
type RGB struct {
	Red, Green, Blue uint8
}

// RGBA is a color with opacity in [0, 1].
type RGBA struct {
	Red, Green, Blue uint8
	Opacity          float64
}

// None is the explicit absence of paint.
var None Color = NoColor{}

func (NoColor) String() string      { return "none" }
func (c NamedColor) String() string { return string(c) }
func (c RGB) String() string        { return fmt.Sprintf("rgb(%d,%d,%d)", c.Red, c.Green, c.Blue) }
func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.Red, c.Green, c.Blue, number(c.Opacity))
}

func (NoColor) color()    {}
func (NamedColor) color() {}
func (RGB) color()        {}
func (RGBA) color()       {}

// LineCap is the stroke-linecap value. The zero value omits the attribute.
type LineCap string

const (
	LineCapButt   LineCap = "butt"
	LineCapRound  LineCap = "round"
	LineCapSquare LineCap = "square"
)

// LineJoin is the stroke-linejoin value. The zero value omits the attribute.
type LineJoin string

const (
	LineJoinArcs      LineJoin = "arcs"
	LineJoinBevel     LineJoin = "bevel"
	LineJoinMiter     LineJoin = "miter"
	LineJoinMiterClip LineJoin = "miter-clip"
	LineJoinRound     LineJoin = "round"
)

// Point is a position in SVG user units.
type Point struct {
	X, Y float64
}

// PathProps are the presentation attributes shared by all shapes. Unset
// fields (nil colors, zero width, empty cap and join) are not written.
type PathProps struct {
	Fill        Color
	Stroke      Color
	StrokeWidth float64
	LineCap     LineCap
	LineJoin    LineJoin
}

func (p PathProps) writeAttrs(sb *strings.Builder) {
	if p.Fill != nil {
		attr(sb, "fill", p.Fill.String())
	}
	if p.Stroke != nil {
		attr(sb, "stroke", p.Stroke.String())
	}
	if p.StrokeWidth != 0 {
		attr(sb, "stroke-width", number(p.StrokeWidth))
	}
	if p.LineCap != "" {
		attr(sb, "stroke-linecap", string(p.LineCap))
	}
	if p.LineJoin != "" {
		attr(sb, "stroke-linejoin", string(p.LineJoin))
	}
}

// Object is a renderable SVG element.
type Object interface {
	writeTo(sb *strings.Builder)
}

// Circle is a <circle> element.
type Circle struct {
	PathProps
	Center Point
	Radius float64
}

func (c *Circle) writeTo(sb *strings.Builder) {
	sb.WriteString("<circle")
	attr(sb, "cx", number(c.Center.X))
	attr(sb, "cy", number(c.Center.Y))
	attr(sb, "r", number(c.Radius))
	c.writeAttrs(sb)
	sb.WriteString("/>")
}

// Polyline is a <polyline> element.
type Polyline struct {
	PathProps
	Points []Point
}

// AddPoint appends a vertex.
func (p *Polyline) AddPoint(pt Point) *Polyline {
	p.Points = append(p.Points, pt)
	return p
}

func (p *Polyline) writeTo(sb *strings.Builder) {
	coords := make([]string, len(p.Points))
	for i, pt := range p.Points {
		coords[i] = number(pt.X) + "," + number(pt.Y)
	}
	sb.WriteString("<polyline")
	attr(sb, "points", strings.Join(coords, " "))
	p.writeAttrs(sb)
	sb.WriteString("/>")
}

// Text is a <text> element. Data is escaped when rendered.
type Text struct {
	PathProps
	Position   Point
	Offset     Point
	FontSize   uint32
	FontFamily string
	FontWeight string
	Data       string
}

func (t *Text) writeTo(sb *strings.Builder) {
	sb.WriteString("<text")
	t.writeAttrs(sb)
	attr(sb, "x", number(t.Position.X))
	attr(sb, "y", number(t.Position.Y))
	attr(sb, "dx", number(t.Offset.X))
	attr(sb, "dy", number(t.Offset.Y))
	attr(sb, "font-size", strconv.FormatUint(uint64(t.FontSize), 10))
	if t.FontFamily != "" {
		attr(sb, "font-family", t.FontFamily)
	}
	if t.FontWeight != "" {
		attr(sb, "font-weight", t.FontWeight)
	}
	sb.WriteString(">")
	sb.WriteString(escaper.Replace(t.Data))
	sb.WriteString("</text>")
}

// Document is an ordered list of objects; later objects paint over earlier
// ones.
type Document struct {
	objects []Object
}

// Add appends an object.
func (d *Document) Add(obj Object) {
	d.objects = append(d.objects, obj)
}

// Len returns the number of objects added so far.
func (d *Document) Len() int {
	return len(d.objects)
}

// Render writes the complete SVG document to w.
func (d *Document) Render(w io.Writer) error {
	_, err := io.WriteString(w, d.String())
	return err
}

// String returns the complete SVG document.
func (d *Document) String() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" ?>` + "\n")
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1">` + "\n")
	for _, obj := range d.objects {
		sb.WriteString("  ")
		obj.writeTo(&sb)
		sb.WriteString("\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}

var escaper = strings.NewReplacer(
	`&`, "&amp;",
	`"`, "&quot;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
)

func attr(sb *strings.Builder, name, value string) {
	sb.WriteString(" ")
	sb.WriteString(name)
	sb.WriteString(`="`)
	sb.WriteString(escaper.Replace(value))
	sb.WriteString(`"`)
}

// number formats with at most six significant digits.
func number(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
