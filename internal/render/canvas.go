// Package render draws one chart frame. A Context bundles the view snapshot,
// its projection and the data; a Pipeline runs a fixed list of Renderers
// over it, each drawing one layer onto a Canvas (vector strokes, text) and
// optionally a Rasterizer (filled triangles, point sprites).
package render

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-skychart/internal/geom"
)

// Style describes how a shape is stroked or filled.
type Style struct {
	Stroke    color.RGBA
	Fill      color.RGBA
	LineWidth float64
	Filled    bool
	Dashed    bool
}

// Canvas is an immediate-mode 2D vector surface, pixel coordinates with y
// down. Measure reports the size of a text run in the surface's font.
type Canvas interface {
	Size() (w, h float64)
	Polyline(pts []geom.Point, s Style)
	Polygon(pts []geom.Point, s Style)
	Circle(c geom.Point, r float64, s Style)
	Ellipse(c geom.Point, rx, ry, angle float64, s Style)
	// Text draws text with its top-left corner at p.
	Text(p geom.Point, text string, c color.RGBA)
	Measure(text string) (w, h float64)
}

// PointSprite is one rasterized point.
type PointSprite struct {
	P     geom.Point
	Size  float64
	Color color.RGBA
}

// Rasterizer is a GPU-style triangle and point surface.
type Rasterizer interface {
	Clear(c color.RGBA)
	DrawTriangles(verts []geom.Point, indices []int, c color.RGBA)
	DrawPoints(pts []PointSprite)
}

// ParseColor parses "#rrggbb". Invalid input yields opaque white.
func ParseColor(hex string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Blend mixes a towards b by t in [0, 1].
func Blend(a, b color.RGBA, t float64) color.RGBA {
	ca, _ := colorful.MakeColor(opaque(a))
	cb, _ := colorful.MakeColor(opaque(b))
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: bl, A: 255}
}

// Hex formats c as "#rrggbb".
func Hex(c color.RGBA) string {
	cc, _ := colorful.MakeColor(opaque(c))
	return cc.Hex()
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 255
	return c
}
