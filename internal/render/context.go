package render

import (
	"image/color"
	"math"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/curve"
	"github.com/litescript/ls-skychart/internal/geom"
	"github.com/litescript/ls-skychart/internal/label"
	"github.com/litescript/ls-skychart/internal/pick"
	"github.com/litescript/ls-skychart/internal/projection"
	"github.com/litescript/ls-skychart/internal/view"
)

// Data is what a frame draws. Everything is read-only during the frame.
type Data struct {
	Scene          *catalog.Scene
	Stars          []catalog.Star // preview plus loaded tiles
	MilkyWay       *catalog.MilkyWay
	Constellations *catalog.Constellations
	Selected       string
}

// Options carries the per-subsystem tunables.
type Options struct {
	Projection projection.Config
	Curve      curve.Config
	Flatten    curve.FlattenConfig
	Label      label.Config
	GridEdge   curve.Edge
	// Optimized marks a frame drawn during an animation: labels are skipped.
	Optimized bool
}

// DefaultOptions returns the stock settings for a desktop-class device.
func DefaultOptions() Options {
	return Options{
		Projection: projection.DefaultConfig(),
		Curve:      curve.DefaultConfig(),
		Flatten:    curve.DesktopFlatten(),
		Label:      label.DefaultConfig(),
	}
}

// Context is the per-frame state shared by renderers.
type Context struct {
	State  view.State
	Frame  view.Frame
	Proj   *projection.Projection
	Canvas Canvas
	Raster Rasterizer // optional
	Labels *label.Engine
	Picks  *pick.Registry
	Data   *Data
	Theme  catalog.Theme
	Layers catalog.Layers
	Opts   Options

	// wide projects without culling; fills need vertices far off screen.
	wide *projection.Projection
}

// NewContext builds a frame context. picks may be nil.
func NewContext(s view.State, canvas Canvas, raster Rasterizer, data *Data, picks *pick.Registry, opts Options) *Context {
	w, h := canvas.Size()
	if data == nil {
		data = &Data{}
	}
	if picks == nil {
		picks = pick.NewRegistry()
	}
	theme := catalog.DefaultTheme()
	layers := catalog.AllLayers()
	if data.Scene != nil {
		if data.Scene.Theme != (catalog.Theme{}) {
			theme = data.Scene.Theme
		}
		if data.Scene.Layers != (catalog.Layers{}) {
			layers = data.Scene.Layers
		}
	}

	wideCfg := opts.Projection
	wideCfg.CullFactor = 0
	return &Context{
		State:  s,
		Frame:  s.Frame(),
		Proj:   projection.New(s, int(w), int(h), opts.Projection),
		Canvas: canvas,
		Raster: raster,
		Labels: label.NewEngine(opts.Label, w, h),
		Picks:  picks,
		Data:   data,
		Theme:  theme,
		Layers: layers,
		Opts:   opts,
		wide:   projection.New(s, int(w), int(h), wideCfg),
	}
}

// Project maps ra/dec degrees to canvas pixels.
func (c *Context) Project(raDeg, decDeg float64) (geom.Point, bool) {
	phi, theta, ok := c.Frame.FromEquatorial(astro.DegToRad(raDeg), astro.DegToRad(decDeg))
	if !ok {
		return geom.Point{}, false
	}
	return c.Proj.FrameToPixel(phi, theta)
}

// ProjectVec maps an equatorial unit vector to canvas pixels.
func (c *Context) ProjectVec(v astro.Vec3) (geom.Point, bool) {
	ra, dec := v.Spherical()
	phi, theta, ok := c.Frame.FromEquatorial(ra, dec)
	if !ok {
		return geom.Point{}, false
	}
	return c.Proj.FrameToPixel(phi, theta)
}

// projectWide is Project without the cull radius.
func (c *Context) projectWide(raDeg, decDeg float64) (geom.Point, bool) {
	phi, theta, ok := c.Frame.FromEquatorial(astro.DegToRad(raDeg), astro.DegToRad(decDeg))
	if !ok {
		return geom.Point{}, false
	}
	return c.wide.FrameToPixel(phi, theta)
}

// Width and Height return the canvas size.
func (c *Context) Width() float64  { return c.Proj.Width() }
func (c *Context) Height() float64 { return c.Proj.Height() }

// Visible reports whether p lies on the canvas grown by pad pixels.
func (c *Context) Visible(p geom.Point, pad float64) bool {
	return p.X >= -pad && p.Y >= -pad && p.X <= c.Width()+pad && p.Y <= c.Height()+pad
}

// ArcminToPixels converts an angular size to pixels at the view center.
func (c *Context) ArcminToPixels(arcmin float64) float64 {
	return astro.DegToRad(arcmin/60) * c.Proj.PixelsPerRadian()
}

// Flattener returns a great-circle flattener bound to this frame.
func (c *Context) Flattener() *curve.Flattener {
	return curve.NewFlattener(c.Opts.Flatten, c.ProjectVec)
}

// Stroke clips runs to the padded canvas and draws them.
func (c *Context) Stroke(runs [][]geom.Point, s Style) int {
	clip := c.Opts.Curve.ClipRect(c.Width(), c.Height(), s.LineWidth)
	n := 0
	for _, run := range curve.Clip(runs, clip) {
		c.Canvas.Polyline(run, s)
		n++
	}
	return n
}

// Color returns a theme color by hex string.
func (c *Context) Color(hex string) color.RGBA {
	return ParseColor(hex)
}

// LineWidth returns the theme stroke width with a floor.
func (c *Context) LineWidth() float64 {
	return math.Max(c.Theme.LineWidth, 0.5)
}

// PlaceLabel measures text (and an optional sub-label), asks the label
// engine for a position and draws it. Optimized frames skip labels but still
// register the anchor as a marker.
func (c *Context) PlaceLabel(a label.Anchor, k label.Kind, text, sub string, col color.RGBA) (label.Placement, bool) {
	if !c.Layers.Labels || c.Opts.Optimized || text == "" {
		size := a.Size
		if size == 0 {
			size = math.Max(a.Radius, a.Major)
		}
		c.Labels.AddMarker(a.Center, size)
		return label.Placement{}, false
	}
	box := label.BoxFor(c.Canvas, text, sub)
	pl := c.Labels.Place(a, k, box)
	c.Canvas.Text(geom.Point{X: pl.Rect.MinX, Y: pl.Rect.MinY}, text, col)
	if pl.HasSub {
		c.Canvas.Text(geom.Point{X: pl.Sub.MinX, Y: pl.Sub.MinY}, sub, Blend(col, ParseColor(c.Theme.Background), 0.35))
	}
	return pl, true
}

// EquatorialVec returns the unit vector of ra/dec degrees.
func EquatorialVec(raDeg, decDeg float64) astro.Vec3 {
	return astro.Unit(astro.DegToRad(raDeg), astro.DegToRad(decDeg))
}

// coordsToVecs converts catalog coordinates to unit vectors.
func coordsToVecs(cs []catalog.Coord) []astro.Vec3 {
	out := make([]astro.Vec3, len(cs))
	for i, p := range cs {
		out[i] = EquatorialVec(p.RA, p.Dec)
	}
	return out
}
