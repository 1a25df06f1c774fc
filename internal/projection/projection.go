// Package projection maps frame coordinates to the screen with a
// stereographic projection around the view center. It does not know which
// frame it is projecting; the view package converts objects into the frame
// first.
package projection

import (
	"math"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/geom"
	"github.com/litescript/ls-skychart/internal/view"
)

// minDenom rejects points at or numerically near the antipode of the center.
const minDenom = 1e-9

// maxCull caps the cull radius just short of the antipode.
const maxCull = math.Pi - 1e-3

// Config holds projection tunables.
type Config struct {
	// CullFactor sets the cull radius as a multiple of the field radius.
	// Points farther from the center are not representable this frame.
	// Zero disables culling short of the antipode.
	CullFactor float64 `yaml:"cull_factor" env:"CULL_FACTOR"`
	MirrorX    bool    `yaml:"mirror_x" env:"MIRROR_X"`
	MirrorY    bool    `yaml:"mirror_y" env:"MIRROR_Y"`
}

// DefaultConfig returns the default projection settings.
func DefaultConfig() Config {
	return Config{CullFactor: 2.5}
}

// Projection is the stereographic mapping for one frame of one view. It is
// immutable once built.
type Projection struct {
	width, height float64
	phi0, theta0  float64
	sin0, cos0    float64
	fieldRadius   float64
	scale         float64 // pixels per plane unit
	cosCull       float64
	mirrorX       bool
	mirrorY       bool
}

// New builds the projection for a view state and canvas size.
func New(s view.State, width, height int, cfg Config) *Projection {
	p := &Projection{
		width:       float64(width),
		height:      float64(height),
		phi0:        s.CenterPhi,
		theta0:      s.CenterTheta,
		fieldRadius: s.FieldRadius(),
		mirrorX:     cfg.MirrorX,
		mirrorY:     cfg.MirrorY,
		cosCull:     -2,
	}
	p.sin0, p.cos0 = math.Sincos(p.theta0)

	half := math.Max(p.width, p.height) / 2
	if t := math.Tan(p.fieldRadius / 2); t > 0 {
		p.scale = half / (2 * t)
	}

	if cfg.CullFactor > 0 {
		p.cosCull = math.Cos(math.Min(cfg.CullFactor*p.fieldRadius, maxCull))
	}
	return p
}

// Width returns the canvas width in pixels.
func (p *Projection) Width() float64 { return p.width }

// Height returns the canvas height in pixels.
func (p *Projection) Height() float64 { return p.height }

// FieldRadius returns half the field of view in radians.
func (p *Projection) FieldRadius() float64 { return p.fieldRadius }

// Center returns the frame coordinate at the middle of the canvas.
func (p *Projection) Center() (phi, theta float64) { return p.phi0, p.theta0 }

// Viewport returns the canvas rectangle.
func (p *Projection) Viewport() geom.Rect { return geom.Rect{MaxX: p.width, MaxY: p.height} }

// PixelsPerRadian returns the scale at the view center, where a plane unit
// spans one radian.
func (p *Projection) PixelsPerRadian() float64 { return p.scale }

// Plane projects a frame point onto the unscaled stereographic plane, with
// mirroring applied. ok is false at or near the antipode and beyond the cull
// radius.
func (p *Projection) Plane(phi, theta float64) (x, y float64, ok bool) {
	dphi := astro.WrapPi(phi - p.phi0)
	sinT, cosT := math.Sincos(theta)
	sinD, cosD := math.Sincos(dphi)

	cosDist := p.sin0*sinT + p.cos0*cosT*cosD
	denom := 1 + cosDist
	if denom <= minDenom || cosDist < p.cosCull || math.IsNaN(denom) {
		return 0, 0, false
	}

	x = -2 * cosT * sinD / denom
	y = 2 * (p.cos0*sinT - p.sin0*cosT*cosD) / denom
	if p.mirrorX {
		x = -x
	}
	if p.mirrorY {
		y = -y
	}
	return x, y, true
}

// FrameToPixel projects a frame point to canvas pixels (y down).
func (p *Projection) FrameToPixel(phi, theta float64) (geom.Point, bool) {
	x, y, ok := p.Plane(phi, theta)
	if !ok {
		return geom.Point{}, false
	}
	return geom.Point{X: p.width/2 + x*p.scale, Y: p.height/2 - y*p.scale}, true
}

// FrameToNDC projects a frame point to normalized device coordinates, y up.
// Points on the visible canvas fall in [-1, 1] on both axes.
func (p *Projection) FrameToNDC(phi, theta float64) (x, y float64, ok bool) {
	pt, ok := p.FrameToPixel(phi, theta)
	if !ok {
		return 0, 0, false
	}
	return p.PixelToNDC(pt)
}

// PixelToNDC converts canvas pixels to normalized device coordinates.
func (p *Projection) PixelToNDC(pt geom.Point) (x, y float64, ok bool) {
	if p.width <= 0 || p.height <= 0 {
		return 0, 0, false
	}
	return (pt.X - p.width/2) / (p.width / 2), (p.height/2 - pt.Y) / (p.height / 2), true
}

// NDCToPixel converts normalized device coordinates to canvas pixels.
func (p *Projection) NDCToPixel(x, y float64) geom.Point {
	return geom.Point{X: p.width/2 + x*p.width/2, Y: p.height/2 - y*p.height/2}
}

// PixelToFrame inverts FrameToPixel.
func (p *Projection) PixelToFrame(pt geom.Point) (phi, theta float64, ok bool) {
	if p.scale == 0 {
		return 0, 0, false
	}
	x := (pt.X - p.width/2) / p.scale
	y := (p.height/2 - pt.Y) / p.scale
	if p.mirrorX {
		x = -x
	}
	if p.mirrorY {
		y = -y
	}

	rho := math.Hypot(x, y)
	if rho < 1e-12 {
		return p.phi0, p.theta0, true
	}
	c := 2 * math.Atan(rho/2)
	sinC, cosC := math.Sincos(c)

	theta = math.Asin(math.Max(-1, math.Min(1, cosC*p.sin0+y*sinC*p.cos0/rho)))
	phi = p.phi0 + math.Atan2(-x*sinC, rho*p.cos0*cosC-y*p.sin0*sinC)
	return astro.NormalizeRad(phi), theta, true
}

// NDCToFrame inverts FrameToNDC.
func (p *Projection) NDCToFrame(x, y float64) (phi, theta float64, ok bool) {
	return p.PixelToFrame(p.NDCToPixel(x, y))
}

// AngularDistance returns the great-circle distance from the view center to
// a frame point, in radians.
func (p *Projection) AngularDistance(phi, theta float64) float64 {
	sinT, cosT := math.Sincos(theta)
	c := p.sin0*sinT + p.cos0*cosT*math.Cos(phi-p.phi0)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}
