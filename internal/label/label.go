// Package label places text labels next to chart markers. Each call tries a
// handful of candidate positions and keeps the one that collides least with
// labels already placed this frame, stays on the canvas, and sits away from
// dense marker clusters.
package label

import (
	"math"

	"github.com/litescript/ls-skychart/internal/geom"
)

// Kind selects the candidate pattern for an anchor.
type Kind int

const (
	Point    Kind = iota // stars, planets, small markers
	Ellipse              // galaxies and other oriented outlines
	Diffuse              // nebulae and clusters without a crisp rim
	Asterism             // line figures, labeled near the centroid
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Point:
		return "point"
	case Ellipse:
		return "ellipse"
	case Diffuse:
		return "diffuse"
	case Asterism:
		return "asterism"
	default:
		return "unknown"
	}
}

// Anchor describes the marker a label belongs to, in screen pixels.
type Anchor struct {
	Center geom.Point
	Radius float64 // marker radius for point-like and diffuse anchors
	Major  float64 // semi-major axis for ellipses
	Minor  float64 // semi-minor axis for ellipses
	Angle  float64 // major axis direction, screen radians
	Size   float64 // weight in the potential field; defaults to Radius
}

// Box is the measured label, plus an optional sub-label (e.g. magnitude)
// stacked under it.
type Box struct {
	W, H       float64
	SubW, SubH float64
}

// HasSub reports whether the box carries a sub-label.
func (b Box) HasSub() bool { return b.SubW > 0 && b.SubH > 0 }

func (b Box) blockW() float64 { return math.Max(b.W, b.SubW) }

func (b Box) blockH() float64 {
	if b.HasSub() {
		return b.H + b.SubH
	}
	return b.H
}

// Placement is the outcome of Engine.Place.
type Placement struct {
	Rect   geom.Rect
	Sub    geom.Rect // zero unless the box has a sub-label
	Score  float64
	Index  int // index of the chosen candidate
	HasSub bool
}

// Config holds the scoring weights.
type Config struct {
	OverlapWeight float64 `yaml:"overlap_weight" env:"OVERLAP_WEIGHT"` // per px² of overlap with a placed rect
	MarginWeight  float64 `yaml:"margin_weight" env:"MARGIN_WEIGHT"`   // per px² protruding past the canvas margin
	Margin        float64 `yaml:"margin" env:"MARGIN"`                 // canvas margin, px
	Gap           float64 `yaml:"gap" env:"GAP"`                       // distance between marker rim and label, px
	FieldUnit     float64 `yaml:"field_unit" env:"FIELD_UNIT"`         // potential field distance unit, px
	FieldEpsilon  float64 `yaml:"field_epsilon" env:"FIELD_EPSILON"`   // softening term of the potential
}

// DefaultConfig returns the stock weights.
func DefaultConfig() Config {
	return Config{
		OverlapWeight: 10,
		MarginWeight:  200,
		Margin:        2,
		Gap:           3,
		FieldUnit:     1,
		FieldEpsilon:  0.1,
	}
}

type marker struct {
	p      geom.Point
	weight float64 // sqrt(size)
}

// Engine holds the obstacles of the frame being drawn. It is not safe for
// concurrent use; a frame is labeled from one goroutine.
type Engine struct {
	cfg     Config
	canvas  geom.Rect
	placed  []geom.Rect
	markers []marker
}

// NewEngine returns an engine for a w×h canvas.
func NewEngine(cfg Config, w, h float64) *Engine {
	e := &Engine{cfg: cfg}
	e.Reset(w, h)
	return e
}

// Reset drops all obstacles and markers; call it at the start of a frame.
func (e *Engine) Reset(w, h float64) {
	e.canvas = geom.Rect{MaxX: w, MaxY: h}
	e.placed = e.placed[:0]
	e.markers = e.markers[:0]
}

// AddMarker registers a drawn marker in the potential field.
func (e *Engine) AddMarker(p geom.Point, size float64) {
	if size <= 0 {
		return
	}
	e.markers = append(e.markers, marker{p: p, weight: math.Sqrt(size)})
}

// AddObstacle registers a rectangle labels should avoid.
func (e *Engine) AddObstacle(r geom.Rect) {
	e.placed = append(e.placed, r)
}

// Obstacles returns the rectangles placed so far.
func (e *Engine) Obstacles() []geom.Rect { return e.placed }

// Place picks the best candidate for the label, records it as an obstacle
// and adds the anchor to the potential field.
func (e *Engine) Place(a Anchor, k Kind, b Box) Placement {
	cands := Candidates(a, k, b, e.cfg.Gap)

	best := Placement{Score: math.Inf(1), Index: -1}
	for i, r := range cands {
		main, sub := split(r, b)
		score := e.Score(main)
		if b.HasSub() {
			score += e.Score(sub) - e.potential(sub.Center())
		}
		if score < best.Score {
			best = Placement{Rect: main, Sub: sub, Score: score, Index: i, HasSub: b.HasSub()}
		}
	}

	e.placed = append(e.placed, best.Rect)
	if best.HasSub {
		e.placed = append(e.placed, best.Sub)
	}
	size := a.Size
	if size == 0 {
		size = math.Max(a.Radius, a.Major)
	}
	e.AddMarker(a.Center, size)
	return best
}

// Score evaluates a candidate rectangle: weighted overlap with placed
// rectangles, weighted area past the canvas margin, and the potential field
// at its center.
func (e *Engine) Score(r geom.Rect) float64 {
	var overlap float64
	for _, p := range e.placed {
		overlap += r.OverlapArea(p)
	}
	inner := e.canvas.Inset(e.cfg.Margin)
	protrude := r.Area() - r.OverlapArea(inner)

	return e.cfg.OverlapWeight*overlap + e.cfg.MarginWeight*protrude + e.potential(r.Center())
}

func (e *Engine) potential(p geom.Point) float64 {
	unit := e.cfg.FieldUnit
	if unit <= 0 {
		unit = 1
	}
	var v float64
	for _, m := range e.markers {
		dx := (p.X - m.p.X) / unit
		dy := (p.Y - m.p.Y) / unit
		v += m.weight / (dx*dx + dy*dy + e.cfg.FieldEpsilon)
	}
	return v
}

// split cuts a candidate block into the main label and the sub-label below.
func split(block geom.Rect, b Box) (main, sub geom.Rect) {
	cx := block.Center().X
	main = geom.RectAt(cx-b.W/2, block.MinY, b.W, b.H)
	if b.HasSub() {
		sub = geom.RectAt(cx-b.SubW/2, block.MinY+b.H, b.SubW, b.SubH)
	}
	return main, sub
}
