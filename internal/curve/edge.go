package curve

import (
	"math"

	"github.com/litescript/ls-skychart/internal/geom"
)

// Edge names a canvas border used for grid labels.
type Edge int

const (
	EdgeAuto Edge = iota
	EdgeLeft
	EdgeRight
	EdgeTop
	EdgeBottom
)

// Family distinguishes the two kinds of grid line.
type Family int

const (
	Parallels Family = iota // constant theta
	Meridians               // constant phi
)

// ResolveEdge turns EdgeAuto into a concrete border: parallels are labeled on
// the left and meridians on the bottom while the center is in the northern
// half of the frame, right and top otherwise.
func ResolveEdge(e Edge, fam Family, centerTheta float64) Edge {
	if e != EdgeAuto {
		return e
	}
	north := centerTheta >= 0
	if fam == Parallels {
		if north {
			return EdgeLeft
		}
		return EdgeRight
	}
	if north {
		return EdgeBottom
	}
	return EdgeTop
}

// Crossing is where a traced curve leaves the canvas through an edge.
type Crossing struct {
	Edge  Edge
	Point geom.Point
	Angle float64 // screen tangent direction, radians
}

// EdgeCrossing finds the first pair of consecutive points in run that
// straddles the given edge of a w×h canvas. Crossings within margin pixels of
// the neighbouring borders are skipped.
func EdgeCrossing(run []geom.Point, edge Edge, w, h, margin float64) (Crossing, bool) {
	for i := 1; i < len(run); i++ {
		a, b := run[i-1], run[i]

		var da, db float64
		switch edge {
		case EdgeLeft:
			da, db = a.X, b.X
		case EdgeRight:
			da, db = a.X-w, b.X-w
		case EdgeTop:
			da, db = a.Y, b.Y
		case EdgeBottom:
			da, db = a.Y-h, b.Y-h
		default:
			return Crossing{}, false
		}
		if da == db || da*db > 0 {
			continue
		}

		t := da / (da - db)
		p := geom.Lerp(a, b, t)
		switch edge {
		case EdgeLeft, EdgeRight:
			if p.Y < margin || p.Y > h-margin {
				continue
			}
		default:
			if p.X < margin || p.X > w-margin {
				continue
			}
		}
		return Crossing{Edge: edge, Point: p, Angle: math.Atan2(b.Y-a.Y, b.X-a.X)}, true
	}
	return Crossing{}, false
}

// inward returns the unit vector pointing from an edge into the canvas.
func inward(e Edge) geom.Point {
	switch e {
	case EdgeLeft:
		return geom.Point{X: 1}
	case EdgeRight:
		return geom.Point{X: -1}
	case EdgeTop:
		return geom.Point{Y: 1}
	default:
		return geom.Point{Y: -1}
	}
}

// LabelPoint offsets the crossing along the curve normal that faces into
// the canvas. When the curve meets the edge at a right angle the label goes
// above (or left of) the line and is pushed inward by the same distance.
func LabelPoint(c Crossing, offset float64) geom.Point {
	in := inward(c.Edge)
	n := geom.Point{X: -math.Sin(c.Angle), Y: math.Cos(c.Angle)}
	dot := n.X*in.X + n.Y*in.Y
	if dot < 0 {
		n = geom.Point{X: -n.X, Y: -n.Y}
	}
	if math.Abs(dot) < 0.2 {
		// Normal runs along the edge: pick the side above or left of the
		// line and step inward.
		if math.Abs(n.X) > math.Abs(n.Y) {
			if n.X > 0 {
				n = geom.Point{X: -n.X, Y: -n.Y}
			}
		} else if n.Y > 0 {
			n = geom.Point{X: -n.X, Y: -n.Y}
		}
		return geom.Point{
			X: c.Point.X + (n.X+in.X)*offset,
			Y: c.Point.Y + (n.Y+in.Y)*offset,
		}
	}
	return geom.Point{X: c.Point.X + n.X*offset, Y: c.Point.Y + n.Y*offset}
}
