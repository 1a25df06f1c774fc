package label

import (
	"math"

	"github.com/litescript/ls-skychart/internal/geom"
)

// Candidates returns the ordered candidate blocks (label plus sub-label) for
// an anchor. Earlier candidates win ties.
func Candidates(a Anchor, k Kind, b Box, gap float64) []geom.Rect {
	w, h := b.blockW(), b.blockH()
	c := a.Center
	r := a.Radius + gap

	right := geom.RectAt(c.X+r, c.Y-h/2, w, h)
	left := geom.RectAt(c.X-r-w, c.Y-h/2, w, h)
	above := geom.RectAt(c.X-w/2, c.Y-r-h, w, h)
	below := geom.RectAt(c.X-w/2, c.Y+r, w, h)

	switch k {
	case Point:
		return []geom.Rect{right, left, above, below}
	case Ellipse:
		return ellipseCandidates(a, w, h, gap)
	case Diffuse, Asterism:
		return []geom.Rect{geom.Centered(c, w, h), above, below}
	default:
		return []geom.Rect{right, below, left}
	}
}

// ellipseCandidates puts the block beyond the rim along both directions of
// the minor axis, then of the major axis. The minor axis side facing up
// comes first, or the right side when the minor axis is horizontal.
func ellipseCandidates(a Anchor, w, h, gap float64) []geom.Rect {
	sinA, cosA := math.Sincos(a.Angle)
	major := geom.Point{X: cosA, Y: sinA}
	minor := geom.Point{X: -sinA, Y: cosA}
	if math.Abs(minor.Y) < 1e-9 {
		if minor.X < 0 {
			minor = geom.Point{X: -minor.X, Y: -minor.Y}
		}
	} else if minor.Y > 0 {
		minor = geom.Point{X: -minor.X, Y: -minor.Y}
	}

	at := func(d geom.Point, axis float64) geom.Rect {
		half := w/2*math.Abs(d.X) + h/2*math.Abs(d.Y)
		dist := axis + gap + half
		return geom.Centered(geom.Point{X: a.Center.X + d.X*dist, Y: a.Center.Y + d.Y*dist}, w, h)
	}
	neg := func(d geom.Point) geom.Point { return geom.Point{X: -d.X, Y: -d.Y} }

	return []geom.Rect{
		at(minor, a.Minor),
		at(neg(minor), a.Minor),
		at(major, a.Major),
		at(neg(major), a.Major),
	}
}
