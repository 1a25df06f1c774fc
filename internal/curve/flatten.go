package curve

import (
	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/geom"
)

// VecProjector maps a unit vector (equatorial) to canvas pixels.
type VecProjector func(v astro.Vec3) (geom.Point, bool)

// Flattener subdivides great-circle segments until each emitted chord is
// within the pixel tolerance of the projected arc, or the depth cap is hit.
type Flattener struct {
	cfg     FlattenConfig
	project VecProjector

	runs [][]geom.Point
	cur  []geom.Point
}

// NewFlattener returns a flattener for one frame.
func NewFlattener(cfg FlattenConfig, project VecProjector) *Flattener {
	return &Flattener{cfg: cfg, project: project}
}

// Segment flattens the arc from a to b and returns its visible runs.
func (f *Flattener) Segment(a, b astro.Vec3) [][]geom.Point {
	return f.Polyline([]astro.Vec3{a, b})
}

// Polyline flattens consecutive arcs through pts, joining runs at shared
// vertices.
func (f *Flattener) Polyline(pts []astro.Vec3) [][]geom.Point {
	f.runs, f.cur = nil, nil
	if len(pts) < 2 {
		return nil
	}

	pa, okA := f.project(pts[0])
	if okA {
		f.cur = append(f.cur, pa)
	}
	for i := 1; i < len(pts); i++ {
		pb, okB := f.project(pts[i])
		f.subdivide(pts[i-1], pts[i], pa, pb, okA, okB, 0)
		pa, okA = pb, okB
	}
	f.flush()
	return f.runs
}

func (f *Flattener) subdivide(a, b astro.Vec3, pa, pb geom.Point, okA, okB bool, depth int) {
	m := astro.GreatCircleMidpoint(a, b)
	if m == (astro.Vec3{}) {
		f.breakRun(pb, okB)
		return
	}
	pm, okM := f.project(m)

	if okA && okB && okM {
		if depth >= f.cfg.MaxDepth || geom.PerpDistance(pm, pa, pb) <= f.cfg.Tolerance {
			f.cur = append(f.cur, pb)
			return
		}
	} else if depth >= f.cfg.MaxDepth {
		f.breakRun(pb, okB)
		return
	}

	f.subdivide(a, m, pa, pm, okA, okM, depth+1)
	f.subdivide(m, b, pm, pb, okM, okB, depth+1)
}

// breakRun ends the current run and, if the far endpoint is visible, starts
// a new one there.
func (f *Flattener) breakRun(pb geom.Point, okB bool) {
	f.flush()
	if okB {
		f.cur = append(f.cur, pb)
	}
}

func (f *Flattener) flush() {
	if len(f.cur) > 1 {
		f.runs = append(f.runs, f.cur)
	}
	f.cur = nil
}
