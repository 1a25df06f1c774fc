package curve

import (
	"math"

	"github.com/litescript/ls-skychart/internal/geom"
)

// Projector maps a frame coordinate to canvas pixels; ok is false when the
// point is not representable this frame.
type Projector interface {
	FrameToPixel(phi, theta float64) (geom.Point, bool)
}

// Param evaluates a curve at parameter t in frame coordinates.
type Param func(t float64) (phi, theta float64)

// Trace samples c over [from, to] every step and returns the projected
// polyline runs. An unrepresentable sample ends the current run; runs never
// bridge across one.
func Trace(p Projector, c Param, from, to, step float64) [][]geom.Point {
	if step <= 0 || to <= from {
		return nil
	}
	n := int(math.Ceil((to - from) / step))

	var runs [][]geom.Point
	var cur []geom.Point
	for i := 0; i <= n; i++ {
		t := from + float64(i)*step
		if i == n {
			t = to
		}
		pt, ok := p.FrameToPixel(c(t))
		if !ok {
			if len(cur) > 1 {
				runs = append(runs, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, pt)
	}
	if len(cur) > 1 {
		runs = append(runs, cur)
	}
	return runs
}

// Parallel returns the curve of constant theta, parameterized by phi.
func Parallel(theta float64) Param {
	return func(t float64) (float64, float64) { return t, theta }
}

// Meridian returns the curve of constant phi, parameterized by theta.
func Meridian(phi float64) Param {
	return func(t float64) (float64, float64) { return phi, t }
}

// Clip clips every run to r and returns the visible pieces.
func Clip(runs [][]geom.Point, r geom.Rect) [][]geom.Point {
	var out [][]geom.Point
	for _, run := range runs {
		out = append(out, geom.ClipPolyline(run, r)...)
	}
	return out
}
