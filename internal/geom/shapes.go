package geom

import "math"

// EllipsePoints samples n points around an ellipse with semi-axes rx, ry
// rotated by angle radians about c.
func EllipsePoints(c Point, rx, ry, angle float64, n int) []Point {
	if n < 3 {
		n = 3
	}
	sinA, cosA := math.Sincos(angle)
	pts := make([]Point, n)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(n)
		ex, ey := rx*math.Cos(t), ry*math.Sin(t)
		pts[i] = Point{X: c.X + ex*cosA - ey*sinA, Y: c.Y + ex*sinA + ey*cosA}
	}
	return pts
}

// DashRuns splits a polyline into dash-long pieces separated by gap-long
// holes. The pattern carries across vertices.
func DashRuns(pts []Point, dash, gap float64) [][]Point {
	if len(pts) < 2 || dash <= 0 {
		return nil
	}
	if gap <= 0 {
		return [][]Point{pts}
	}
	var out [][]Point
	on := true
	left := dash
	cur := []Point{pts[0]}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		seg := a.Dist(b)
		pos := 0.0
		for seg-pos > left {
			pos += left
			p := Lerp(a, b, pos/seg)
			if on {
				cur = append(cur, p)
				out = append(out, cur)
				cur = nil
				left = gap
			} else {
				cur = []Point{p}
				left = dash
			}
			on = !on
		}
		left -= seg - pos
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}
