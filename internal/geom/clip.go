package geom

// Outcodes for Cohen–Sutherland clipping.
const (
	inside = 0
	left   = 1 << iota
	right
	bottom
	top
)

func outcode(p Point, r Rect) int {
	code := inside
	if p.X < r.MinX {
		code |= left
	} else if p.X > r.MaxX {
		code |= right
	}
	if p.Y < r.MinY {
		code |= top
	} else if p.Y > r.MaxY {
		code |= bottom
	}
	return code
}

// ClipSegment clips the segment a-b to r using Cohen–Sutherland. It returns
// the visible part and false when nothing of the segment lies inside r.
func ClipSegment(a, b Point, r Rect) (Point, Point, bool) {
	ca, cb := outcode(a, r), outcode(b, r)
	for {
		switch {
		case ca|cb == 0:
			return a, b, true
		case ca&cb != 0:
			return a, b, false
		}

		code := ca
		if code == inside {
			code = cb
		}

		var p Point
		switch {
		case code&top != 0:
			p = Point{a.X + (b.X-a.X)*(r.MinY-a.Y)/(b.Y-a.Y), r.MinY}
		case code&bottom != 0:
			p = Point{a.X + (b.X-a.X)*(r.MaxY-a.Y)/(b.Y-a.Y), r.MaxY}
		case code&right != 0:
			p = Point{r.MaxX, a.Y + (b.Y-a.Y)*(r.MaxX-a.X)/(b.X-a.X)}
		default:
			p = Point{r.MinX, a.Y + (b.Y-a.Y)*(r.MinX-a.X)/(b.X-a.X)}
		}

		if code == ca {
			a, ca = p, outcode(p, r)
		} else {
			b, cb = p, outcode(p, r)
		}
	}
}

// ClipPolyline clips each segment of pts to r and returns the visible runs.
// Consecutive visible segments that share an endpoint are joined.
func ClipPolyline(pts []Point, r Rect) [][]Point {
	var runs [][]Point
	var cur []Point
	for i := 1; i < len(pts); i++ {
		a, b, ok := ClipSegment(pts[i-1], pts[i], r)
		if !ok {
			if len(cur) > 1 {
				runs = append(runs, cur)
			}
			cur = nil
			continue
		}
		if len(cur) > 0 && cur[len(cur)-1] == a {
			cur = append(cur, b)
			continue
		}
		if len(cur) > 1 {
			runs = append(runs, cur)
		}
		cur = []Point{a, b}
	}
	if len(cur) > 1 {
		runs = append(runs, cur)
	}
	return runs
}
