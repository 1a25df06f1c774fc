package geom

// Triangulate splits a simple polygon into triangles by ear clipping and
// returns vertex indices, three per triangle. Winding may be either
// direction; degenerate input yields nil.
func Triangulate(poly []Point) []int {
	n := len(poly)
	if n < 3 {
		return nil
	}

	idx := make([]int, n)
	if signedArea(poly) > 0 {
		for i := range idx {
			idx[i] = i
		}
	} else {
		for i := range idx {
			idx[i] = n - 1 - i
		}
	}

	out := make([]int, 0, 3*(n-2))
	// Each pass removes one ear; bail out if a full pass finds none
	// (self-intersecting input).
	guard := 2 * n
	for len(idx) > 3 && guard > 0 {
		guard--
		found := false
		for i := range idx {
			ip := idx[(i+len(idx)-1)%len(idx)]
			ic := idx[i]
			in := idx[(i+1)%len(idx)]
			if !isEar(poly, idx, ip, ic, in) {
				continue
			}
			out = append(out, ip, ic, in)
			idx = append(idx[:i], idx[i+1:]...)
			found = true
			break
		}
		if !found {
			break
		}
	}
	if len(idx) == 3 {
		out = append(out, idx[0], idx[1], idx[2])
	}
	return out
}

func signedArea(poly []Point) float64 {
	var a float64
	for i := range poly {
		j := (i + 1) % len(poly)
		a += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return a / 2
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func isEar(poly []Point, idx []int, ip, ic, in int) bool {
	a, b, c := poly[ip], poly[ic], poly[in]
	if cross(a, b, c) <= 0 {
		return false
	}
	for _, j := range idx {
		if j == ip || j == ic || j == in {
			continue
		}
		if pointInTriangle(poly[j], a, b, c) {
			return false
		}
	}
	return true
}

func pointInTriangle(p, a, b, c Point) bool {
	return cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0
}
