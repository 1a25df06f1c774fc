// Package pick keeps the hit areas of drawn objects so a pointer position can
// be resolved to the object under it.
package pick

import (
	"github.com/litescript/ls-skychart/internal/geom"
)

// Shape selects which hit geometry of a Selectable is used.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeRect
	ShapePoints
)

// Selectable is one pickable object drawn this frame.
type Selectable struct {
	ID       string
	Kind     string
	Shape    Shape
	Center   geom.Point // ShapeCircle
	Radius   float64    // ShapeCircle
	Rect     geom.Rect  // ShapeRect
	Points   []geom.Point
	Priority int
	// Tolerance is the hit distance around a ShapePoints polyline.
	Tolerance float64
}

// Contains reports whether (x, y) hits s.
func (s Selectable) Contains(x, y float64) bool {
	p := geom.Point{X: x, Y: y}
	switch s.Shape {
	case ShapeCircle:
		return p.Dist(s.Center) <= s.Radius
	case ShapeRect:
		return x >= s.Rect.MinX && x <= s.Rect.MaxX && y >= s.Rect.MinY && y <= s.Rect.MaxY
	case ShapePoints:
		tol := s.Tolerance
		if tol <= 0 {
			tol = 4
		}
		if len(s.Points) == 1 {
			return p.Dist(s.Points[0]) <= tol
		}
		for i := 1; i < len(s.Points); i++ {
			if geom.SegmentDistance(p, s.Points[i-1], s.Points[i]) <= tol {
				return true
			}
		}
	}
	return false
}

// Registry collects the selectables of one frame. Not safe for concurrent
// use; the render loop owns it.
type Registry struct {
	items []Selectable
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Reset clears the registry at frame start.
func (r *Registry) Reset() {
	r.items = r.items[:0]
}

// Register adds a selectable.
func (r *Registry) Register(s Selectable) {
	r.items = append(r.items, s)
}

// Len returns the number of registered selectables.
func (r *Registry) Len() int { return len(r.items) }

// HitTest returns the selectable under (x, y). Higher priority wins; among
// equal priorities the later registration wins, since it was drawn on top.
func (r *Registry) HitTest(x, y float64) (Selectable, bool) {
	var best Selectable
	found := false
	for _, s := range r.items {
		if !s.Contains(x, y) {
			continue
		}
		if !found || s.Priority >= best.Priority {
			best = s
			found = true
		}
	}
	return best, found
}
