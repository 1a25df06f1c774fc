package ui

import (
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skychart/internal/geom"
	"github.com/litescript/ls-skychart/internal/render"
)

// Each terminal cell covers CellW×CellH canvas pixels, which keeps pixels
// roughly square on a typical 1:2 terminal font.
const (
	CellW = 1.0
	CellH = 2.0
)

// Draw order within a cell: a write only replaces content of equal or
// lower rank.
const (
	rankEmpty = iota
	rankFill
	rankLine
	rankMarker
	rankText
)

type cell struct {
	r    rune
	fg   color.RGBA
	bg   color.RGBA
	hasB bool
	rank int
}

// TermCanvas rasterizes vector draw calls onto a character grid. It
// implements render.Canvas and render.Rasterizer.
type TermCanvas struct {
	cols, rows int
	cells      []cell
	background color.RGBA
}

// NewTermCanvas creates a canvas of cols×rows cells.
func NewTermCanvas(cols, rows int) *TermCanvas {
	c := &TermCanvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid size and clears it.
func (c *TermCanvas) Resize(cols, rows int) {
	c.cols, c.rows = max(cols, 1), max(rows, 1)
	c.cells = make([]cell, c.cols*c.rows)
	c.Clear(c.background)
}

// Cols returns the width in cells.
func (c *TermCanvas) Cols() int { return c.cols }

// Rows returns the height in cells.
func (c *TermCanvas) Rows() int { return c.rows }

// Size implements render.Canvas.
func (c *TermCanvas) Size() (w, h float64) {
	return float64(c.cols) * CellW, float64(c.rows) * CellH
}

// CellToPixel returns the canvas pixel at the center of a cell.
func CellToPixel(col, row int) geom.Point {
	return geom.Point{X: (float64(col) + 0.5) * CellW, Y: (float64(row) + 0.5) * CellH}
}

func (c *TermCanvas) at(p geom.Point) (*cell, bool) {
	col := int(math.Floor(p.X / CellW))
	row := int(math.Floor(p.Y / CellH))
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return nil, false
	}
	return &c.cells[row*c.cols+col], true
}

func (c *TermCanvas) put(p geom.Point, r rune, fg color.RGBA, rank int) {
	cl, ok := c.at(p)
	if !ok || rank < cl.rank {
		return
	}
	cl.r, cl.fg, cl.rank = r, fg, rank
}

// Clear implements render.Rasterizer.
func (c *TermCanvas) Clear(bg color.RGBA) {
	c.background = bg
	for i := range c.cells {
		c.cells[i] = cell{r: ' ', bg: bg, hasB: true}
	}
}

// lineGlyph picks a box-drawing rune for a segment direction in cell space.
func lineGlyph(dx, dy float64, dashed bool) rune {
	if dashed {
		return '·'
	}
	// Slopes are compared in cell units.
	cx, cy := dx/CellW, dy/CellH
	a := math.Abs(math.Atan2(cy, cx))
	if a > math.Pi/2 {
		a = math.Pi - a
	}
	switch {
	case a < math.Pi/8:
		return '─'
	case a > 3*math.Pi/8:
		return '│'
	case (cx > 0) == (cy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func (c *TermCanvas) segment(a, b geom.Point, col color.RGBA, dashed bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	g := lineGlyph(dx, dy, dashed)
	n := int(math.Ceil(math.Max(math.Abs(dx)/CellW, math.Abs(dy)/CellH)*2)) + 1
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		c.put(geom.Point{X: a.X + dx*t, Y: a.Y + dy*t}, g, col, rankLine)
	}
}

// Polyline implements render.Canvas.
func (c *TermCanvas) Polyline(pts []geom.Point, s render.Style) {
	for i := 1; i < len(pts); i++ {
		c.segment(pts[i-1], pts[i], s.Stroke, s.Dashed)
	}
}

// Polygon implements render.Canvas. Filled polygons tint the cell
// background; outlines are stroked.
func (c *TermCanvas) Polygon(pts []geom.Point, s render.Style) {
	if len(pts) < 3 {
		return
	}
	if s.Filled {
		c.fillPolygon(pts, s.Fill)
	}
	if s.Stroke.A > 0 {
		c.Polyline(append(pts[:len(pts):len(pts)], pts[0]), s)
	}
}

// fillPolygon shades every cell whose center is inside pts (even-odd).
func (c *TermCanvas) fillPolygon(pts []geom.Point, fill color.RGBA) {
	b := bounds(pts)
	r0, r1 := max(int(b.MinY/CellH), 0), min(int(b.MaxY/CellH), c.rows-1)
	xs := make([]float64, 0, 8)
	for row := r0; row <= r1; row++ {
		y := (float64(row) + 0.5) * CellH
		xs = xs[:0]
		for i := range pts {
			p, q := pts[i], pts[(i+1)%len(pts)]
			if (p.Y <= y) != (q.Y <= y) {
				xs = append(xs, p.X+(y-p.Y)/(q.Y-p.Y)*(q.X-p.X))
			}
		}
		slices.Sort(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			c0 := max(int(math.Ceil(xs[i]/CellW-0.5)), 0)
			c1 := min(int(math.Floor(xs[i+1]/CellW-0.5)), c.cols-1)
			for col := c0; col <= c1; col++ {
				c.tint(col, row, fill)
			}
		}
	}
}

// tint composites fill over the cell background by its alpha.
func (c *TermCanvas) tint(col, row int, fill color.RGBA) {
	cl := &c.cells[row*c.cols+col]
	bg := fill
	if fill.A < 255 {
		bg = render.Blend(cl.bg, fill, float64(fill.A)/255)
	}
	cl.bg, cl.hasB = bg, true
	if cl.rank < rankFill {
		cl.rank = rankFill
	}
}

func bounds(pts []geom.Point) geom.Rect {
	r := geom.Rect{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		r.MinX, r.MaxX = math.Min(r.MinX, p.X), math.Max(r.MaxX, p.X)
		r.MinY, r.MaxY = math.Min(r.MinY, p.Y), math.Max(r.MaxY, p.Y)
	}
	return r
}

// markerGlyph picks a dot rune for a disc of radius r pixels.
func markerGlyph(r float64) rune {
	switch {
	case r < 1.5:
		return '·'
	case r < 2.5:
		return '•'
	case r < 4:
		return '●'
	default:
		return '◉'
	}
}

// Circle implements render.Canvas. Small filled discs become a single
// marker glyph; larger or stroked ones are outlined.
func (c *TermCanvas) Circle(center geom.Point, r float64, s render.Style) {
	if s.Filled && r < 4*CellW {
		c.put(center, markerGlyph(r), s.Fill, rankMarker)
		return
	}
	c.Ellipse(center, r, r, 0, s)
}

// Ellipse implements render.Canvas.
func (c *TermCanvas) Ellipse(center geom.Point, rx, ry, angle float64, s render.Style) {
	if rx < CellW && ry < CellW {
		col := s.Stroke
		if s.Filled {
			col = s.Fill
		}
		c.put(center, 'o', col, rankMarker)
		return
	}
	n := max(int(math.Ceil(2*math.Pi*math.Max(rx, ry)/CellW)), 12)
	pts := geom.EllipsePoints(center, rx, ry, angle, n)
	if s.Filled {
		c.fillPolygon(pts, s.Fill)
	}
	if s.Stroke.A > 0 || !s.Filled {
		for _, p := range pts {
			c.put(p, '∘', s.Stroke, rankLine)
		}
	}
}

// Text implements render.Canvas.
func (c *TermCanvas) Text(p geom.Point, text string, col color.RGBA) {
	x := p.X
	for _, r := range text {
		c.put(geom.Point{X: x, Y: p.Y}, r, col, rankText)
		x += float64(lipgloss.Width(string(r))) * CellW
	}
}

// Measure implements render.Canvas.
func (c *TermCanvas) Measure(text string) (w, h float64) {
	return float64(lipgloss.Width(text)) * CellW, CellH
}

// DrawTriangles implements render.Rasterizer: each cell whose center lies
// in a triangle is tinted.
func (c *TermCanvas) DrawTriangles(verts []geom.Point, indices []int, fill color.RGBA) {
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, d := indices[i], indices[i+1], indices[i+2]
		if a >= len(verts) || b >= len(verts) || d >= len(verts) {
			continue
		}
		c.fillPolygon([]geom.Point{verts[a], verts[b], verts[d]}, fill)
	}
}

// DrawPoints implements render.Rasterizer.
func (c *TermCanvas) DrawPoints(pts []render.PointSprite) {
	for _, p := range pts {
		c.put(p.P, markerGlyph(p.Size/2), p.Color, rankMarker)
	}
}

// Cell returns the rune at a cell, for tests and hit feedback.
func (c *TermCanvas) Cell(col, row int) rune {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0
	}
	return c.cells[row*c.cols+col].r
}

// Lines returns the grid as plain text without styling.
func (c *TermCanvas) Lines() []string {
	out := make([]string, c.rows)
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		b.Reset()
		for _, cl := range c.cells[row*c.cols : (row+1)*c.cols] {
			b.WriteRune(cl.r)
		}
		out[row] = b.String()
	}
	return out
}

// String renders the grid with lipgloss styles. Runs of cells with the
// same colors share one style.
func (c *TermCanvas) String() string {
	var b strings.Builder
	var run strings.Builder
	for row := 0; row < c.rows; row++ {
		line := c.cells[row*c.cols : (row+1)*c.cols]
		start := 0
		for i := 1; i <= len(line); i++ {
			if i < len(line) && sameStyle(line[i], line[start]) {
				continue
			}
			run.Reset()
			for _, cl := range line[start:i] {
				run.WriteRune(cl.r)
			}
			b.WriteString(cellStyle(line[start]).Render(run.String()))
			start = i
		}
		if row < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sameStyle(a, b cell) bool {
	return a.fg == b.fg && a.bg == b.bg && a.hasB == b.hasB
}

func cellStyle(cl cell) lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(render.Hex(cl.fg)))
	if cl.hasB {
		st = st.Background(lipgloss.Color(render.Hex(cl.bg)))
	}
	return st
}
