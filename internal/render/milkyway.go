package render

import (
	"github.com/litescript/ls-skychart/internal/geom"
)

// MilkyWayRenderer fills the Milky Way isophotes. Each ring is projected
// without culling, dropped if it misses the canvas, and triangulated for the
// rasterizer; without one it falls back to canvas polygons.
type MilkyWayRenderer struct{}

func (MilkyWayRenderer) Name() string { return "milkyway" }

func (MilkyWayRenderer) Draw(ctx *Context) Output {
	var out Output
	mw := ctx.Data.MilkyWay
	if !ctx.Layers.MilkyWay || mw == nil {
		return out
	}

	bg := ParseColor(ctx.Theme.Background)
	base := ParseColor(ctx.Theme.MilkyWay)
	view := geom.Rect{MaxX: ctx.Width(), MaxY: ctx.Height()}

	for _, poly := range mw.Polygons {
		pts := make([]geom.Point, 0, len(poly.Ring))
		bounds := geom.Rect{MinX: 1e300, MinY: 1e300, MaxX: -1e300, MaxY: -1e300}
		ok := true
		for _, c := range poly.Ring {
			p, vis := ctx.projectWide(c.RA, c.Dec)
			if !vis {
				ok = false
				break
			}
			pts = append(pts, p)
			bounds.MinX = min(bounds.MinX, p.X)
			bounds.MinY = min(bounds.MinY, p.Y)
			bounds.MaxX = max(bounds.MaxX, p.X)
			bounds.MaxY = max(bounds.MaxY, p.Y)
		}
		if !ok || len(pts) < 3 {
			out.Skipped++
			continue
		}
		if _, hit := bounds.Intersect(view); !hit {
			out.Skipped++
			continue
		}

		col := Blend(bg, base, 0.4+0.6*poly.Brightness)
		if ctx.Raster != nil {
			idx := geom.Triangulate(pts)
			if len(idx) == 0 {
				out.Skipped++
				continue
			}
			ctx.Raster.DrawTriangles(pts, idx, col)
		} else {
			ctx.Canvas.Polygon(pts, Style{Fill: col, Filled: true})
		}
		out.Drawn++
	}
	return out
}
