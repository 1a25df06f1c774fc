package render

import (
	"github.com/litescript/ls-skychart/internal/astro"
)

// EclipticRenderer draws the ecliptic as a flattened great circle.
type EclipticRenderer struct{}

func (EclipticRenderer) Name() string { return "ecliptic" }

// eclipticVertices holds the great circle at 10 degree spacing, closed.
var eclipticVertices = func() []astro.Vec3 {
	var pts []astro.Vec3
	for lon := 0.0; lon <= 360; lon += 10 {
		ra, dec := astro.EclipticPoint(astro.DegToRad(lon))
		pts = append(pts, astro.Unit(ra, dec))
	}
	return pts
}()

func (EclipticRenderer) Draw(ctx *Context) Output {
	var out Output
	if !ctx.Layers.Ecliptic {
		return out
	}
	style := Style{Stroke: ParseColor(ctx.Theme.Ecliptic), LineWidth: ctx.LineWidth(), Dashed: true}
	runs := ctx.Flattener().Polyline(eclipticVertices)
	out.Drawn += ctx.Stroke(runs, style)
	if out.Drawn == 0 {
		out.Skipped = 1
	}
	return out
}
