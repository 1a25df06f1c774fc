package render

import (
	"math"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/curve"
	"github.com/litescript/ls-skychart/internal/geom"
	"github.com/litescript/ls-skychart/internal/view"
)

// GridRenderer draws the coordinate grid of the active frame with edge
// labels: right ascension and declination for the equatorial frame, azimuth
// and altitude for the horizontal one.
type GridRenderer struct{}

func (GridRenderer) Name() string { return "grid" }

// GridSteps returns the meridian and parallel spacing in degrees for a
// state.
func GridSteps(s view.State, cfg curve.Config) (phiStep, thetaStep float64) {
	r := s.FovDeg / 2
	thetaStep = curve.SelectStep(curve.DecSteps, curve.ArcminDeg, r, cfg.MinLines)
	if s.CoordSystem == view.Equatorial {
		phiStep = curve.SelectStep(curve.RASteps, curve.TimeMinuteDeg, r, cfg.MinLines)
	} else {
		phiStep = thetaStep
	}
	return phiStep, thetaStep
}

func (GridRenderer) Draw(ctx *Context) Output {
	var out Output
	if !ctx.Layers.Grid || !ctx.Frame.Available() {
		return out
	}

	style := Style{Stroke: ParseColor(ctx.Theme.Grid), LineWidth: math.Max(ctx.Theme.GridLineWidth, 0.5)}
	textCol := Blend(ParseColor(ctx.Theme.Grid), ParseColor(ctx.Theme.Label), 0.5)

	cfg := ctx.Opts.Curve
	proj := ctx.Proj
	phi0, theta0 := proj.Center()
	fieldR := proj.FieldRadius()
	cull := math.Min(ctx.Opts.Projection.CullFactor*fieldR, math.Pi)
	if cull <= 0 {
		cull = math.Pi
	}
	sample := cfg.SampleStep(fieldR)
	w, h := ctx.Width(), ctx.Height()
	horizontal := ctx.State.CoordSystem == view.Horizontal

	phiStepDeg, thetaStepDeg := GridSteps(ctx.State, cfg)
	phiStep := astro.DegToRad(phiStepDeg)
	thetaStep := astro.DegToRad(thetaStepDeg)

	parEdge := curve.ResolveEdge(ctx.Opts.GridEdge, curve.Parallels, theta0)
	merEdge := curve.ResolveEdge(ctx.Opts.GridEdge, curve.Meridians, theta0)

	drawLabel := func(runs [][]geom.Point, edge curve.Edge, text string) {
		if ctx.Opts.Optimized || !ctx.Layers.Labels {
			return
		}
		for _, run := range runs {
			c, ok := curve.EdgeCrossing(run, edge, w, h, cfg.EdgeMargin)
			if !ok {
				continue
			}
			p := curve.LabelPoint(c, cfg.LabelOffset)
			tw, th := ctx.Canvas.Measure(text)
			r := geom.Centered(p, tw, th)
			// Keep edge labels fully on the canvas.
			dx := math.Max(0, -r.MinX) - math.Max(0, r.MaxX-w)
			dy := math.Max(0, -r.MinY) - math.Max(0, r.MaxY-h)
			r = geom.RectAt(r.MinX+dx, r.MinY+dy, tw, th)
			ctx.Canvas.Text(geom.Point{X: r.MinX, Y: r.MinY}, text, textCol)
			ctx.Labels.AddObstacle(r)
			out.Labeled++
			return
		}
	}

	// Parallels. Traced around the center meridian so runs never split at
	// phi = 0.
	for k := math.Ceil((-math.Pi/2 + thetaStep/2) / thetaStep); ; k++ {
		theta := k * thetaStep
		if theta >= math.Pi/2-thetaStep/2 {
			break
		}
		if math.Abs(theta-theta0) > cull {
			continue
		}
		runs := curve.Trace(proj, curve.Parallel(theta), phi0-math.Pi, phi0+math.Pi, sample)
		if len(runs) == 0 {
			continue
		}
		if horizontal && math.Abs(theta) < 1e-9 && ctx.Layers.Horizon {
			// The horizon renderer draws this one.
			continue
		}
		out.Drawn += ctx.Stroke(runs, style)
		drawLabel(runs, parEdge, FormatDec(astro.RadToDeg(theta), thetaStepDeg))
	}

	// Meridians, skipped when the whole great circle stays beyond the cull
	// radius.
	nMer := int(math.Round(2 * math.Pi / phiStep))
	for i := 0; i < nMer; i++ {
		phi := float64(i) * phiStep
		d := math.Asin(math.Min(1, math.Abs(math.Cos(theta0)*math.Sin(phi-phi0))))
		if d > cull {
			continue
		}
		runs := curve.Trace(proj, curve.Meridian(phi), -math.Pi/2, math.Pi/2, sample)
		if len(runs) == 0 {
			continue
		}
		out.Drawn += ctx.Stroke(runs, style)

		var text string
		if horizontal {
			text = FormatAz(astro.RadToDeg(view.Azimuth(phi)), phiStepDeg)
		} else {
			text = FormatRA(astro.RadToDeg(phi), phiStepDeg)
		}
		drawLabel(runs, merEdge, text)
	}
	return out
}
