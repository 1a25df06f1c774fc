package render

import (
	"math"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/curve"
	"github.com/litescript/ls-skychart/internal/geom"
	"github.com/litescript/ls-skychart/internal/label"
	"github.com/litescript/ls-skychart/internal/view"
)

// HorizonRenderer draws the observer's horizon and the cardinal points. It
// works in either frame as long as a site and date are known.
type HorizonRenderer struct{}

func (HorizonRenderer) Name() string { return "horizon" }

var cardinals = []struct {
	name  string
	azDeg float64
}{
	{"N", 0}, {"E", 90}, {"S", 180}, {"W", 270},
}

// horizonProjector maps horizontal-frame coordinates through the active
// frame onto the canvas.
type horizonProjector struct {
	ctx *Context
	hor view.Frame
}

func (p horizonProjector) FrameToPixel(phi, theta float64) (geom.Point, bool) {
	ra, dec, ok := p.hor.ToEquatorial(phi, theta)
	if !ok {
		return geom.Point{}, false
	}
	return p.ctx.ProjectVec(astro.Unit(ra, dec))
}

func (HorizonRenderer) Draw(ctx *Context) Output {
	var out Output
	if !ctx.Layers.Horizon || ctx.State.Site == nil || ctx.State.Date.IsZero() {
		return out
	}
	hp := horizonProjector{ctx: ctx, hor: view.NewFrame(view.Horizontal, ctx.State.Site, ctx.State.Date)}
	if !hp.hor.Available() || !ctx.Frame.Available() {
		return out
	}

	col := ParseColor(ctx.Theme.Horizon)
	style := Style{Stroke: col, LineWidth: ctx.LineWidth() * 1.5}
	sample := ctx.Opts.Curve.SampleStep(ctx.Proj.FieldRadius())

	// Trace around the horizon point nearest the view center.
	centerPhi := 0.0
	if ra, dec, ok := ctx.State.CenterEquatorial(); ok {
		if phi, _, ok := hp.hor.FromEquatorial(ra, dec); ok {
			centerPhi = phi
		}
	}
	runs := curve.Trace(hp, curve.Parallel(0), centerPhi-math.Pi, centerPhi+math.Pi, sample)
	out.Drawn += ctx.Stroke(runs, style)

	textCol := Blend(col, ParseColor(ctx.Theme.Label), 0.5)
	for _, c := range cardinals {
		p, ok := hp.FrameToPixel(astro.NormalizeRad(2*math.Pi-astro.DegToRad(c.azDeg)), 0)
		if !ok || !ctx.Visible(p, 0) {
			continue
		}
		ctx.Canvas.Circle(p, 2, Style{Fill: col, Filled: true})
		out.Drawn++
		if _, placed := ctx.PlaceLabel(label.Anchor{Center: p, Radius: 2, Size: 4}, label.Point, c.name, "", textCol); placed {
			out.Labeled++
		}
	}
	return out
}
