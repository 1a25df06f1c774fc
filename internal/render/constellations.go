package render

import (
	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/geom"
	"github.com/litescript/ls-skychart/internal/label"
)

// ConstellationRenderer draws stick figures, boundaries and names. Every
// segment is flattened along its great circle, so long boundary edges bend
// correctly at any zoom.
type ConstellationRenderer struct{}

func (ConstellationRenderer) Name() string { return "constellations" }

func (ConstellationRenderer) Draw(ctx *Context) Output {
	var out Output
	c := ctx.Data.Constellations
	if !ctx.Layers.Constellations || c == nil {
		return out
	}
	flat := ctx.Flattener()

	if ctx.Layers.Boundaries {
		style := Style{Stroke: ParseColor(ctx.Theme.Boundary), LineWidth: ctx.LineWidth() * 0.8, Dashed: true}
		out.add(strokeFigures(ctx, flat.Polyline, c.Boundaries, style))
	}

	lineCol := ParseColor(ctx.Theme.Constellation)
	out.add(strokeFigures(ctx, flat.Polyline, c.Lines, Style{Stroke: lineCol, LineWidth: ctx.LineWidth()}))

	textCol := Blend(lineCol, ParseColor(ctx.Theme.Label), 0.6)
	for _, l := range c.Labels {
		p, ok := ctx.Project(l.RA, l.Dec)
		if !ok || !ctx.Visible(p, 0) {
			continue
		}
		text := l.Label
		if text == "" {
			text = l.ID
		}
		if _, placed := ctx.PlaceLabel(label.Anchor{Center: p, Radius: 4, Size: 2}, label.Asterism, text, "", textCol); placed {
			out.Labeled++
		}
	}
	return out
}

func strokeFigures(ctx *Context, flatten func([]astro.Vec3) [][]geom.Point, figs []catalog.Figure, s Style) Output {
	var out Output
	for _, f := range figs {
		runs := flatten(coordsToVecs(f.Points))
		n := ctx.Stroke(runs, s)
		if n == 0 {
			out.Skipped++
			continue
		}
		out.Drawn += n
	}
	return out
}

func (o *Output) add(other Output) {
	o.Drawn += other.Drawn
	o.Labeled += other.Labeled
	o.Skipped += other.Skipped
}
