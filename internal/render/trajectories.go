package render

import (
	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/label"
	"github.com/litescript/ls-skychart/internal/pick"
)

// TrajectoryRenderer draws the apparent paths of moving objects with dated
// tick marks and marks the final position with the object's name.
type TrajectoryRenderer struct{}

func (TrajectoryRenderer) Name() string { return "trajectories" }

func (TrajectoryRenderer) Draw(ctx *Context) Output {
	var out Output
	scene := ctx.Data.Scene
	if !ctx.Layers.Trajectories || scene == nil {
		return out
	}
	col := ParseColor(ctx.Theme.Trajectory)
	textCol := Blend(col, ParseColor(ctx.Theme.Label), 0.5)
	style := Style{Stroke: col, LineWidth: ctx.LineWidth()}
	flat := ctx.Flattener()

	for _, tr := range scene.Trajectories {
		if len(tr.Points) == 0 {
			continue
		}
		vecs := make([]astro.Vec3, len(tr.Points))
		for i, p := range tr.Points {
			vecs[i] = EquatorialVec(p.RA, p.Dec)
		}
		runs := flat.Polyline(vecs)
		n := ctx.Stroke(runs, style)
		if n == 0 && len(tr.Points) > 1 {
			out.Skipped++
		}
		out.Drawn += n
		for _, run := range runs {
			ctx.Picks.Register(pick.Selectable{
				ID: tr.ID, Kind: "trajectory", Shape: pick.ShapePoints, Points: run, Tolerance: 4, Priority: 1,
			})
		}

		for i, tp := range tr.Points {
			last := i == len(tr.Points)-1
			if tp.Label == "" && !last {
				continue
			}
			p, ok := ctx.Project(tp.RA, tp.Dec)
			if !ok || !ctx.Visible(p, 0) {
				continue
			}
			r := 2.0
			text := tp.Label
			if last {
				r = 3.5
				if tr.Label != "" {
					text = tr.Label
				} else if text == "" {
					text = tr.ID
				}
			}
			ctx.Canvas.Circle(p, r, Style{Fill: col, Filled: true})
			if _, placed := ctx.PlaceLabel(label.Anchor{Center: p, Radius: r, Size: r}, label.Point, text, "", textCol); placed {
				out.Labeled++
			}
		}
	}
	return out
}
