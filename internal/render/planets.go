package render

import (
	"math"

	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/label"
	"github.com/litescript/ls-skychart/internal/pick"
)

// PlanetRenderer draws solar-system bodies as filled disks.
type PlanetRenderer struct{}

func (PlanetRenderer) Name() string { return "planets" }

func (PlanetRenderer) Draw(ctx *Context) Output {
	var out Output
	scene := ctx.Data.Scene
	if !ctx.Layers.Planets || scene == nil {
		return out
	}
	col := ParseColor(ctx.Theme.Planet)
	textCol := Blend(col, ParseColor(ctx.Theme.Label), 0.4)

	for _, o := range scene.Planets {
		p, ok := ctx.Project(o.RA, o.Dec)
		if !ok {
			continue
		}
		r := 3.5
		if o.Type == catalog.TypeSun || o.Type == catalog.TypeMoon {
			r = math.Max(ctx.ArcminToPixels(o.Size/2), 5)
		}
		if !ctx.Visible(p, r) {
			continue
		}
		ctx.Canvas.Circle(p, r, Style{Fill: col, Stroke: col, Filled: true, LineWidth: 1})
		out.Drawn++

		ctx.Picks.Register(pick.Selectable{
			ID: o.ID, Kind: string(o.Type), Shape: pick.ShapeCircle, Center: p, Radius: math.Max(r, 5), Priority: 3,
		})

		text := o.Label
		if text == "" {
			text = o.ID
		}
		if _, placed := ctx.PlaceLabel(label.Anchor{Center: p, Radius: r, Size: 2 * r * r}, label.Point, text, "", textCol); placed {
			out.Labeled++
		}
	}
	return out
}
