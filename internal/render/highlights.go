package render

import (
	"math"

	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/label"
	"github.com/litescript/ls-skychart/internal/pick"
)

// HighlightRenderer rings the scene's highlighted objects and the current
// selection.
type HighlightRenderer struct{}

func (HighlightRenderer) Name() string { return "highlights" }

// Lookup finds a drawable object by id among planets, deep-sky objects,
// highlights and stars.
func (d *Data) Lookup(id string) (catalog.Object, bool) {
	if id == "" {
		return catalog.Object{}, false
	}
	if s := d.Scene; s != nil {
		for _, list := range [][]catalog.Object{s.Planets, s.DSO, s.Highlights} {
			for _, o := range list {
				if o.ID == id {
					return o, true
				}
			}
		}
	}
	for _, s := range d.Stars {
		if s.ID == id || (s.ID == "" && s.Name == id) {
			return catalog.Object{ID: id, Label: s.Name, Type: catalog.TypeStar, RA: s.RA, Dec: s.Dec, Mag: s.Mag}, true
		}
	}
	return catalog.Object{}, false
}

func (HighlightRenderer) Draw(ctx *Context) Output {
	var out Output
	var targets []catalog.Object
	if s := ctx.Data.Scene; s != nil {
		targets = append(targets, s.Highlights...)
	}
	selected, hasSelection := ctx.Data.Lookup(ctx.Data.Selected)

	col := ParseColor(ctx.Theme.Highlight)
	ring := Style{Stroke: col, LineWidth: ctx.LineWidth() * 1.5}

	draw := func(o catalog.Object, withLabel bool) {
		p, ok := ctx.Project(o.RA, o.Dec)
		if !ok {
			return
		}
		r := math.Max(ctx.ArcminToPixels(math.Max(o.Size, o.MajorAxis)/2)+4, 8)
		if !ctx.Visible(p, r) {
			return
		}
		ctx.Canvas.Circle(p, r, ring)
		out.Drawn++
		ctx.Picks.Register(pick.Selectable{
			ID: o.ID, Kind: "highlight", Shape: pick.ShapeCircle, Center: p, Radius: r, Priority: 4,
		})
		if !withLabel || o.Label == "" {
			return
		}
		if _, placed := ctx.PlaceLabel(label.Anchor{Center: p, Radius: r}, label.Point, o.Label, "", col); placed {
			out.Labeled++
		}
	}

	for _, o := range targets {
		draw(o, true)
	}
	if hasSelection {
		// The selection was labeled by its own layer.
		draw(selected, false)
	}
	return out
}
