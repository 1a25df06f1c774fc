package render

import (
	"fmt"
	"math"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/label"
	"github.com/litescript/ls-skychart/internal/pick"
)

// DSORenderer draws deep-sky objects: oriented ellipses for galaxies with
// axes, dashed circles for nebulae and clusters, small rings otherwise.
type DSORenderer struct{}

func (DSORenderer) Name() string { return "dso" }

// ScreenAngle returns the on-screen direction, in radians, of a position
// angle (degrees east of north) at ra/dec. It follows the projection, so
// mirroring and frame rotation are accounted for.
func ScreenAngle(ctx *Context, raDeg, decDeg, paDeg float64) (float64, bool) {
	p1, ok := ctx.Project(raDeg, decDeg)
	if !ok {
		return 0, false
	}
	ra, dec := astro.DegToRad(raDeg), astro.DegToRad(decDeg)
	pa := astro.DegToRad(paDeg)
	d := math.Max(ctx.Proj.FieldRadius()/50, 1e-5)

	sinDec2 := math.Sin(dec)*math.Cos(d) + math.Cos(dec)*math.Sin(d)*math.Cos(pa)
	dec2 := math.Asin(math.Max(-1, math.Min(1, sinDec2)))
	ra2 := ra + math.Atan2(math.Sin(pa)*math.Sin(d)*math.Cos(dec), math.Cos(d)-math.Sin(dec)*sinDec2)

	p2, ok := ctx.Project(astro.RadToDeg(ra2), astro.RadToDeg(dec2))
	if !ok {
		return 0, false
	}
	return math.Atan2(p2.Y-p1.Y, p2.X-p1.X), true
}

func (DSORenderer) Draw(ctx *Context) Output {
	var out Output
	scene := ctx.Data.Scene
	if !ctx.Layers.DSO || scene == nil {
		return out
	}
	col := ParseColor(ctx.Theme.DSO)
	textCol := Blend(col, ParseColor(ctx.Theme.Label), 0.5)
	style := Style{Stroke: col, LineWidth: ctx.LineWidth()}

	for _, o := range scene.DSO {
		p, ok := ctx.Project(o.RA, o.Dec)
		if !ok {
			continue
		}
		reach := ctx.ArcminToPixels(math.Max(o.Size, o.MajorAxis) / 2)
		if !ctx.Visible(p, reach+20) {
			continue
		}

		var anchor label.Anchor
		var kind label.Kind
		hitR := 5.0
		switch {
		case o.Type == catalog.TypeGalaxy && o.MajorAxis > 0:
			minor := o.MinorAxis
			if minor <= 0 {
				minor = o.MajorAxis
			}
			rx := math.Max(ctx.ArcminToPixels(o.MajorAxis/2), 3)
			ry := math.Max(ctx.ArcminToPixels(minor/2), 2)
			angle, ok := ScreenAngle(ctx, o.RA, o.Dec, o.PosAngle)
			if !ok {
				angle = 0
			}
			// rx lies along angle, the screen direction of the major axis.
			ctx.Canvas.Ellipse(p, rx, ry, angle, style)
			anchor = label.Anchor{Center: p, Major: rx, Minor: ry, Angle: angle}
			kind = label.Ellipse
			hitR = math.Max(hitR, rx)
		case o.Type == catalog.TypeNebula || o.Type == catalog.TypeCluster:
			r := math.Max(ctx.ArcminToPixels(o.Size/2), 4)
			s := style
			s.Dashed = true
			ctx.Canvas.Circle(p, r, s)
			anchor = label.Anchor{Center: p, Radius: r}
			kind = label.Diffuse
			hitR = math.Max(hitR, r)
		default:
			ctx.Canvas.Circle(p, 3, style)
			anchor = label.Anchor{Center: p, Radius: 3}
			kind = label.Point
		}
		out.Drawn++

		ctx.Picks.Register(pick.Selectable{
			ID: o.ID, Kind: string(o.Type), Shape: pick.ShapeCircle, Center: p, Radius: hitR, Priority: 1,
		})

		text := o.ID
		if text == "" {
			text = o.Label
		}
		var sub string
		if o.Mag != 0 && ctx.State.FovDeg <= 30 {
			sub = fmt.Sprintf("%.1f", o.Mag)
		}
		if _, placed := ctx.PlaceLabel(anchor, kind, text, sub, textCol); placed {
			out.Labeled++
		}
	}
	return out
}
