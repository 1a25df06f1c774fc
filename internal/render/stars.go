package render

import (
	"fmt"
	"math"
	"slices"

	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/label"
	"github.com/litescript/ls-skychart/internal/pick"
)

// StarRenderer draws stars as magnitude-scaled dots, brightest first, and
// labels the named ones bright enough for the current limit.
type StarRenderer struct{}

func (StarRenderer) Name() string { return "stars" }

// StarRadius returns the dot radius in pixels for a magnitude under a
// limiting magnitude.
func StarRadius(mag, limit float64) float64 {
	return math.Max(0.8, math.Min(5, 0.8+(limit-mag)*0.5))
}

func magLimit(ctx *Context) float64 {
	if s := ctx.Data.Scene; s != nil && s.MagLimit != 0 {
		return s.MagLimit
	}
	return catalog.MagLimitForFov(ctx.State.FovDeg)
}

func (StarRenderer) Draw(ctx *Context) Output {
	var out Output
	if !ctx.Layers.Stars || len(ctx.Data.Stars) == 0 {
		return out
	}
	limit := magLimit(ctx)
	labelLimit := math.Max(1.5, limit-4)

	stars := slices.Clone(ctx.Data.Stars)
	slices.SortStableFunc(stars, func(a, b catalog.Star) int {
		switch {
		case a.Mag < b.Mag:
			return -1
		case a.Mag > b.Mag:
			return 1
		}
		return 0
	})

	base := ParseColor(ctx.Theme.Star)
	bg := ParseColor(ctx.Theme.Background)
	labelCol := ParseColor(ctx.Theme.Label)

	var sprites []PointSprite
	for _, s := range stars {
		if s.Mag > limit {
			out.Skipped++
			continue
		}
		p, ok := ctx.Project(s.RA, s.Dec)
		if !ok || !ctx.Visible(p, 5) {
			continue
		}
		r := StarRadius(s.Mag, limit)
		col := Blend(bg, base, math.Min(1, 0.45+r/5))

		if ctx.Raster != nil {
			sprites = append(sprites, PointSprite{P: p, Size: 2 * r, Color: col})
		} else {
			ctx.Canvas.Circle(p, r, Style{Fill: col, Filled: true})
		}
		out.Drawn++

		id := s.ID
		if id == "" {
			id = s.Name
		}
		ctx.Picks.Register(pick.Selectable{
			ID: id, Kind: "star", Shape: pick.ShapeCircle, Center: p, Radius: math.Max(r+2, 4), Priority: 2,
		})

		anchor := label.Anchor{Center: p, Radius: r, Size: r * r}
		if s.Name == "" || s.Mag > labelLimit {
			ctx.Labels.AddMarker(p, anchor.Size)
			continue
		}
		if _, placed := ctx.PlaceLabel(anchor, label.Point, s.Name, fmt.Sprintf("%.1f", s.Mag), labelCol); placed {
			out.Labeled++
		}
	}
	if len(sprites) > 0 {
		ctx.Raster.DrawPoints(sprites)
	}
	return out
}
