package render

import (
	"bytes"
	"encoding/json"
	"image/color"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/curve"
	"github.com/litescript/ls-skychart/internal/logging"
	"github.com/litescript/ls-skychart/internal/view"
)

func testData() *Data {
	return &Data{
		Scene: &catalog.Scene{
			FovDeg: 60,
			Layers: catalog.AllLayers(),
			Theme:  catalog.DefaultTheme(),
			DSO: []catalog.Object{
				{ID: "M31", Type: catalog.TypeGalaxy, RA: 5, Dec: 5, Mag: 3.4, MajorAxis: 180, MinorAxis: 60, PosAngle: 35},
				{ID: "M42", Type: catalog.TypeNebula, RA: 12, Dec: -8, Size: 60},
			},
			Planets: []catalog.Object{
				{ID: "mars", Label: "Mars", Type: catalog.TypePlanet, RA: 350, Dec: -3},
			},
			Trajectories: []catalog.Trajectory{{
				ID:    "c1",
				Label: "Comet X",
				Points: []catalog.TrajectoryPoint{
					{RA: 340, Dec: 15, Label: "Mar 1"},
					{RA: 345, Dec: 16},
					{RA: 350, Dec: 17},
				},
			}},
		},
		Stars: []catalog.Star{
			{ID: "alpha", Name: "Alpha", RA: 0, Dec: 0, Mag: 0},
			{ID: "faint", RA: 2, Dec: 2, Mag: 9},
		},
		MilkyWay: &catalog.MilkyWay{ID: "mw", Polygons: []catalog.MilkyWayPolygon{{
			Brightness: 1,
			Ring:       []catalog.Coord{{RA: 350, Dec: -10}, {RA: 10, Dec: -10}, {RA: 10, Dec: 10}, {RA: 350, Dec: 10}},
		}}},
	}
}

func renderFrame(t *testing.T, s view.State, data *Data, opts Options, raster bool) (*Recorder, *Context, Stats) {
	t.Helper()
	rec := NewRecorder(800, 600)
	var r Rasterizer
	if raster {
		r = rec
	}
	ctx := NewContext(s, rec, r, data, nil, opts)
	stats := DefaultPipeline(logging.Discard()).Render(ctx)
	return rec, ctx, stats
}

func TestPipelineDrawsEveryLayer(t *testing.T) {
	rec, ctx, stats := renderFrame(t, view.New(view.Equatorial, 0, 0, 60), testData(), DefaultOptions(), true)

	require.Len(t, stats.Layers, 10)
	for _, name := range []string{"milkyway", "grid", "ecliptic", "horizon", "constellations", "planets", "stars", "dso", "trajectories", "highlights"} {
		assert.Contains(t, stats.Layers, name)
	}

	ops := rec.Ops()
	require.NotEmpty(t, ops)
	assert.Equal(t, OpClear, ops[0].Kind)
	assert.Equal(t, "#05070d", ops[0].Color)

	assert.Equal(t, 1, stats.Layers["milkyway"].Drawn)
	assert.Equal(t, 1, rec.Count(OpTriangles))
	assert.Greater(t, stats.Layers["grid"].Drawn, 0)
	assert.Greater(t, stats.Layers["grid"].Labeled, 0)
	assert.Greater(t, stats.Layers["ecliptic"].Drawn, 0)
	assert.Zero(t, stats.Layers["horizon"].Drawn, "no site, no horizon")

	stars := stats.Layers["stars"]
	assert.Equal(t, 1, stars.Drawn)
	assert.Equal(t, 1, stars.Skipped, "mag 9 is past the limit for a 60 degree field")
	assert.Equal(t, 1, rec.Count(OpPoints))

	assert.Equal(t, 2, stats.Layers["dso"].Drawn)
	assert.Equal(t, 1, rec.Count(OpEllipse))
	assert.Equal(t, 1, stats.Layers["planets"].Drawn)
	assert.Greater(t, stats.Layers["trajectories"].Drawn, 0)

	texts := rec.Texts()
	for _, want := range []string{"Alpha", "0.0", "M31", "M42", "Mars", "Comet X", "Mar 1"} {
		assert.Contains(t, texts, want)
	}

	hit, ok := ctx.Picks.HitTest(401, 300)
	require.True(t, ok)
	assert.Equal(t, "alpha", hit.ID)
}

func TestOptimizedFrameSkipsLabels(t *testing.T) {
	opts := DefaultOptions()
	opts.Optimized = true
	rec, _, stats := renderFrame(t, view.New(view.Equatorial, 0, 0, 60), testData(), opts, true)

	assert.Empty(t, rec.Texts())
	assert.Zero(t, stats.Total().Labeled)
	assert.Equal(t, 1, stats.Layers["stars"].Drawn)
}

func TestLabelsLayerOff(t *testing.T) {
	data := testData()
	data.Scene.Layers.Labels = false
	rec, _, _ := renderFrame(t, view.New(view.Equatorial, 0, 0, 60), data, DefaultOptions(), true)
	assert.Empty(t, rec.Texts())
}

func TestCanvasFallbackWithoutRasterizer(t *testing.T) {
	rec, _, stats := renderFrame(t, view.New(view.Equatorial, 0, 0, 60), testData(), DefaultOptions(), false)

	assert.Zero(t, rec.Count(OpTriangles))
	assert.Zero(t, rec.Count(OpPoints))
	assert.Equal(t, 1, rec.Count(OpPolygon))
	assert.Equal(t, 1, stats.Layers["stars"].Drawn)
	assert.Equal(t, OpPolygon, rec.Ops()[0].Kind, "no clear without a rasterizer")
}

func TestUnavailableFrameDrawsNothing(t *testing.T) {
	s := view.New(view.Horizontal, 0, 0.5, 60)
	_, _, stats := renderFrame(t, s, testData(), DefaultOptions(), true)
	assert.Zero(t, stats.Total().Drawn)
}

func TestHorizonAndCardinals(t *testing.T) {
	s := view.New(view.Horizontal, math.Pi, astro.DegToRad(20), 90)
	s.Site = &view.Site{LatDeg: 40, LonDeg: 0}
	s.Date = time.Date(2024, 3, 20, 22, 0, 0, 0, time.UTC)

	rec, _, stats := renderFrame(t, s, &Data{}, DefaultOptions(), false)

	assert.Greater(t, stats.Layers["horizon"].Drawn, 1)
	texts := rec.Texts()
	assert.Contains(t, texts, "S")
	assert.NotContains(t, texts, "N")
}

func TestSelectionHighlightWinsPick(t *testing.T) {
	data := testData()
	data.Selected = "alpha"
	_, ctx, stats := renderFrame(t, view.New(view.Equatorial, 0, 0, 60), data, DefaultOptions(), true)

	assert.Equal(t, 1, stats.Layers["highlights"].Drawn)
	hit, ok := ctx.Picks.HitTest(400, 300)
	require.True(t, ok)
	assert.Equal(t, "highlight", hit.Kind)
	assert.Equal(t, "alpha", hit.ID)
}

func TestDataLookup(t *testing.T) {
	data := testData()
	data.Stars = append(data.Stars, catalog.Star{Name: "Nameless ID", RA: 1, Dec: 1})

	o, ok := data.Lookup("mars")
	require.True(t, ok)
	assert.Equal(t, catalog.TypePlanet, o.Type)

	o, ok = data.Lookup("alpha")
	require.True(t, ok)
	assert.Equal(t, catalog.TypeStar, o.Type)
	assert.Equal(t, "Alpha", o.Label)

	_, ok = data.Lookup("Nameless ID")
	assert.True(t, ok)

	_, ok = data.Lookup("nope")
	assert.False(t, ok)
	_, ok = data.Lookup("")
	assert.False(t, ok)
}

func TestGridStepsShrinkWithFov(t *testing.T) {
	cfg := curve.DefaultConfig()
	fovs := []float64{180, 120, 90, 60, 45, 30, 20, 10, 5, 2, 1, 0.5}
	prevPhi, prevTheta := math.Inf(1), math.Inf(1)
	for _, fov := range fovs {
		phi, theta := GridSteps(view.New(view.Equatorial, 0, 0, fov), cfg)
		assert.LessOrEqual(t, phi, prevPhi, "fov %v", fov)
		assert.LessOrEqual(t, theta, prevTheta, "fov %v", fov)
		assert.Greater(t, phi, 0.0)
		prevPhi, prevTheta = phi, theta

		hp, ht := GridSteps(view.New(view.Horizontal, 0, 0, fov), cfg)
		assert.Equal(t, ht, hp)
		assert.Equal(t, theta, ht)
	}
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "0h", FormatRA(0, 15))
	assert.Equal(t, "6h", FormatRA(90, 15))
	assert.Equal(t, "23h", FormatRA(-15, 15))
	assert.Equal(t, "2h30m", FormatRA(37.5, 2.5))
	assert.Equal(t, "1h01m05s", FormatRA(3665.0*15/3600, 0.1))

	assert.Equal(t, "-30°", FormatDec(-30, 10))
	assert.Equal(t, "0°", FormatDec(0, 10))
	assert.Equal(t, "+45°30'", FormatDec(45.5, 0.5))
	assert.Equal(t, "+45°", FormatDec(45.5, 5))
	assert.Equal(t, "-0°30'", FormatDec(-0.5, 0.25))

	assert.Equal(t, "270°", FormatAz(-90, 10))
	assert.Equal(t, "12°30'", FormatAz(12.5, 0.5))
}

func TestStarRadius(t *testing.T) {
	assert.InDelta(t, 3.8, StarRadius(0, 6), 1e-9)
	assert.Equal(t, 0.8, StarRadius(10, 6))
	assert.Equal(t, 5.0, StarRadius(-10, 6))
	assert.Less(t, StarRadius(4, 6), StarRadius(2, 6))
}

func TestScreenAngle(t *testing.T) {
	rec := NewRecorder(800, 800)
	ctx := NewContext(view.New(view.Equatorial, 0, 0, 20), rec, nil, nil, nil, DefaultOptions())

	north, ok := ScreenAngle(ctx, 0, 0, 0)
	require.True(t, ok)
	assert.InDelta(t, -math.Pi/2, north, 1e-3, "north is up")

	east, ok := ScreenAngle(ctx, 0, 0, 90)
	require.True(t, ok)
	assert.InDelta(t, math.Pi, math.Abs(east), 1e-3, "east is left")
}

func TestColors(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 255, A: 255}, ParseColor("#ff0000"))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, ParseColor("bogus"))

	black := color.RGBA{A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	assert.Equal(t, "#000000", Hex(Blend(black, white, 0)))
	assert.Equal(t, "#ffffff", Hex(Blend(black, white, 1)))
	mid := Blend(black, white, 0.5)
	assert.InDelta(t, 128, int(mid.R), 1)
}

func TestRecorderExport(t *testing.T) {
	rec, ctx, stats := renderFrame(t, view.New(view.Equatorial, 0, 0, 60), testData(), DefaultOptions(), true)

	var buf bytes.Buffer
	require.NoError(t, rec.Export(ctx, stats).WriteJSON(&buf))

	var decoded FrameExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 800.0, decoded.Width)
	assert.Equal(t, "equatorial", decoded.View.CoordSystem)
	assert.Equal(t, 60.0, decoded.View.FovDeg)
	assert.Len(t, decoded.Ops, len(rec.Ops()))
	assert.Equal(t, 1, decoded.Layers["stars"].Drawn)

	rec.Reset()
	assert.Empty(t, rec.Ops())
}

func TestDescribe(t *testing.T) {
	o := catalog.Object{ID: "m31", Label: "M31", Type: catalog.TypeGalaxy, RA: 10.68, Dec: 41.27, Mag: 3.4}
	st := view.New(view.Equatorial, 0, 0, 60)
	s := Describe(o, st)
	assert.True(t, strings.HasPrefix(s, "M31 | galaxy | RA 0h42m"), s)
	assert.Contains(t, s, "mag 3.4")
	assert.NotContains(t, s, "Alt")

	st.Site = &view.Site{LatDeg: 40, LonDeg: -74}
	st.Date = time.Date(2024, 10, 1, 2, 0, 0, 0, time.UTC)
	assert.Contains(t, Describe(o, st), "Alt")
}

func TestCenterText(t *testing.T) {
	st := view.New(view.Equatorial, 0, 0, 60)
	assert.Equal(t, "RA 0h00m00s Dec 0°", CenterText(st))
}
