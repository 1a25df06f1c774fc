package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflineScene(t *testing.T) {
	o := NewOffline()
	at := time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC)

	scene, err := o.Scene(context.Background(), SceneRequest{
		RequestID: 7,
		Center:    Coord{RA: 100, Dec: -15},
		FovDeg:    60,
		Time:      at,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(7), scene.RequestID)
	assert.Equal(t, OfflineCatalogID, scene.CatalogID)
	assert.Equal(t, MagLimitForFov(60), scene.MagLimit)
	assert.Equal(t, OfflineDatasetID, scene.DatasetIDs.MilkyWay)
	assert.NotEmpty(t, scene.DSO)

	var names []string
	for _, s := range scene.StarsPreview {
		assert.LessOrEqual(t, s.Mag, 2.0)
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "Sirius")

	require.Len(t, scene.Planets, 1)
	sun := scene.Planets[0]
	assert.Equal(t, TypeSun, sun.Type)
	// Near the March equinox the Sun sits close to RA 0.
	assert.True(t, sun.RA < 1 || sun.RA > 359, "sun ra %v", sun.RA)

	require.NotEmpty(t, scene.Selection)
	assert.Contains(t, scene.Selection, ZoneOf(0, 100, -15))
}

func TestOfflineSceneOptimizedSkipsSelection(t *testing.T) {
	scene, err := NewOffline().Scene(context.Background(), SceneRequest{
		Center: Coord{RA: 10, Dec: 40}, FovDeg: 30, Optimized: true,
	})
	require.NoError(t, err)
	assert.Empty(t, scene.Selection)
}

func TestOfflineSceneCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewOffline().Scene(ctx, SceneRequest{FovDeg: 30})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOfflineTiles(t *testing.T) {
	o := NewOffline()
	sirius := ZoneOf(0, 101.287, -16.716)

	tiles, err := o.Tiles(context.Background(), OfflineCatalogID, 6, []ZoneRef{sirius})
	require.NoError(t, err)
	require.Len(t, tiles, 1)
	assert.Equal(t, sirius.Zone, tiles[0].Zone)

	found := false
	for _, s := range tiles[0].Stars {
		assert.Equal(t, sirius, ZoneOf(0, s.RA, s.Dec))
		if s.Name == "Sirius" {
			found = true
		}
	}
	assert.True(t, found)

	faint, err := o.Tiles(context.Background(), OfflineCatalogID, -2, []ZoneRef{sirius})
	require.NoError(t, err)
	assert.Empty(t, faint[0].Stars)
}

func TestOfflineUnknownIDs(t *testing.T) {
	o := NewOffline()
	ctx := context.Background()

	_, err := o.Tiles(ctx, "other", 6, nil)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = o.MilkyWay(ctx, "v2")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = o.Constellations(ctx, "v2")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOfflineMilkyWay(t *testing.T) {
	mw, err := NewOffline().MilkyWay(context.Background(), OfflineDatasetID)
	require.NoError(t, err)
	assert.Len(t, mw.Polygons, 18+6)
	for _, p := range mw.Polygons {
		assert.GreaterOrEqual(t, len(p.Ring), 6)
		for _, c := range p.Ring {
			assert.True(t, c.RA >= 0 && c.RA < 360)
			assert.True(t, c.Dec >= -90 && c.Dec <= 90)
		}
	}
}

func TestOfflineConstellations(t *testing.T) {
	c, err := NewOffline().Constellations(context.Background(), OfflineDatasetID)
	require.NoError(t, err)
	assert.Empty(t, c.Boundaries)
	require.Len(t, c.Labels, len(asterisms))

	var dipper *Figure
	for i := range c.Lines {
		if c.Lines[i].ID == "big-dipper-0" {
			dipper = &c.Lines[i]
		}
	}
	require.NotNil(t, dipper)
	assert.Len(t, dipper.Points, 8)

	for _, l := range c.Labels {
		if l.ID == "little-dipper" {
			assert.Greater(t, l.Dec, 75.0)
		}
	}
}

func TestGalacticToEquatorial(t *testing.T) {
	// Galactic center.
	gc := GalacticToEquatorial(0, 0)
	assert.InDelta(t, 266.405, gc.RA, 0.05)
	assert.InDelta(t, -28.936, gc.Dec, 0.05)

	// Galactic north pole.
	np := GalacticToEquatorial(0, 90)
	assert.InDelta(t, galPoleDec, np.Dec, 1e-6)
}
