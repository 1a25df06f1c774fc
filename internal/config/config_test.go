package config

import (
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-skychart/internal/curve"
	"github.com/litescript/ls-skychart/internal/view"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "equatorial", cfg.View.CoordSystem)
	assert.Equal(t, 60.0, cfg.View.FovDeg)
	assert.Equal(t, "offline", cfg.Provider.Kind)
	assert.Equal(t, 240, cfg.Cache.MaxEntries)
	assert.Equal(t, 2.5, cfg.Projection.CullFactor)
	assert.Equal(t, []string{"sun"}, cfg.Trajectories.Targets)
	assert.Equal(t, 15*time.Second, cfg.Session.FetchTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
view:
  coord_system: horizontal
  fov_deg: 90
  has_site: true
  lat: 51.5
  lon: -0.1
cache:
  max_entries: 500
zoom:
  duration: 1s
session:
  fetch_timeout: 5s
trajectories:
  targets: [mars, jupiter]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "horizontal", cfg.View.CoordSystem)
	assert.Equal(t, 90.0, cfg.View.FovDeg)
	assert.True(t, cfg.View.HasSite)
	assert.Equal(t, 51.5, cfg.View.Lat)
	assert.Equal(t, 500, cfg.Cache.MaxEntries)
	assert.Equal(t, 32, cfg.Cache.BatchSize, "unset keys keep defaults")
	assert.Equal(t, time.Second, cfg.Zoom.Duration)
	assert.NotEmpty(t, cfg.Zoom.Levels)
	assert.Equal(t, 5*time.Second, cfg.Session.FetchTimeout)
	assert.Equal(t, []string{"mars", "jupiter"}, cfg.Trajectories.Targets)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SKYCHART_VIEW_FOV_DEG", "30")
	t.Setenv("SKYCHART_PROVIDER_KIND", "http")
	t.Setenv("SKYCHART_PROVIDER_URL", "http://localhost:9000")
	t.Setenv("SKYCHART_CACHE_BATCH_SIZE", "8")
	t.Setenv("SKYCHART_CURVE_GRID_MIN_LINES", "6")
	t.Setenv("SKYCHART_ZOOM_THROTTLE", "50ms")
	t.Setenv("SKYCHART_TRAJECTORIES_TARGETS", "moon,mars")

	cfg := Default()
	require.NoError(t, ParseEnv(cfg))

	assert.Equal(t, 30.0, cfg.View.FovDeg)
	assert.Equal(t, "http", cfg.Provider.Kind)
	assert.Equal(t, "http://localhost:9000", cfg.Provider.URL)
	assert.Equal(t, 8, cfg.Cache.BatchSize)
	assert.Equal(t, 6.0, cfg.Curve.Grid.MinLines)
	assert.Equal(t, 50*time.Millisecond, cfg.Zoom.Throttle)
	assert.Equal(t, []string{"moon", "mars"}, cfg.Trajectories.Targets)
	assert.NoError(t, cfg.Validate())
}

func TestFlagsApply(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-url", "http://sky.example", "-fov", "20", "-lat", "40", "-targets", "mars, ,moon", "-mobile"}))

	cfg := Default()
	cfg.View.RA = 12
	f.Apply(fs, cfg)

	assert.Equal(t, "http", cfg.Provider.Kind)
	assert.Equal(t, "http://sky.example", cfg.Provider.URL)
	assert.Equal(t, 20.0, cfg.View.FovDeg)
	assert.Equal(t, 12.0, cfg.View.RA, "unset flags leave values alone")
	assert.True(t, cfg.View.HasSite)
	assert.Equal(t, 40.0, cfg.View.Lat)
	assert.Equal(t, []string{"mars", "moon"}, cfg.Trajectories.Targets)
	assert.True(t, f.IsSet("mobile"))
	assert.Equal(t, curve.MobileFlatten(), cfg.Flatten())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad frame", func(c *Config) { c.View.CoordSystem = "galactic" }},
		{"zero fov", func(c *Config) { c.View.FovDeg = 0 }},
		{"bad size", func(c *Config) { c.View.Width = 0 }},
		{"bad latitude", func(c *Config) { c.View.HasSite = true; c.View.Lat = 120 }},
		{"bad date", func(c *Config) { c.View.Date = "yesterday" }},
		{"http without url", func(c *Config) { c.Provider.Kind = "http" }},
		{"unknown provider", func(c *Config) { c.Provider.Kind = "ftp" }},
		{"zoom ladder", func(c *Config) { c.Zoom.Levels = []float64{10, 20} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestViewState(t *testing.T) {
	cfg := Default()
	cfg.View.RA = 90
	cfg.View.Dec = 30
	st, err := cfg.ViewState()
	require.NoError(t, err)
	assert.Equal(t, view.Equatorial, st.CoordSystem)
	assert.InDelta(t, math.Pi/2, st.CenterPhi, 1e-12)
	assert.InDelta(t, math.Pi/6, st.CenterTheta, 1e-12)
	assert.Nil(t, st.Site)

	cfg.View.CoordSystem = "horizontal"
	cfg.View.HasSite = true
	cfg.View.Lat, cfg.View.Lon = 40, -74
	cfg.View.Date = "2024-03-20T22:00:00Z"
	st, err = cfg.ViewState()
	require.NoError(t, err)
	assert.Equal(t, view.Horizontal, st.CoordSystem)
	require.NotNil(t, st.Site)
	assert.Equal(t, 40.0, st.Site.LatDeg)
	assert.Equal(t, time.Date(2024, 3, 20, 22, 0, 0, 0, time.UTC), st.Date)
	// Azimuth 90 (east) is stored as phi = 2π − az.
	assert.InDelta(t, 90, view.Azimuth(st.CenterPhi)*180/math.Pi, 1e-9)
}

func TestRenderOptions(t *testing.T) {
	cfg := Default()
	cfg.Curve.Tolerance = 0.5
	cfg.Label.Gap = 7
	opts := cfg.RenderOptions()
	assert.Equal(t, 0.5, opts.Flatten.Tolerance)
	assert.Equal(t, curve.DesktopFlatten().MaxDepth, opts.Flatten.MaxDepth)
	assert.Equal(t, 7.0, opts.Label.Gap)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.View.FovDeg = 45
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45.0, loaded.View.FovDeg)
}
