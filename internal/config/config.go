// Package config loads viewer settings. Values are layered: built-in
// defaults, then a YAML file, then SKYCHART_* environment variables, then
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/curve"
	"github.com/litescript/ls-skychart/internal/ephem"
	"github.com/litescript/ls-skychart/internal/kinematics"
	"github.com/litescript/ls-skychart/internal/label"
	"github.com/litescript/ls-skychart/internal/logging"
	"github.com/litescript/ls-skychart/internal/projection"
	"github.com/litescript/ls-skychart/internal/render"
	"github.com/litescript/ls-skychart/internal/session"
	"github.com/litescript/ls-skychart/internal/tilecache"
	"github.com/litescript/ls-skychart/internal/view"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SKYCHART_"

// Config holds all viewer settings.
type Config struct {
	View         ViewConfig                `yaml:"view" envPrefix:"VIEW_"`
	Provider     ProviderConfig            `yaml:"provider" envPrefix:"PROVIDER_"`
	Cache        tilecache.Config          `yaml:"cache" envPrefix:"CACHE_"`
	Projection   projection.Config         `yaml:"projection" envPrefix:"PROJECTION_"`
	Curve        CurveConfig               `yaml:"curve" envPrefix:"CURVE_"`
	Label        label.Config              `yaml:"label" envPrefix:"LABEL_"`
	Momentum     kinematics.MomentumConfig `yaml:"momentum" envPrefix:"MOMENTUM_"`
	Zoom         kinematics.ZoomConfig     `yaml:"zoom" envPrefix:"ZOOM_"`
	Logging      LoggingConfig             `yaml:"logging" envPrefix:"LOG_"`
	Trajectories ephem.TrajectoryConfig    `yaml:"trajectories" envPrefix:"TRAJECTORIES_"`
	Session      session.Config            `yaml:"session" envPrefix:"SESSION_"`
}

// ViewConfig is the initial camera.
type ViewConfig struct {
	CoordSystem string  `yaml:"coord_system" env:"COORD_SYSTEM"`
	RA          float64 `yaml:"ra" env:"RA"`   // degrees; the azimuth in the horizontal frame
	Dec         float64 `yaml:"dec" env:"DEC"` // degrees; the altitude in the horizontal frame
	FovDeg      float64 `yaml:"fov_deg" env:"FOV_DEG"`
	Width       int     `yaml:"width" env:"WIDTH"`
	Height      int     `yaml:"height" env:"HEIGHT"`

	// The observer is only used when HasSite is set.
	HasSite bool    `yaml:"has_site" env:"HAS_SITE"`
	Lat     float64 `yaml:"lat" env:"LAT"`
	Lon     float64 `yaml:"lon" env:"LON"`
	// Date is RFC 3339; empty means now.
	Date string `yaml:"date" env:"DATE"`
}

// ProviderConfig selects where chart data comes from.
type ProviderConfig struct {
	// Kind is "offline" or "http".
	Kind    string        `yaml:"kind" env:"KIND"`
	URL     string        `yaml:"url" env:"URL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	HorizonsURL      string        `yaml:"horizons_url" env:"HORIZONS_URL"`
	HorizonsCacheTTL time.Duration `yaml:"horizons_cache_ttl" env:"HORIZONS_CACHE_TTL"`
}

// CurveConfig holds the grid settings and the flattening preset.
type CurveConfig struct {
	Grid curve.Config `yaml:"grid" envPrefix:"GRID_"`
	// MobileLike selects the coarse flattening preset.
	MobileLike bool `yaml:"mobile_like" env:"MOBILE_LIKE"`
	// Non-zero values override the preset.
	Tolerance float64 `yaml:"tolerance" env:"TOLERANCE"`
	MaxDepth  int     `yaml:"max_depth" env:"MAX_DEPTH"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"LEVEL"`
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"MAX_AGE_DAYS"`
	Compress   bool   `yaml:"compress" env:"COMPRESS"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		View: ViewConfig{
			CoordSystem: "equatorial",
			FovDeg:      60,
			Width:       800,
			Height:      600,
		},
		Provider: ProviderConfig{
			Kind:             "offline",
			Timeout:          catalog.DefaultTimeout,
			HorizonsURL:      ephem.HorizonsAPIURL,
			HorizonsCacheTTL: ephem.PathCacheTTL,
		},
		Cache:        tilecache.DefaultConfig(),
		Projection:   projection.DefaultConfig(),
		Curve:        CurveConfig{Grid: curve.DefaultConfig()},
		Label:        label.DefaultConfig(),
		Momentum:     kinematics.DefaultMomentumConfig(),
		Zoom:         kinematics.DefaultZoomConfig(),
		Logging:      LoggingConfig{Level: "info", MaxSizeMB: 20, MaxBackups: 3, MaxAgeDays: 7},
		Trajectories: ephem.DefaultTrajectoryConfig(),
		Session:      session.DefaultConfig(),
	}
}

// Validate checks the settings that cannot be repaired by defaults.
func (c *Config) Validate() error {
	var errs []error
	if _, err := view.ParseCoordSystem(c.View.CoordSystem); err != nil {
		errs = append(errs, err)
	}
	if c.View.FovDeg <= 0 || c.View.FovDeg > 360 {
		errs = append(errs, fmt.Errorf("view fov %.2f out of range", c.View.FovDeg))
	}
	if c.View.Width <= 0 || c.View.Height <= 0 {
		errs = append(errs, fmt.Errorf("view size %dx%d must be positive", c.View.Width, c.View.Height))
	}
	if c.View.HasSite && (c.View.Lat < -90 || c.View.Lat > 90) {
		errs = append(errs, fmt.Errorf("site latitude %.2f out of range", c.View.Lat))
	}
	if _, err := c.date(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Provider.Kind) {
	case "offline":
	case "http":
		if c.Provider.URL == "" {
			errs = append(errs, errors.New("provider kind http needs a url"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown provider kind %q", c.Provider.Kind))
	}
	for i := 1; i < len(c.Zoom.Levels); i++ {
		if c.Zoom.Levels[i] >= c.Zoom.Levels[i-1] {
			errs = append(errs, errors.New("zoom levels must be strictly decreasing"))
			break
		}
	}
	return errors.Join(errs...)
}

func (c *Config) date() (time.Time, error) {
	if c.View.Date == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, c.View.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("view date: %w", err)
	}
	return t.UTC(), nil
}

// ViewState builds the initial camera. In the horizontal frame without a
// site the camera keeps its frame coordinates until a site is set.
func (c *Config) ViewState() (view.State, error) {
	cs, err := view.ParseCoordSystem(c.View.CoordSystem)
	if err != nil {
		return view.State{}, err
	}
	date, err := c.date()
	if err != nil {
		return view.State{}, err
	}

	st := view.New(view.Equatorial, 0, 0, c.View.FovDeg)
	if c.View.HasSite {
		st.Site = &view.Site{LatDeg: c.View.Lat, LonDeg: c.View.Lon}
		if date.IsZero() {
			date = time.Now().UTC()
		}
	}
	st.Date = date

	// RA/Dec name the frame coordinates: the horizontal frame stores
	// phi = 2π − az.
	phi, theta := astro.DegToRad(c.View.RA), astro.DegToRad(c.View.Dec)
	if cs == view.Horizontal {
		phi = -phi
	}
	st.CoordSystem = cs
	st.SetCenter(phi, theta)
	return st, nil
}

// Flatten returns the flattening settings.
func (c *Config) Flatten() curve.FlattenConfig {
	f := curve.FlattenPreset(c.Curve.MobileLike)
	if c.Curve.Tolerance > 0 {
		f.Tolerance = c.Curve.Tolerance
	}
	if c.Curve.MaxDepth > 0 {
		f.MaxDepth = c.Curve.MaxDepth
	}
	return f
}

// RenderOptions returns the per-frame renderer settings.
func (c *Config) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	opts.Projection = c.Projection
	opts.Curve = c.Curve.Grid
	opts.Flatten = c.Flatten()
	opts.Label = c.Label
	return opts
}

// NewLogger builds the logger. With a file configured, console output is
// only kept when console is set; the terminal viewer owns the screen.
func (c *Config) NewLogger(console bool) *logging.Logger {
	level := logging.ParseLevel(c.Logging.Level)
	if c.Logging.File == "" {
		if !console {
			return logging.Discard()
		}
		return logging.New(level)
	}
	fc := logging.DefaultFileConfig(c.Logging.File)
	if c.Logging.MaxSizeMB > 0 {
		fc.MaxSizeMB = c.Logging.MaxSizeMB
	}
	if c.Logging.MaxBackups > 0 {
		fc.MaxBackups = c.Logging.MaxBackups
	}
	if c.Logging.MaxAgeDays > 0 {
		fc.MaxAgeDays = c.Logging.MaxAgeDays
	}
	fc.Compress = c.Logging.Compress
	return logging.NewWithFile(level, fc, console)
}

// NewProvider builds the chart data provider.
func (c *Config) NewProvider(log *logging.Logger) catalog.Provider {
	if strings.ToLower(c.Provider.Kind) == "http" {
		return catalog.NewHTTPClient(c.Provider.URL,
			catalog.WithTimeout(c.Provider.Timeout),
			catalog.WithLogger(log.Named("catalog")))
	}
	return catalog.NewOffline()
}

// NewPlanner builds the trajectory planner, or nil when no target is
// configured.
func (c *Config) NewPlanner(log *logging.Logger) *ephem.Planner {
	if len(c.Trajectories.Targets) == 0 {
		return nil
	}
	horizons := ephem.NewHorizonsClient(
		ephem.WithBaseURL(c.Provider.HorizonsURL),
		ephem.WithCacheTTL(c.Provider.HorizonsCacheTTL),
		ephem.WithLogger(log.Named("horizons")))
	src := ephem.NewSource(ephem.ParseMode(c.Trajectories.Mode), horizons)
	return ephem.NewPlanner(src, c.Trajectories, log.Named("ephem"))
}

// SessionOptions returns the session options derived from the config.
func (c *Config) SessionOptions(log *logging.Logger) ([]session.Option, error) {
	st, err := c.ViewState()
	if err != nil {
		return nil, err
	}
	opts := []session.Option{
		session.WithLogger(log.Named("session")),
		session.WithState(st),
		session.WithTileConfig(c.Cache),
		session.WithKinematics(c.Momentum, c.Zoom),
		session.WithProjection(c.Projection),
	}
	if p := c.NewPlanner(log); p != nil {
		opts = append(opts, session.WithPlanner(p))
	}
	return opts, nil
}
