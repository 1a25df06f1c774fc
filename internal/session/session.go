// Package session owns the viewer's mutable state: the camera, the current
// scene, selection and the animations that move the camera. Input handlers
// mutate it; fetch goroutines post their results into it; renderers read a
// snapshot of it.
package session

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/ephem"
	"github.com/litescript/ls-skychart/internal/geom"
	"github.com/litescript/ls-skychart/internal/kinematics"
	"github.com/litescript/ls-skychart/internal/logging"
	"github.com/litescript/ls-skychart/internal/projection"
	"github.com/litescript/ls-skychart/internal/tilecache"
	"github.com/litescript/ls-skychart/internal/view"
)

// Config holds the session tunables.
type Config struct {
	FetchTimeout      time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	MaxEvents         int           `yaml:"max_events" env:"MAX_EVENTS"`
	TrajectoryRefresh time.Duration `yaml:"trajectory_refresh" env:"TRAJECTORY_REFRESH"`
	// LiveTime moves the view date to the current time on every full reload.
	LiveTime bool `yaml:"live_time" env:"LIVE_TIME"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		FetchTimeout:      15 * time.Second,
		MaxEvents:         50,
		TrajectoryRefresh: 10 * time.Minute,
	}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithRedraw registers the callback that asks the front end for a new
// frame. It may be called from fetch goroutines and is never called with
// the session lock held.
func WithRedraw(fn func()) Option {
	return func(s *Session) { s.redraw = fn }
}

// WithState sets the initial camera.
func WithState(st view.State) Option {
	return func(s *Session) { s.state = st }
}

// WithTileCache supplies a prebuilt tile cache, e.g. one with metrics.
func WithTileCache(c *tilecache.Cache) Option {
	return func(s *Session) { s.tiles = c }
}

// WithTileConfig sets the tile cache settings used when no cache is
// supplied.
func WithTileConfig(cfg tilecache.Config) Option {
	return func(s *Session) { s.tileCfg = cfg }
}

// WithKinematics sets the drag and zoom settings.
func WithKinematics(m kinematics.MomentumConfig, z kinematics.ZoomConfig) Option {
	return func(s *Session) { s.momentumCfg, s.zoomCfg = m, z }
}

// WithProjection sets the projection settings used to turn pointer motion
// into camera motion.
func WithProjection(cfg projection.Config) Option {
	return func(s *Session) { s.projCfg = cfg }
}

// WithPlanner enables the trajectory layer.
func WithPlanner(p *ephem.Planner) Option {
	return func(s *Session) { s.planner = p }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.clock = now }
}

// Session is safe for concurrent use.
type Session struct {
	cfg      Config
	provider catalog.Provider
	tiles    *tilecache.Cache
	shared   *tilecache.Shared
	planner  *ephem.Planner
	log      *logging.Logger
	redraw   func()
	clock    func() time.Time

	tileCfg     tilecache.Config
	momentumCfg kinematics.MomentumConfig
	zoomCfg     kinematics.ZoomConfig
	projCfg     projection.Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.RWMutex
	state         view.State
	width, height int

	zoom     *kinematics.Zoom
	momentum *kinematics.Momentum
	throttle kinematics.Throttle
	debounce kinematics.Debounce
	dragX    float64
	dragY    float64

	reqID         uint64
	scene         *catalog.Scene
	lastLoad      time.Time
	lastError     error
	fetchDuration time.Duration
	selected      string

	trajectories []catalog.Trajectory
	trajLoadedAt time.Time
	trajLoading  bool

	events       []Event
	maxEvents    int
	eventWriteAt int
}

// New creates a session over a provider. Nothing is fetched until Start.
func New(provider catalog.Provider, cfg Config, opts ...Option) *Session {
	def := DefaultConfig()
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = def.MaxEvents
	}
	if cfg.TrajectoryRefresh <= 0 {
		cfg.TrajectoryRefresh = def.TrajectoryRefresh
	}

	s := &Session{
		cfg:         cfg,
		provider:    provider,
		clock:       time.Now,
		tileCfg:     tilecache.DefaultConfig(),
		momentumCfg: kinematics.DefaultMomentumConfig(),
		zoomCfg:     kinematics.DefaultZoomConfig(),
		projCfg:     projection.DefaultConfig(),
		state:       view.New(view.Equatorial, 0, 0, 60),
		width:       800,
		height:      600,
		maxEvents:   cfg.MaxEvents,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.events = make([]Event, 0, s.maxEvents)

	if s.tiles == nil {
		s.tiles = tilecache.New(provider, s.tileCfg,
			tilecache.WithLogger(s.log.Named("tiles")),
			tilecache.WithOnUpdate(s.requestRedraw))
	}
	s.shared = tilecache.NewShared(provider)

	s.zoom = kinematics.NewZoom(s.zoomCfg, 0)
	s.zoom.Jump(s.zoom.NearestIndex(s.state.FovDeg))
	s.state.FovDeg = s.zoom.FovDeg()
	s.momentum = kinematics.NewMomentum(s.momentumCfg)
	s.throttle.Interval = s.zoomCfg.Throttle
	s.debounce.Delay = s.zoomCfg.Debounce
	if s.state.Site != nil && s.state.Date.IsZero() {
		s.state.Date = s.clock()
	}
	return s
}

// Start issues the first full load.
func (s *Session) Start() {
	s.mu.Lock()
	s.reloadLocked(false)
	s.mu.Unlock()
}

// Close cancels outstanding fetches and waits for their goroutines.
func (s *Session) Close() {
	s.cancel()
	s.Wait()
}

// Wait blocks until no scene, dataset, trajectory or tile load is running.
func (s *Session) Wait() {
	s.wg.Wait()
	s.tiles.Wait()
}

func (s *Session) requestRedraw() {
	if s.redraw != nil {
		s.redraw()
	}
}

// State returns a copy of the camera.
func (s *Session) State() view.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetSize records the canvas size used for scene requests and panning.
func (s *Session) SetSize(w, h int) {
	s.mu.Lock()
	s.width, s.height = w, h
	s.mu.Unlock()
}

// Size returns the canvas size.
func (s *Session) Size() (w, h int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// SetCenter points the camera at frame coordinates (radians) and reloads.
func (s *Session) SetCenter(phi, theta float64) {
	s.mu.Lock()
	s.momentum.Cancel()
	s.state.SetCenter(phi, theta)
	s.reloadLocked(false)
	s.mu.Unlock()
	s.requestRedraw()
}

// SetCenterEquatorial points the camera at ra/dec (degrees) in whatever
// frame is active, and reloads.
func (s *Session) SetCenterEquatorial(raDeg, decDeg float64) error {
	s.mu.Lock()
	if err := s.state.SetCenterEquatorial(astro.DegToRad(raDeg), astro.DegToRad(decDeg)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("recenter on %.3f/%.3f: %w", raDeg, decDeg, err)
	}
	s.momentum.Cancel()
	s.reloadLocked(false)
	s.mu.Unlock()
	s.requestRedraw()
	return nil
}

// SetCoordSystem switches frame, keeping the center direction.
func (s *Session) SetCoordSystem(cs view.CoordSystem) error {
	s.mu.Lock()
	if err := s.state.SwitchCoordSystem(cs); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("switch to %s: %w", cs, err)
	}
	s.reloadLocked(false)
	s.mu.Unlock()
	s.requestRedraw()
	return nil
}

// SetSite sets the observer and date; a zero date means now.
func (s *Session) SetSite(site *view.Site, date time.Time) {
	s.mu.Lock()
	if date.IsZero() {
		date = s.clock()
	}
	s.state.Site = site
	s.state.Date = date
	s.trajLoadedAt = time.Time{}
	s.reloadLocked(false)
	s.mu.Unlock()
	s.requestRedraw()
}

// FieldOfViewLevels returns the zoom ladder.
func (s *Session) FieldOfViewLevels() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoom.Levels()
}

// FieldOfViewIndex returns the zoom level being shown or animated to.
func (s *Session) FieldOfViewIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoom.Index()
}

// SetFieldOfViewIndex animates to a zoom level. It reports whether an
// animation started; the front end drives it with Tick.
func (s *Session) SetFieldOfViewIndex(index int) bool {
	s.mu.Lock()
	started := s.zoom.Request(s.clock(), index)
	s.mu.Unlock()
	if started {
		s.requestRedraw()
	}
	return started
}

// ZoomBy steps the zoom level; positive zooms in.
func (s *Session) ZoomBy(delta int) bool {
	return s.SetFieldOfViewIndex(s.FieldOfViewIndex() + delta)
}

// ForceReload drops stale tile responses and requests a full scene.
func (s *Session) ForceReload() {
	s.mu.Lock()
	s.trajLoadedAt = time.Time{}
	s.reloadLocked(false)
	s.mu.Unlock()
}

// Select marks an object as selected; an empty id clears the selection.
func (s *Session) Select(id string) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
	s.requestRedraw()
}

// Selected returns the selected object id.
func (s *Session) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// panLocked moves the camera so the sky under the canvas center follows a
// pointer displacement of (dx, dy) pixels.
func (s *Session) panLocked(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	proj := projection.New(s.state, s.width, s.height, s.projCfg)
	target := geom.Point{X: float64(s.width)/2 - dx, Y: float64(s.height)/2 - dy}
	phi, theta, ok := proj.PixelToFrame(target)
	if !ok || math.IsNaN(phi) || math.IsNaN(theta) {
		return
	}
	s.state.SetCenter(phi, theta)
}
