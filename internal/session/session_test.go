package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/ephem"
	"github.com/litescript/ls-skychart/internal/logging"
	"github.com/litescript/ls-skychart/internal/view"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeProvider struct {
	scene    func(req catalog.SceneRequest) (*catalog.Scene, error)
	tiles    []catalog.Tile
	calls    atomic.Int32
	gate     chan struct{}
	gateOnID uint64

	tileGate  chan struct{}
	tileCalls atomic.Int32
}

func (p *fakeProvider) Scene(ctx context.Context, req catalog.SceneRequest) (*catalog.Scene, error) {
	p.calls.Add(1)
	if p.gate != nil && req.RequestID == p.gateOnID {
		<-p.gate
	}
	return p.scene(req)
}

func (p *fakeProvider) Tiles(ctx context.Context, catalogID string, mag float64, refs []catalog.ZoneRef) ([]catalog.Tile, error) {
	p.tileCalls.Add(1)
	if p.tileGate != nil {
		<-p.tileGate
	}
	return p.tiles, nil
}

func (p *fakeProvider) MilkyWay(ctx context.Context, datasetID string) (*catalog.MilkyWay, error) {
	return &catalog.MilkyWay{ID: datasetID}, nil
}

func (p *fakeProvider) Constellations(ctx context.Context, datasetID string) (*catalog.Constellations, error) {
	return nil, errors.New("no constellations")
}

func basicScene(req catalog.SceneRequest) (*catalog.Scene, error) {
	return &catalog.Scene{
		RequestID: req.RequestID,
		Center:    req.Center,
		FovDeg:    req.FovDeg,
		Layers:    catalog.AllLayers(),
		Theme:     catalog.DefaultTheme(),
		CatalogID: "test",
		MagLimit:  req.MagLimit,
		StarsPreview: []catalog.Star{
			{ID: "a", RA: 1, Dec: 1, Mag: 1},
			{RA: 10, Dec: 10, Mag: 2},
		},
		Selection:  []catalog.ZoneRef{{Level: 0, Zone: 3}},
		DatasetIDs: catalog.DatasetIDs{MilkyWay: "mw-1", Constellations: "cons-1"},
	}, nil
}

func newTestSession(t *testing.T, p catalog.Provider, opts ...Option) (*Session, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 20, 22, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now), WithLogger(logging.Discard())}, opts...)
	s := New(p, DefaultConfig(), opts...)
	t.Cleanup(s.Close)
	return s, clock
}

func hasEvent(events []Event, typ EventType) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestStartLoadsSceneTilesAndDatasets(t *testing.T) {
	p := &fakeProvider{
		scene: basicScene,
		tiles: []catalog.Tile{{Level: 0, Zone: 3, Stars: []catalog.Star{
			{ID: "a", RA: 1, Dec: 1, Mag: 1},
			{RA: 10, Dec: 10, Mag: 2},
			{ID: "c", RA: 5, Dec: 5, Mag: 4},
		}}},
	}
	var redraws atomic.Int32
	s, _ := newTestSession(t, p, WithRedraw(func() { redraws.Add(1) }))

	s.Start()
	s.Wait()

	snap := s.Snapshot()
	require.True(t, snap.HasScene)
	assert.NoError(t, snap.LastError)
	assert.Equal(t, uint64(1), snap.RequestID)
	assert.Equal(t, 1, snap.TilesCached)
	assert.True(t, hasEvent(snap.Events, EventSceneLoaded))
	assert.True(t, hasEvent(snap.Events, EventDatasetLoaded))
	assert.True(t, hasEvent(snap.Events, EventDatasetFailed))
	assert.Positive(t, redraws.Load())

	d := s.Data()
	require.NotNil(t, d.Scene)
	assert.Len(t, d.Stars, 3, "duplicates by id and by position are dropped")
	require.NotNil(t, d.MilkyWay)
	assert.Equal(t, "mw-1", d.MilkyWay.ID)
	assert.Nil(t, d.Constellations)
}

func TestStaleSceneDropped(t *testing.T) {
	p := &fakeProvider{scene: basicScene, gate: make(chan struct{}), gateOnID: 1}
	s, _ := newTestSession(t, p)

	s.Start()
	s.ForceReload()
	// Let the second request land before releasing the first.
	require.Eventually(t, func() bool { return s.Snapshot().HasScene }, time.Second, 5*time.Millisecond)
	close(p.gate)
	s.Wait()

	snap := s.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestID)
	assert.Equal(t, uint64(2), s.Data().Scene.RequestID)
	assert.True(t, hasEvent(snap.Events, EventSceneStale))
}

func TestReloadKeepsZoneFetchedAcrossEpochs(t *testing.T) {
	p := &fakeProvider{
		scene:    basicScene,
		tileGate: make(chan struct{}),
		tiles: []catalog.Tile{{Level: 0, Zone: 3, Stars: []catalog.Star{
			{ID: "c", RA: 5, Dec: 5, Mag: 4},
		}}},
	}
	s, _ := newTestSession(t, p)

	s.Start()
	require.Eventually(t, func() bool { return p.tileCalls.Load() == 1 }, time.Second, 5*time.Millisecond)

	// Scene 2 selects the same zone while the first fetch is still pending.
	s.ForceReload()
	require.Eventually(t, func() bool { return p.tileCalls.Load() == 2 }, time.Second, 5*time.Millisecond)

	close(p.tileGate)
	s.Wait()

	assert.Equal(t, uint64(2), s.Data().Scene.RequestID)
	ids := make([]string, 0)
	for _, st := range s.Data().Stars {
		ids = append(ids, st.ID)
	}
	assert.Contains(t, ids, "c", "zone 3 of the live scene is drawn")
	assert.Equal(t, 1, s.Snapshot().TilesCached)
}

func TestSceneFailureKeepsPreviousScene(t *testing.T) {
	fail := atomic.Bool{}
	p := &fakeProvider{scene: func(req catalog.SceneRequest) (*catalog.Scene, error) {
		if fail.Load() {
			return nil, errors.New("backend down")
		}
		return basicScene(req)
	}}
	s, _ := newTestSession(t, p)

	s.Start()
	s.Wait()
	fail.Store(true)
	s.ForceReload()
	s.Wait()

	snap := s.Snapshot()
	assert.True(t, snap.HasScene)
	assert.EqualError(t, snap.LastError, "backend down")
	assert.True(t, hasEvent(snap.Events, EventSceneFailed))
}

func TestZoomAnimation(t *testing.T) {
	p := &fakeProvider{scene: basicScene}
	s, clock := newTestSession(t, p)
	s.Start()
	s.Wait()

	idx := s.FieldOfViewIndex()
	require.Equal(t, 60.0, s.FieldOfViewLevels()[idx])
	require.True(t, s.ZoomBy(1))
	target := s.FieldOfViewLevels()[idx+1]

	clock.Advance(100 * time.Millisecond)
	assert.True(t, s.Tick())
	assert.True(t, s.Optimized())
	fov := s.State().FovDeg
	assert.Less(t, fov, 60.0)
	assert.Greater(t, fov, target)

	before := s.Snapshot().RequestID
	clock.Advance(time.Second)
	assert.False(t, s.Tick())
	s.Wait()

	assert.Equal(t, target, s.State().FovDeg)
	assert.False(t, s.Animating())
	assert.Greater(t, s.Snapshot().RequestID, before)
}

func TestDragPansCamera(t *testing.T) {
	p := &fakeProvider{scene: basicScene}
	s, _ := newTestSession(t, p)
	s.SetSize(800, 600)

	s.BeginDrag(400, 300)
	assert.True(t, s.Optimized())
	s.Drag(500, 300)

	st := s.State()
	// Dragging right brings the sky east of the center into view.
	assert.Greater(t, st.CenterPhi, 0.0)
	assert.Less(t, st.CenterPhi, 1.0)
	assert.InDelta(t, 0, st.CenterTheta, 1e-6)

	assert.False(t, s.EndDrag(), "no velocity without elapsed time")
	s.Tick()
	s.Wait()
	assert.False(t, s.Animating())
	assert.True(t, s.Snapshot().HasScene)
}

func TestPointerClickAndDrag(t *testing.T) {
	p := &fakeProvider{scene: basicScene}
	s, _ := newTestSession(t, p)
	s.SetSize(800, 600)
	ptr := s.NewPointer(3)

	assert.False(t, ptr.Release(), "release without press")

	ptr.Press(100, 100)
	assert.True(t, ptr.Pressed())
	ptr.Move(102, 101)
	assert.True(t, ptr.Release(), "small jitter is still a click")

	before := s.State().CenterPhi
	ptr.Press(100, 100)
	ptr.Move(160, 100)
	assert.False(t, ptr.Release())
	assert.NotEqual(t, before, s.State().CenterPhi)
	assert.False(t, ptr.Pressed())

	ptr.Move(300, 100)
	s.Wait()
}

func TestSetCenterEquatorialNeedsSite(t *testing.T) {
	p := &fakeProvider{scene: basicScene}
	s, _ := newTestSession(t, p, WithState(view.New(view.Horizontal, 0, 0.5, 60)))

	err := s.SetCenterEquatorial(10, 20)
	assert.ErrorIs(t, err, view.ErrFrameUnavailable)
	s.Wait()
	assert.Zero(t, p.calls.Load())

	s.SetSite(&view.Site{LatDeg: 40, LonDeg: 0}, time.Time{})
	require.NoError(t, s.SetCenterEquatorial(10, 20))
	s.Wait()
	assert.Positive(t, p.calls.Load())
}

func TestTrajectoriesMerged(t *testing.T) {
	p := &fakeProvider{scene: basicScene}
	planner := ephem.NewPlanner(ephem.Solar{}, ephem.DefaultTrajectoryConfig(), logging.Discard())
	s, _ := newTestSession(t, p, WithPlanner(planner))

	s.Start()
	s.Wait()

	d := s.Data()
	require.NotNil(t, d.Scene)
	require.Len(t, d.Scene.Trajectories, 1)
	assert.Equal(t, "traj-sun", d.Scene.Trajectories[0].ID)
	assert.Equal(t, 1, s.Snapshot().Trajectories)
	assert.True(t, hasEvent(s.Snapshot().Events, EventTrajectoriesLoaded))
}

func TestEventRingBuffer(t *testing.T) {
	s := New(&fakeProvider{scene: basicScene}, Config{MaxEvents: 3}, WithLogger(logging.Discard()))
	defer s.Close()
	for i := 1; i <= 5; i++ {
		s.addEvent(Event{Type: EventSceneLoaded, RequestID: uint64(i)})
	}
	events := s.RecentEvents(10)
	require.Len(t, events, 3)
	assert.Equal(t, uint64(3), events[0].RequestID)
	assert.Equal(t, uint64(5), events[2].RequestID)
	assert.Len(t, s.RecentEvents(2), 2)
}
