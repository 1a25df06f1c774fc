package session

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/render"
	"github.com/litescript/ls-skychart/internal/tilecache"
)

// reloadLocked issues a scene request for the current camera. A full
// reload bumps the tile epoch, so tile responses for earlier scenes are
// dropped on arrival. Must be called with s.mu held.
func (s *Session) reloadLocked(optimized bool) {
	if !optimized {
		s.tiles.BumpEpoch()
		if s.cfg.LiveTime {
			s.state.Date = s.clock()
		}
	}
	ra, dec, ok := s.state.CenterEquatorial()
	if !ok {
		s.log.Debug("scene request skipped: %s frame unavailable", s.state.CoordSystem)
		return
	}

	s.reqID++
	req := catalog.SceneRequest{
		RequestID: s.reqID,
		Center:    catalog.Coord{RA: astro.RadToDeg(ra), Dec: astro.RadToDeg(dec)},
		FovDeg:    s.state.FovDeg,
		MagLimit:  catalog.MagLimitForFov(s.state.FovDeg),
		Width:     s.width,
		Height:    s.height,
		Time:      s.state.Date,
		Optimized: optimized,
	}

	s.wg.Add(1)
	go s.loadScene(req)

	if !optimized && s.planner != nil && !s.trajLoading &&
		(s.trajLoadedAt.IsZero() || s.clock().Sub(s.trajLoadedAt) >= s.cfg.TrajectoryRefresh) {
		s.trajLoading = true
		when := s.state.Date
		if when.IsZero() {
			when = s.clock()
		}
		var obs *astro.Observer
		if site := s.state.Site; site != nil {
			obs = &astro.Observer{LatDeg: site.LatDeg, LonDeg: site.LonDeg}
		}
		s.wg.Add(1)
		go s.loadTrajectories(when, obs)
	}
}

func (s *Session) loadScene(req catalog.SceneRequest) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	scene, err := s.provider.Scene(ctx, req)
	took := time.Since(start)

	s.mu.Lock()
	if req.RequestID != s.reqID {
		s.mu.Unlock()
		s.log.Debug("dropping stale scene %d (current %d)", req.RequestID, s.reqID)
		s.addEvent(Event{Type: EventSceneStale, RequestID: req.RequestID})
		return
	}
	s.fetchDuration = took
	if err != nil {
		s.lastError = err
		s.mu.Unlock()
		s.log.Warn("scene %d failed: %v", req.RequestID, err)
		s.addEvent(Event{Type: EventSceneFailed, RequestID: req.RequestID, Detail: err.Error()})
		return
	}
	scene.RequestID = req.RequestID
	s.scene = scene
	s.lastLoad = s.clock()
	s.lastError = nil
	if !req.Optimized && len(scene.Selection) > 0 {
		s.tiles.Load(s.ctx, scene.CatalogID, scene.MagLimit, scene.Selection)
	}
	s.mu.Unlock()

	s.log.Debug("scene %d loaded in %v: %d preview stars, %d zones", req.RequestID, took, len(scene.StarsPreview), len(scene.Selection))
	s.addEvent(Event{Type: EventSceneLoaded, RequestID: req.RequestID, Detail: fmt.Sprintf("%d zones", len(scene.Selection))})
	s.requestRedraw()

	if !req.Optimized {
		s.loadDatasets(ctx, scene.DatasetIDs)
	}
}

// loadDatasets fetches the shared datasets named by a scene. Shared keeps
// one copy per id and coalesces concurrent loads of the same id.
func (s *Session) loadDatasets(ctx context.Context, ids catalog.DatasetIDs) {
	changed := false
	if ids.MilkyWay != "" {
		mw, _ := s.shared.Current()
		if mw == nil || mw.ID != ids.MilkyWay {
			if _, err := s.shared.MilkyWay(ctx, ids.MilkyWay); err != nil {
				s.log.Warn("milky way %s: %v", ids.MilkyWay, err)
				s.addEvent(Event{Type: EventDatasetFailed, Detail: err.Error()})
			} else {
				changed = true
				s.addEvent(Event{Type: EventDatasetLoaded, Detail: "milkyway:" + ids.MilkyWay})
			}
		}
	}
	if ids.Constellations != "" {
		_, cons := s.shared.Current()
		if cons == nil || cons.ID != ids.Constellations {
			if _, err := s.shared.Constellations(ctx, ids.Constellations); err != nil {
				s.log.Warn("constellations %s: %v", ids.Constellations, err)
				s.addEvent(Event{Type: EventDatasetFailed, Detail: err.Error()})
			} else {
				changed = true
				s.addEvent(Event{Type: EventDatasetLoaded, Detail: "constellations:" + ids.Constellations})
			}
		}
	}
	if changed {
		s.requestRedraw()
	}
}

func (s *Session) loadTrajectories(when time.Time, obs *astro.Observer) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.FetchTimeout)
	defer cancel()
	trs, err := s.planner.Trajectories(ctx, when, obs)

	s.mu.Lock()
	s.trajLoading = false
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("trajectories: %v", err)
		s.addEvent(Event{Type: EventTrajectoriesFailed, Detail: err.Error()})
		return
	}
	s.trajectories = trs
	s.trajLoadedAt = s.clock()
	s.mu.Unlock()

	s.addEvent(Event{Type: EventTrajectoriesLoaded, Detail: fmt.Sprintf("%d paths", len(trs))})
	s.requestRedraw()
}

// Data returns what the next frame should draw: the current scene with the
// planned trajectories merged in, the preview stars plus every cached tile
// of the scene's selection, and the shared datasets.
func (s *Session) Data() *render.Data {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := &render.Data{Selected: s.selected}
	if s.scene != nil {
		sc := *s.scene
		if len(s.trajectories) > 0 {
			sc.Trajectories = append(slices.Clone(sc.Trajectories), s.trajectories...)
		}
		d.Scene = &sc
		d.Stars = s.starsLocked(&sc)
	}
	d.MilkyWay, d.Constellations = s.shared.Current()
	return d
}

// starsLocked merges the preview with the cached tiles, dropping
// duplicates by id, or by position for stars without one.
func (s *Session) starsLocked(sc *catalog.Scene) []catalog.Star {
	type posKey struct{ ra, dec int64 }
	seenID := make(map[string]struct{}, len(sc.StarsPreview))
	seenPos := make(map[posKey]struct{})
	out := make([]catalog.Star, 0, len(sc.StarsPreview))

	add := func(st catalog.Star) {
		if st.ID != "" {
			if _, dup := seenID[st.ID]; dup {
				return
			}
			seenID[st.ID] = struct{}{}
		} else {
			k := posKey{int64(st.RA * 1e5), int64(st.Dec * 1e5)}
			if _, dup := seenPos[k]; dup {
				return
			}
			seenPos[k] = struct{}{}
		}
		out = append(out, st)
	}

	for _, st := range sc.StarsPreview {
		add(st)
	}
	bucket := tilecache.MagBucket(sc.MagLimit)
	for _, ref := range sc.Selection {
		stars, ok := s.tiles.Get(tilecache.Key{CatalogID: sc.CatalogID, MagBucket: bucket, Level: ref.Level, Zone: ref.Zone})
		if !ok {
			continue
		}
		for _, st := range stars {
			add(st)
		}
	}
	return out
}
