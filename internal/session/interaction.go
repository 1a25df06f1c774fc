package session

import (
	"github.com/litescript/ls-skychart/internal/kinematics"
)

// BeginDrag starts a pan at pointer position (x, y). Any coast in progress
// stops.
func (s *Session) BeginDrag(x, y float64) {
	s.mu.Lock()
	s.momentum.Begin(s.clock(), x, y)
	s.dragX, s.dragY = x, y
	s.mu.Unlock()
}

// Drag moves the pan to (x, y). The scene is refreshed in optimized form at
// most once per throttle interval; a full reload follows once the pointer
// rests for the debounce delay.
func (s *Session) Drag(x, y float64) {
	s.mu.Lock()
	if !s.momentum.Dragging() {
		s.mu.Unlock()
		return
	}
	now := s.clock()
	s.momentum.Move(now, x, y)
	s.panLocked(x-s.dragX, y-s.dragY)
	s.dragX, s.dragY = x, y
	if s.throttle.Allow(now) {
		s.reloadLocked(true)
	}
	s.debounce.Trigger(now)
	s.mu.Unlock()
	s.requestRedraw()
}

// EndDrag releases the pan. It reports whether the view keeps coasting.
func (s *Session) EndDrag() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.momentum.Release(s.clock())
}

// Animating reports whether the front end should keep calling Tick.
func (s *Session) Animating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.animatingLocked()
}

func (s *Session) animatingLocked() bool {
	return s.zoom.Phase() != kinematics.Idle ||
		s.momentum.Phase() != kinematics.Idle ||
		s.debounce.Pending()
}

// Optimized reports whether frames should be drawn in the cheap form:
// during a drag, a coast or a zoom.
func (s *Session) Optimized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.momentum.Dragging() ||
		s.momentum.Phase() == kinematics.Active ||
		s.zoom.Phase() == kinematics.Active
}

// Tick advances the zoom and coast animations to the current time. Each
// call applies one coast step, so the front end should tick at the momentum
// tick interval. It reports whether another tick is needed.
func (s *Session) Tick() bool {
	s.mu.Lock()
	now := s.clock()
	moving := false

	if s.zoom.Phase() == kinematics.Active {
		fov, active := s.zoom.Tick(now)
		s.state.FovDeg = fov
		moving = moving || active
	}
	if s.momentum.Phase() == kinematics.Active {
		dx, dy, more := s.momentum.Step()
		s.panLocked(dx, dy)
		moving = moving || more
	}
	if moving {
		if s.throttle.Allow(now) {
			s.reloadLocked(true)
		}
	}

	settled := s.zoom.Settle()
	if s.momentum.Settle() {
		settled = true
	}
	switch {
	case settled:
		s.debounce.Cancel()
		s.throttle.Reset()
		s.reloadLocked(false)
	case s.debounce.Fire(now):
		s.reloadLocked(false)
	}

	more := s.animatingLocked()
	s.mu.Unlock()
	return more
}

// PanBy moves the camera as if the pointer had been dragged by (dx, dy)
// pixels, e.g. for arrow keys. Like a drag it refreshes cheaply right away
// and reloads fully once panning pauses.
func (s *Session) PanBy(dx, dy float64) {
	s.mu.Lock()
	now := s.clock()
	s.momentum.Cancel()
	s.panLocked(dx, dy)
	if s.throttle.Allow(now) {
		s.reloadLocked(true)
	}
	s.debounce.Trigger(now)
	s.mu.Unlock()
	s.requestRedraw()
}
