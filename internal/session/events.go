package session

import (
	"time"

	"github.com/litescript/ls-skychart/internal/view"
)

// EventType represents the type of session event.
type EventType string

const (
	EventSceneLoaded        EventType = "SCENE_LOADED"
	EventSceneFailed        EventType = "SCENE_FAILED"
	EventSceneStale         EventType = "SCENE_STALE"
	EventDatasetLoaded      EventType = "DATASET_LOADED"
	EventDatasetFailed      EventType = "DATASET_FAILED"
	EventTrajectoriesLoaded EventType = "TRAJECTORIES_LOADED"
	EventTrajectoriesFailed EventType = "TRAJECTORIES_FAILED"
)

// Event is one entry of the session log shown in the status line.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID uint64    `json:"request_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// addEvent adds an event to the ring buffer.
func (s *Session) addEvent(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Timestamp.IsZero() {
		e.Timestamp = s.clock()
	}
	if len(s.events) < s.maxEvents {
		s.events = append(s.events, e)
	} else {
		s.events[s.eventWriteAt] = e
		s.eventWriteAt = (s.eventWriteAt + 1) % s.maxEvents
	}
}

// eventsOrderedLocked returns events in chronological order.
func (s *Session) eventsOrderedLocked() []Event {
	if len(s.events) == 0 {
		return nil
	}
	if len(s.events) < s.maxEvents {
		out := make([]Event, len(s.events))
		copy(out, s.events)
		return out
	}
	out := make([]Event, s.maxEvents)
	for i := 0; i < s.maxEvents; i++ {
		out[i] = s.events[(s.eventWriteAt+i)%s.maxEvents]
	}
	return out
}

// RecentEvents returns the last n events.
func (s *Session) RecentEvents(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.eventsOrderedLocked()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Snapshot is a consistent copy of the session's status.
type Snapshot struct {
	State         view.State
	RequestID     uint64
	HasScene      bool
	LastLoad      time.Time
	LastError     error
	FetchDuration time.Duration
	Selected      string
	TilesCached   int
	TilesInFlight int
	Trajectories  int
	Events        []Event
}

// Snapshot returns the current status.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		State:         s.state,
		RequestID:     s.reqID,
		HasScene:      s.scene != nil,
		LastLoad:      s.lastLoad,
		LastError:     s.lastError,
		FetchDuration: s.fetchDuration,
		Selected:      s.selected,
		TilesCached:   s.tiles.Len(),
		TilesInFlight: s.tiles.InFlight(),
		Trajectories:  len(s.trajectories),
		Events:        s.eventsOrderedLocked(),
	}
}
