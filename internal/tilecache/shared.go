package tilecache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/litescript/ls-skychart/internal/catalog"
)

// DatasetFetcher loads the shared datasets. catalog.Provider satisfies it.
type DatasetFetcher interface {
	MilkyWay(ctx context.Context, datasetID string) (*catalog.MilkyWay, error)
	Constellations(ctx context.Context, datasetID string) (*catalog.Constellations, error)
}

// Shared holds the current copy of each shared dataset. Concurrent loads of
// the same (kind, datasetID) share one fetch. A fetched copy replaces the
// held one only if its id is still the latest requested for that kind, or
// if nothing is held yet.
type Shared struct {
	fetch DatasetFetcher
	group singleflight.Group

	mu             sync.Mutex
	milkyWay       *catalog.MilkyWay
	constellations *catalog.Constellations
	wantMilkyWay   string
	wantConst      string
}

// NewShared creates a shared dataset holder.
func NewShared(fetch DatasetFetcher) *Shared {
	return &Shared{fetch: fetch}
}

// MilkyWay returns the Milky Way dataset with the given id, fetching it if
// the held copy has a different id.
func (s *Shared) MilkyWay(ctx context.Context, datasetID string) (*catalog.MilkyWay, error) {
	s.mu.Lock()
	s.wantMilkyWay = datasetID
	if mw := s.milkyWay; mw != nil && mw.ID == datasetID {
		s.mu.Unlock()
		return mw, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do("milkyway:"+datasetID, func() (interface{}, error) {
		mw, err := s.fetch.MilkyWay(ctx, datasetID)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if datasetID == s.wantMilkyWay || s.milkyWay == nil {
			s.milkyWay = mw
		}
		s.mu.Unlock()
		return mw, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load milky way %s: %w", datasetID, err)
	}
	return v.(*catalog.MilkyWay), nil
}

// Constellations returns the constellation dataset with the given id.
func (s *Shared) Constellations(ctx context.Context, datasetID string) (*catalog.Constellations, error) {
	s.mu.Lock()
	s.wantConst = datasetID
	if c := s.constellations; c != nil && c.ID == datasetID {
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do("constellations:"+datasetID, func() (interface{}, error) {
		c, err := s.fetch.Constellations(ctx, datasetID)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if datasetID == s.wantConst || s.constellations == nil {
			s.constellations = c
		}
		s.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load constellations %s: %w", datasetID, err)
	}
	return v.(*catalog.Constellations), nil
}

// Current returns the held copies without fetching.
func (s *Shared) Current() (*catalog.MilkyWay, *catalog.Constellations) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.milkyWay, s.constellations
}
