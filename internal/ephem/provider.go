// Package ephem supplies apparent paths of solar-system bodies and
// spacecraft for the chart's trajectory layer.
package ephem

import (
	"context"
	"errors"
	"time"

	"github.com/litescript/ls-skychart/internal/astro"
)

// ErrNoData is returned when a source has nothing for a target or window.
var ErrNoData = errors.New("ephem: no data")

// Point is an apparent equatorial position at a specific time, degrees.
type Point struct {
	Time  time.Time
	RA    float64
	Dec   float64
	Valid bool
}

// Path is a dated sequence of positions.
type Path struct {
	Target Target
	Points []Point
	Start  time.Time
	End    time.Time
}

// Source returns apparent paths. A nil observer asks for geocentric
// positions.
type Source interface {
	// Name returns the source name for display/logging.
	Name() string

	// Path returns positions of target from start to end, step apart.
	Path(ctx context.Context, target Target, start, end time.Time, step time.Duration, obs *astro.Observer) (Path, error)
}

// Mode selects which sources are consulted.
type Mode int

const (
	ModeAuto     Mode = iota // Horizons, falling back to offline
	ModeHorizons             // JPL Horizons only
	ModeOffline              // built-in solar theory only
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeHorizons:
		return "horizons"
	case ModeOffline:
		return "offline"
	case ModeAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string. Unknown values map to auto.
func ParseMode(s string) Mode {
	switch s {
	case "horizons":
		return ModeHorizons
	case "offline":
		return ModeOffline
	default:
		return ModeAuto
	}
}

// Fallback tries each source in order and returns the first path with
// points.
type Fallback []Source

// Name implements Source.
func (f Fallback) Name() string { return "fallback" }

// Path implements Source.
func (f Fallback) Path(ctx context.Context, target Target, start, end time.Time, step time.Duration, obs *astro.Observer) (Path, error) {
	var errs []error
	for _, s := range f {
		p, err := s.Path(ctx, target, start, end, step, obs)
		if err == nil && len(p.Points) > 0 {
			return p, nil
		}
		if err == nil {
			err = ErrNoData
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return Path{}, ErrNoData
	}
	return Path{}, errors.Join(errs...)
}

// NewSource builds the source for a mode.
func NewSource(m Mode, horizons *HorizonsClient) Source {
	switch m {
	case ModeHorizons:
		return horizons
	case ModeOffline:
		return Solar{}
	default:
		return Fallback{horizons, Solar{}}
	}
}
