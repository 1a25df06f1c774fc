// Package view holds the viewer's camera: which coordinate frame is active,
// where it points, how wide it looks, and for whom and when.
package view

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/litescript/ls-skychart/internal/astro"
)

// ThetaEpsilon keeps the center off the frame poles, where the meridian
// direction is undefined.
const ThetaEpsilon = 1e-6

// ErrFrameUnavailable is returned when the horizontal frame is requested
// without a site or date.
var ErrFrameUnavailable = errors.New("view: horizontal frame needs site and date")

// CoordSystem selects the frame the camera lives in.
type CoordSystem int

const (
	Equatorial CoordSystem = iota // ra/dec, fixed to the sky
	Horizontal                    // az/alt, fixed to the observer
)

func (c CoordSystem) String() string {
	switch c {
	case Equatorial:
		return "equatorial"
	case Horizontal:
		return "horizontal"
	default:
		return "unknown"
	}
}

// ParseCoordSystem parses "equatorial"/"eq" or "horizontal"/"hor"/"altaz".
func ParseCoordSystem(s string) (CoordSystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equatorial", "eq", "radec", "":
		return Equatorial, nil
	case "horizontal", "hor", "altaz":
		return Horizontal, nil
	}
	return Equatorial, fmt.Errorf("unknown coordinate system %q", s)
}

// Site is an observer location.
type Site struct {
	LatDeg float64
	LonDeg float64
}

// State is the camera. The zero value looks at ra=0, dec=0 in the
// equatorial frame with no field of view; use New for usable defaults.
type State struct {
	CoordSystem CoordSystem
	CenterPhi   float64 // frame longitude of the center, radians, [0, 2π)
	CenterTheta float64 // frame latitude of the center, radians
	FovDeg      float64
	Site        *Site
	Date        time.Time
}

// New returns a state centered on (phi, theta) with the given field of view.
func New(cs CoordSystem, phi, theta, fovDeg float64) State {
	s := State{CoordSystem: cs, FovDeg: fovDeg}
	s.SetCenter(phi, theta)
	return s
}

// SetCenter moves the center, normalizing phi into [0, 2π) and clamping
// theta away from the poles.
func (s *State) SetCenter(phi, theta float64) {
	if math.IsNaN(phi) || math.IsInf(phi, 0) {
		phi = 0
	}
	if math.IsNaN(theta) {
		theta = 0
	}
	s.CenterPhi = astro.NormalizeRad(phi)
	s.CenterTheta = math.Max(-math.Pi/2+ThetaEpsilon, math.Min(math.Pi/2-ThetaEpsilon, theta))
}

// FieldRadius returns half the field of view in radians.
func (s State) FieldRadius() float64 {
	return s.FovDeg * math.Pi / 360
}

// Frame returns the converter for the state's active frame, with sidereal
// time evaluated once for the state's date.
func (s State) Frame() Frame {
	return NewFrame(s.CoordSystem, s.Site, s.Date)
}

// CenterEquatorial returns the center direction as ra/dec radians.
func (s State) CenterEquatorial() (ra, dec float64, ok bool) {
	return s.Frame().ToEquatorial(s.CenterPhi, s.CenterTheta)
}

// SetCenterEquatorial points the camera at ra/dec (radians) in whatever frame
// is active.
func (s *State) SetCenterEquatorial(ra, dec float64) error {
	phi, theta, ok := s.Frame().FromEquatorial(ra, dec)
	if !ok {
		return ErrFrameUnavailable
	}
	s.SetCenter(phi, theta)
	return nil
}

// SwitchCoordSystem changes frame while keeping the same sky direction at
// the center.
func (s *State) SwitchCoordSystem(cs CoordSystem) error {
	if cs == s.CoordSystem {
		return nil
	}
	ra, dec, ok := s.CenterEquatorial()
	if !ok {
		return ErrFrameUnavailable
	}
	target := NewFrame(cs, s.Site, s.Date)
	phi, theta, ok := target.FromEquatorial(ra, dec)
	if !ok {
		return ErrFrameUnavailable
	}
	s.CoordSystem = cs
	s.SetCenter(phi, theta)
	return nil
}

// Frame converts between equatorial coordinates and the active frame.
type Frame struct {
	system CoordSystem
	ok     bool
	lat    float64
	lst    float64 // radians
}

// NewFrame builds a frame converter. The horizontal frame is unavailable
// without a site and a non-zero date.
func NewFrame(cs CoordSystem, site *Site, date time.Time) Frame {
	f := Frame{system: cs, ok: true}
	if cs != Horizontal {
		return f
	}
	if site == nil || date.IsZero() {
		f.ok = false
		return f
	}
	f.lat = astro.DegToRad(site.LatDeg)
	f.lst = astro.DegToRad(astro.LocalSiderealTime(date, site.LonDeg))
	return f
}

// System returns the frame's coordinate system.
func (f Frame) System() CoordSystem { return f.system }

// Available reports whether conversions can succeed.
func (f Frame) Available() bool { return f.ok }

// LST returns the local sidereal time in radians (zero for the equatorial
// frame).
func (f Frame) LST() float64 { return f.lst }

// FromEquatorial converts ra/dec radians to frame (phi, theta). In the
// horizontal frame phi = 2π − azimuth, so east stays left of the meridian as
// it does on the equatorial chart.
func (f Frame) FromEquatorial(ra, dec float64) (phi, theta float64, ok bool) {
	if !f.ok {
		return 0, 0, false
	}
	if f.system == Equatorial {
		return astro.NormalizeRad(ra), dec, true
	}
	az, alt := astro.EqToHor(ra, dec, f.lat, f.lst)
	return astro.NormalizeRad(2*math.Pi - az), alt, true
}

// ToEquatorial converts frame (phi, theta) back to ra/dec radians.
func (f Frame) ToEquatorial(phi, theta float64) (ra, dec float64, ok bool) {
	if !f.ok {
		return 0, 0, false
	}
	if f.system == Equatorial {
		return astro.NormalizeRad(phi), theta, true
	}
	ra, dec = astro.HorToEq(astro.NormalizeRad(2*math.Pi-phi), theta, f.lat, f.lst)
	return ra, dec, true
}

// Azimuth converts a horizontal-frame phi to an azimuth in radians.
func Azimuth(phi float64) float64 {
	return astro.NormalizeRad(2*math.Pi - phi)
}
