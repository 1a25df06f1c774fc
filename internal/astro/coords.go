// Package astro provides astronomical coordinate transformations and sky math.
package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// SkyCoord represents celestial coordinates with both equatorial (RA/Dec)
// and horizontal (Az/El) components.
type SkyCoord struct {
	// Equatorial coordinates (J2000)
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)

	// Horizontal coordinates (observer-relative)
	AzDeg float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	ElDeg float64 // Elevation/Altitude in degrees (0=horizon, 90=zenith)
}

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg float64 // Latitude in degrees (north positive)
	LonDeg float64 // Longitude in degrees (east positive)
	Name   string  // Optional name for the site
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to horizontal
// coordinates (Az/El) for a given observer and time.
//
// The function preserves the input RA/Dec values and populates Az/El.
// Uses standard astronomical conventions:
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Elevation: 0° = horizon, 90° = zenith
func EquatorialToHorizontal(eq SkyCoord, obs Observer, t time.Time) SkyCoord {
	lst := DegToRad(LocalSiderealTime(t, obs.LonDeg))
	az, alt := EqToHor(DegToRad(eq.RAdeg), DegToRad(eq.DecDeg), DegToRad(obs.LatDeg), lst)

	return SkyCoord{
		RAdeg:  eq.RAdeg,
		DecDeg: eq.DecDeg,
		AzDeg:  RadToDeg(az),
		ElDeg:  RadToDeg(alt),
	}
}

// HorizontalToEquatorial converts an observed azimuth/elevation back to RA/Dec.
func HorizontalToEquatorial(hor SkyCoord, obs Observer, t time.Time) SkyCoord {
	lst := DegToRad(LocalSiderealTime(t, obs.LonDeg))
	ra, dec := HorToEq(DegToRad(hor.AzDeg), DegToRad(hor.ElDeg), DegToRad(obs.LatDeg), lst)

	return SkyCoord{
		RAdeg:  RadToDeg(ra),
		DecDeg: RadToDeg(dec),
		AzDeg:  hor.AzDeg,
		ElDeg:  hor.ElDeg,
	}
}

// EqToHor converts RA/Dec to azimuth/altitude. All angles are radians; lst is
// the local sidereal time as an angle. Azimuth is measured from north through
// east and normalized to [0, 2π).
func EqToHor(ra, dec, lat, lst float64) (az, alt float64) {
	ha := lst - ra
	sinDec, cosDec := math.Sincos(dec)
	sinLat, cosLat := math.Sincos(lat)
	sinHA, cosHA := math.Sincos(ha)

	sinAlt := sinDec*sinLat + cosDec*cosLat*cosHA
	alt = math.Asin(clampUnit(sinAlt))
	az = math.Atan2(-cosDec*sinHA, sinDec*cosLat-cosDec*cosHA*sinLat)
	return NormalizeRad(az), alt
}

// HorToEq is the inverse of EqToHor.
func HorToEq(az, alt, lat, lst float64) (ra, dec float64) {
	sinAlt, cosAlt := math.Sincos(alt)
	sinLat, cosLat := math.Sincos(lat)
	sinAz, cosAz := math.Sincos(az)

	sinDec := sinAlt*sinLat + cosAlt*cosLat*cosAz
	dec = math.Asin(clampUnit(sinDec))
	ha := math.Atan2(-sinAz*cosAlt, sinAlt*cosLat-cosAlt*sinLat*cosAz)
	return NormalizeRad(lst - ha), dec
}

// LocalSiderealTime returns the local mean sidereal time in degrees (0-360)
// for a UTC instant and an east-positive longitude.
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	gmst := sidereal.Mean(JulianDate(t)).Angle().Deg()
	return normalizeAngle360(gmst + lonDeg)
}

// JulianDate returns the Julian Date of t.
func JulianDate(t time.Time) float64 {
	// julian.TimeToJD ignores the zone offset, so hand it UTC.
	return julian.TimeToJD(t.UTC())
}

// NormalizeRad wraps an angle into [0, 2π).
func NormalizeRad(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// WrapPi wraps an angle into (-π, π].
func WrapPi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
