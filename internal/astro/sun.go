package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/solar"
)

// SunPosition returns the apparent equatorial coordinates of the Sun in
// degrees, from the Meeus solar theory (accurate to about 0.01 degrees).
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	ra, dec := solar.ApparentEquatorial(JulianDate(t))
	return normalizeAngle360(RadToDeg(ra.Rad())), dec.Deg()
}

// AngularSeparation calculates the angular separation between two points on the celestial sphere.
// All coordinates in degrees. Returns separation in degrees.
func AngularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	ra1Rad := DegToRad(ra1)
	dec1Rad := DegToRad(dec1)
	ra2Rad := DegToRad(ra2)
	dec2Rad := DegToRad(dec2)

	// Haversine formula for angular separation
	dRA := ra2Rad - ra1Rad
	dDec := dec2Rad - dec1Rad

	a := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Sin(dRA/2)*math.Sin(dRA/2)
	if a > 1 {
		a = 1
	}

	return RadToDeg(2 * math.Asin(math.Sqrt(a)))
}
