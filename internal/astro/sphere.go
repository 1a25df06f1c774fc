package astro

import "math"

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Dot returns the scalar product.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Unit returns the unit vector for a longitude-like angle phi and a
// latitude-like angle theta, both in radians.
func Unit(phi, theta float64) Vec3 {
	sinT, cosT := math.Sincos(theta)
	sinP, cosP := math.Sincos(phi)
	return Vec3{X: cosT * cosP, Y: cosT * sinP, Z: sinT}
}

// Spherical returns (phi, theta) of v in radians, phi in [0, 2π).
func (v Vec3) Spherical() (phi, theta float64) {
	u := v.Normalized()
	return NormalizeRad(math.Atan2(u.Y, u.X)), math.Asin(clampUnit(u.Z))
}

// GreatCircleMidpoint returns the midpoint of the shorter great-circle arc
// between two unit vectors. Antipodal inputs have no unique midpoint and
// return the zero vector.
func GreatCircleMidpoint(a, b Vec3) Vec3 {
	return a.Add(b).Normalized()
}

// Slerp interpolates along the great circle from a to b, t in [0, 1].
func Slerp(a, b Vec3, t float64) Vec3 {
	d := clampUnit(a.Dot(b))
	omega := math.Acos(d)
	if omega < 1e-12 {
		return a
	}
	s := math.Sin(omega)
	wa := math.Sin((1-t)*omega) / s
	wb := math.Sin(t*omega) / s
	return a.Scale(wa).Add(b.Scale(wb))
}

// obliquityRad is the Earth's axial tilt (J2000 epoch) in radians.
const obliquityRad = 23.439291 * math.Pi / 180

// EquatorialToEcliptic converts equatorial XYZ to ecliptic XYZ.
func EquatorialToEcliptic(eq Vec3) Vec3 {
	cosE := math.Cos(obliquityRad)
	sinE := math.Sin(obliquityRad)

	return Vec3{
		X: eq.X,
		Y: eq.Y*cosE + eq.Z*sinE,
		Z: -eq.Y*sinE + eq.Z*cosE,
	}
}

// EclipticToEquatorial converts ecliptic XYZ to equatorial XYZ.
func EclipticToEquatorial(ecl Vec3) Vec3 {
	cosE := math.Cos(obliquityRad)
	sinE := math.Sin(obliquityRad)

	return Vec3{
		X: ecl.X,
		Y: ecl.Y*cosE - ecl.Z*sinE,
		Z: ecl.Y*sinE + ecl.Z*cosE,
	}
}

// EclipticPoint returns the equatorial RA/Dec (radians) of ecliptic longitude lon.
func EclipticPoint(lon float64) (ra, dec float64) {
	return EclipticToEquatorial(Unit(lon, 0)).Spherical()
}
