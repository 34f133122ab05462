// Package geom holds the small amount of sphere math shared by the world
// packages. Points are mgl64.Vec3 in world units with the sphere centered at
// the origin and +Y pointing at the pole the avatar stands on.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used for unit-norm and on-sphere checks.
const Epsilon = 1e-9

// Up is the unit direction of the pole.
var Up = mgl64.Vec3{0, 1, 0}

// Pole returns the avatar position (0, R, 0) for a sphere of the given radius.
func Pole(radius float64) mgl64.Vec3 {
	return Up.Mul(radius)
}

// Direction returns v normalized. The zero vector maps to Up so queries from
// the sphere center still resolve somewhere.
func Direction(v mgl64.Vec3) mgl64.Vec3 {
	l := math.Sqrt(Dot(v, v))
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return Up
	}
	return v.Mul(1 / l)
}

// AngularDistance is the great-circle angle between the directions of a and b.
// It is scale invariant, so off-sphere queries compare fairly.
func AngularDistance(a, b mgl64.Vec3) float64 {
	return UnitAngle(Direction(a), Direction(b))
}

// UnitAngle is AngularDistance for vectors already known to be unit length.
func UnitAngle(a, b mgl64.Vec3) float64 {
	return math.Acos(mgl64.Clamp(Dot(a, b), -1, 1))
}

// Dot is a.Dot(b) with every product rounded before it is summed. The
// conversions forbid fused multiply-add on any architecture.
func Dot(a, b mgl64.Vec3) float64 {
	return float64(a[0]*b[0]) + float64(a[1]*b[1]) + float64(a[2]*b[2])
}

// Cross is a.Cross(b) with the same rounding as Dot.
func Cross(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(a[1]*b[2]) - float64(a[2]*b[1]),
		float64(a[2]*b[0]) - float64(a[0]*b[2]),
		float64(a[0]*b[1]) - float64(a[1]*b[0]),
	}
}

// Spherical converts (theta, phi) to a point on the sphere, with theta the
// azimuth around +Y and phi the polar angle measured from +Y.
func Spherical(radius, theta, phi float64) mgl64.Vec3 {
	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)
	return mgl64.Vec3{
		radius * sinPhi * cosTheta,
		radius * cosPhi,
		radius * sinPhi * sinTheta,
	}
}

// LatLon returns latitude in [-pi/2, pi/2] and longitude in [-pi, pi] for v.
func LatLon(v mgl64.Vec3) (lat, lon float64) {
	d := Direction(v)
	return math.Asin(mgl64.Clamp(d.Y(), -1, 1)), math.Atan2(d.Z(), d.X())
}

// Finite reports whether every component of v is a finite number.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
