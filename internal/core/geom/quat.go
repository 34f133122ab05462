package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AxisAngle returns the rotation of angle radians about axis. The axis need
// not be normalized; a zero axis yields the identity.
func AxisAngle(axis mgl64.Vec3, angle float64) mgl64.Quat {
	if math.Sqrt(Dot(axis, axis)) < Epsilon || angle == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, Direction(axis))
}

// Between returns the shortest rotation carrying direction from onto to.
// Nearly opposite directions get a half turn about an axis perpendicular to
// from.
func Between(from, to mgl64.Vec3) mgl64.Quat {
	f, t := Direction(from), Direction(to)
	const opposite = 1e-3

	c := Dot(f, t)
	if c < -1+opposite {
		axis := Cross(mgl64.Vec3{1, 0, 0}, f)
		if Dot(axis, axis) < opposite {
			axis = Cross(mgl64.Vec3{0, 1, 0}, f)
		}
		return mgl64.QuatRotate(math.Pi, Direction(axis))
	}

	s := math.Sqrt(float64((1 + c) * 2))
	return mgl64.Quat{W: s / 2, V: Cross(f, t).Mul(1 / s)}
}

// Mul is the Hamilton product a*b, rounding every product before it is
// summed like Dot.
func Mul(a, b mgl64.Quat) mgl64.Quat {
	x, y := a.V, b.V
	return mgl64.Quat{
		W: float64(a.W*b.W) - Dot(x, y),
		V: mgl64.Vec3{
			float64(x[1]*y[2]) - float64(x[2]*y[1]) + float64(a.W*y[0]) + float64(b.W*x[0]),
			float64(x[2]*y[0]) - float64(x[0]*y[2]) + float64(a.W*y[1]) + float64(b.W*x[1]),
			float64(x[0]*y[1]) - float64(x[1]*y[0]) + float64(a.W*y[2]) + float64(b.W*x[2]),
		},
	}
}

// Renormalize returns q at unit length when it drifted beyond Epsilon.
// Non-finite or zero quaternions collapse to the identity.
func Renormalize(q mgl64.Quat) mgl64.Quat {
	if !FiniteQuat(q) {
		return mgl64.QuatIdent()
	}
	l := q.Len()
	if l < Epsilon {
		return mgl64.QuatIdent()
	}
	if math.Abs(l-1) > Epsilon {
		return mgl64.Quat{W: q.W / l, V: q.V.Mul(1 / l)}
	}
	return q
}

// FiniteQuat reports whether all four components are finite.
func FiniteQuat(q mgl64.Quat) bool {
	return Finite(q.V) && !math.IsNaN(q.W) && !math.IsInf(q.W, 0)
}

// Angle is the rotation angle in [0, pi] separating orientations a and b,
// treating q and -q as the same orientation.
func Angle(a, b mgl64.Quat) float64 {
	d := math.Abs(a.Dot(b))
	return 2 * math.Acos(mgl64.Clamp(d, -1, 1))
}

// Slerp interpolates along the shorter arc between unit quaternions a and b.
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	if t <= 0 {
		return a
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	if t >= 1 {
		return b
	}
	return mgl64.QuatSlerp(a, b, t)
}

// RotateToward advances current toward target by at most maxAngle radians.
// The second result is true when target was reached.
func RotateToward(current, target mgl64.Quat, maxAngle float64) (mgl64.Quat, bool) {
	angle := Angle(current, target)
	if angle < Epsilon {
		return target, true
	}
	t := math.Min(1, maxAngle/angle)
	return Renormalize(Slerp(current, target, t)), t >= 1
}

// AngularVelocity derives the rotation rate vector (axis * rad/s) that takes
// prev to next over dt seconds.
func AngularVelocity(prev, next mgl64.Quat, dt float64) mgl64.Vec3 {
	if dt <= 0 {
		return mgl64.Vec3{}
	}
	delta := next.Mul(prev.Inverse())
	if delta.W < 0 {
		delta = delta.Scale(-1)
	}
	angle := 2 * math.Acos(mgl64.Clamp(delta.W, -1, 1))
	axisLen := delta.V.Len()
	if angle < Epsilon || axisLen < Epsilon {
		return mgl64.Vec3{}
	}
	return delta.V.Mul(angle / (axisLen * dt))
}
