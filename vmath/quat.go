package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Axes in a left-handed, Y-up frame
var (
	AxisRight   = mgl64.Vec3{1, 0, 0}
	AxisUp      = mgl64.Vec3{0, 1, 0}
	AxisForward = mgl64.Vec3{0, 0, 1}
)

// Euler builds a rotation from degrees applied Z first, then X, then Y
// Matches the authoring tools' convention so literal Euler triples round-trip
func Euler(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(x), AxisRight)
	qy := mgl64.QuatRotate(mgl64.DegToRad(y), AxisUp)
	qz := mgl64.QuatRotate(mgl64.DegToRad(z), AxisForward)
	return qy.Mul(qx).Mul(qz).Normalize()
}

// EulerVec is Euler with the angles packed in a vector
func EulerVec(v mgl64.Vec3) mgl64.Quat {
	return Euler(v[0], v[1], v[2])
}

// ToEuler decomposes a rotation back into Z-X-Y degrees
func ToEuler(q mgl64.Quat) mgl64.Vec3 {
	q = q.Normalize()
	w, x, y, z := q.W, q.V[0], q.V[1], q.V[2]

	sinX := 2 * (w*x - y*z)
	var ex, ey, ez float64
	if math.Abs(sinX) >= 0.99999 {
		// Gimbal lock: fold Z into Y
		ex = math.Copysign(math.Pi/2, sinX)
		ey = 2 * math.Atan2(y, w)
		ez = 0
	} else {
		ex = math.Asin(sinX)
		ey = math.Atan2(2*(w*y+x*z), 1-2*(x*x+y*y))
		ez = math.Atan2(2*(w*z+x*y), 1-2*(x*x+z*z))
	}
	return mgl64.Vec3{mgl64.RadToDeg(ex), mgl64.RadToDeg(ey), mgl64.RadToDeg(ez)}
}

// Slerp interpolates along the shortest arc with t clamped to [0,1]
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	t = Clamp01(t)
	if t == 0 {
		return a
	}
	if t == 1 {
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

// LocalFromWorld returns the child rotation relative to its parent
func LocalFromWorld(parentWorld, world mgl64.Quat) mgl64.Quat {
	return parentWorld.Inverse().Mul(world).Normalize()
}

// AngleBetween returns the angular distance between two rotations in degrees
func AngleBetween(a, b mgl64.Quat) float64 {
	d := math.Abs(a.Normalize().Dot(b.Normalize()))
	if d > 1 {
		d = 1
	}
	return mgl64.RadToDeg(2 * math.Acos(d))
}

// AngleBetweenVec returns the angle between two directions in degrees
func AngleBetweenVec(a, b mgl64.Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	c = math.Max(-1, math.Min(1, c))
	return mgl64.RadToDeg(math.Acos(c))
}

// QuatNearlyEqual compares rotations, treating q and -q as the same orientation
func QuatNearlyEqual(a, b mgl64.Quat, tol float64) bool {
	return quatComponentsEqual(a, b, tol) || quatComponentsEqual(a, b.Scale(-1), tol)
}

func quatComponentsEqual(a, b mgl64.Quat, tol float64) bool {
	return NearlyEqual(a.W, b.W, tol) &&
		NearlyEqual(a.V[0], b.V[0], tol) &&
		NearlyEqual(a.V[1], b.V[1], tol) &&
		NearlyEqual(a.V[2], b.V[2], tol)
}

// Vec3NearlyEqual compares vectors component-wise
func Vec3NearlyEqual(a, b mgl64.Vec3, tol float64) bool {
	return NearlyEqual(a[0], b[0], tol) &&
		NearlyEqual(a[1], b[1], tol) &&
		NearlyEqual(a[2], b[2], tol)
}
