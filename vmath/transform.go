package vmath

import "github.com/go-gl/mathgl/mgl64"

// Transform is a world-space position and rotation
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Identity returns the transform at the origin with no rotation
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

// NewTransform builds a transform from a position and Euler degrees
func NewTransform(position mgl64.Vec3, euler mgl64.Vec3) Transform {
	return Transform{Position: position, Rotation: EulerVec(euler)}
}

// Compose offsets a reference frame:
// position = ref.Position + ref.Rotation*posOffset, rotation = ref.Rotation*rotOffset
func (t Transform) Compose(posOffset mgl64.Vec3, rotOffset mgl64.Quat) Transform {
	return Transform{
		Position: t.Position.Add(t.Rotation.Rotate(posOffset)),
		Rotation: t.Rotation.Mul(rotOffset).Normalize(),
	}
}

// Apply maps a point from local into this frame
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(p))
}

// NearlyEqual compares both components within tol
func (t Transform) NearlyEqual(o Transform, tol float64) bool {
	return Vec3NearlyEqual(t.Position, o.Position, tol) && QuatNearlyEqual(t.Rotation, o.Rotation, tol)
}
