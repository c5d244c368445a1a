package vmath

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

const tol = 1e-9

func TestEulerAxisOrder(t *testing.T) {
	// Y is applied last: rotating +Z by (90, 90, 0) yields -Y turned about Y, still -Y
	q := Euler(90, 90, 0)
	got := q.Rotate(AxisForward)
	assert.True(t, Vec3NearlyEqual(mgl64.Vec3{0, -1, 0}, got, 1e-9), "got %v", got)

	// Z applied first: X axis rolled to Y, then yawed
	q = Euler(0, 90, 90)
	got = q.Rotate(AxisRight)
	assert.True(t, Vec3NearlyEqual(mgl64.Vec3{0, 1, 0}, got, 1e-9), "got %v", got)

	yaw := Euler(0, 90, 0)
	assert.True(t, Vec3NearlyEqual(mgl64.Vec3{1, 0, 0}, yaw.Rotate(AxisForward), tol))
}

func TestToEulerRoundTrip(t *testing.T) {
	for _, e := range []mgl64.Vec3{{10, 20, 30}, {-45, 170, 5}, {0, 0, 0}, {80, -30, 60}} {
		back := ToEuler(EulerVec(e))
		assert.True(t, QuatNearlyEqual(EulerVec(e), EulerVec(back), 1e-9), "euler %v -> %v", e, back)
	}
}

func TestSlerpClampsAndTakesShortArc(t *testing.T) {
	a := mgl64.QuatIdent()
	b := Euler(0, 90, 0)

	assert.Equal(t, a, Slerp(a, b, -1))
	assert.Equal(t, b, Slerp(a, b, 2))
	assert.InDelta(t, 45, AngleBetween(a, Slerp(a, b, 0.5)), 1e-9)

	// -b is the same orientation; interpolation must not take the long way round
	assert.InDelta(t, 45, AngleBetween(a, Slerp(a, b.Scale(-1), 0.5)), 1e-9)
}

func TestLocalFromWorld(t *testing.T) {
	parent := Euler(0, 90, 0)
	child := Euler(30, 90, 0)
	local := LocalFromWorld(parent, child)
	assert.True(t, QuatNearlyEqual(child, parent.Mul(local), tol))
}

func TestAngles(t *testing.T) {
	assert.InDelta(t, 90, AngleBetween(mgl64.QuatIdent(), Euler(90, 0, 0)), 1e-9)
	assert.InDelta(t, 90, AngleBetweenVec(AxisRight, AxisUp), 1e-9)
	assert.Zero(t, AngleBetweenVec(mgl64.Vec3{}, AxisUp))
}

func TestTransformCompose(t *testing.T) {
	ref := Transform{Position: mgl64.Vec3{1, 0, 0}, Rotation: Euler(0, 90, 0)}
	got := ref.Compose(mgl64.Vec3{0, 0, 1}, Euler(0, 90, 0))

	assert.True(t, Vec3NearlyEqual(mgl64.Vec3{2, 0, 0}, got.Position, tol))
	assert.True(t, QuatNearlyEqual(Euler(0, 180, 0), got.Rotation, tol))
	assert.True(t, Vec3NearlyEqual(got.Position, ref.Apply(mgl64.Vec3{0, 0, 1}), tol))
	assert.True(t, Identity().NearlyEqual(NewTransform(mgl64.Vec3{}, mgl64.Vec3{}), tol))
}

func TestScalars(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-2))
	assert.Equal(t, 1.0, Clamp01(3))
	assert.Equal(t, 0.25, Clamp01(0.25))
	assert.Equal(t, 5.0, LerpF(0, 10, 0.5))
	assert.True(t, NearlyEqual(1, 1+1e-7, DefaultTolerance))
	assert.False(t, NearlyEqual(1, 1.1, DefaultTolerance))
}
