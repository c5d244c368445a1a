package condition

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/rigkit/vmath"
)

// Condition is a pluggable activation predicate
type Condition interface {
	Check() bool
}

// Func adapts a function to Condition
type Func func() bool

func (f Func) Check() bool { return f() }

type all []Condition

// All is the conjunction of cs; true when cs is empty
func All(cs ...Condition) Condition {
	return all(cs)
}

func (a all) Check() bool {
	for _, c := range a {
		if !c.Check() {
			return false
		}
	}
	return true
}

// TransformSource supplies a live world transform; ok is false while unavailable
type TransformSource interface {
	Transform() (vmath.Transform, bool)
}

// TransformFunc adapts a function to TransformSource
type TransformFunc func() (vmath.Transform, bool)

func (f TransformFunc) Transform() (vmath.Transform, bool) { return f() }

// ScalarSource supplies a live scalar
type ScalarSource interface {
	Value() (float64, bool)
}

// ScalarFunc adapts a function to ScalarSource
type ScalarFunc func() (float64, bool)

func (f ScalarFunc) Value() (float64, bool) { return f() }

// FlagSource reports an environment-level validation flag
type FlagSource interface {
	Validated() bool
}

// FlagFunc adapts a function to FlagSource
type FlagFunc func() bool

func (f FlagFunc) Validated() bool { return f() }

// within checks v against [lo, hi]; hi <= 0 leaves the range open above
func within(v, lo, hi float64) bool {
	if v < lo {
		return false
	}
	return hi <= 0 || v <= hi
}

// Magnitude holds while the distance between two sources lies within [Min, Max]
type Magnitude struct {
	From, To TransformSource
	Min, Max float64
}

func (m *Magnitude) Check() bool {
	a, ok := m.From.Transform()
	if !ok {
		return false
	}
	b, ok := m.To.Transform()
	if !ok {
		return false
	}
	return within(b.Position.Sub(a.Position).Len(), m.Min, m.Max)
}

// Direction holds while Source's rotated Axis points within MaxAngle degrees of Target
type Direction struct {
	Source   TransformSource
	Axis     mgl64.Vec3
	Target   mgl64.Vec3
	MaxAngle float64
}

func (d *Direction) Check() bool {
	t, ok := d.Source.Transform()
	if !ok {
		return false
	}
	return vmath.AngleBetweenVec(t.Rotation.Rotate(d.Axis), d.Target) <= d.MaxAngle
}

// Scale holds while Source lies within [Min, Max]
type Scale struct {
	Source   ScalarSource
	Min, Max float64
}

func (s *Scale) Check() bool {
	v, ok := s.Source.Value()
	return ok && within(v, s.Min, s.Max)
}

// RotationThreshold holds while Source's rotation is within MaxAngle degrees of Target
type RotationThreshold struct {
	Source   TransformSource
	Target   mgl64.Quat
	MaxAngle float64
}

func (r *RotationThreshold) Check() bool {
	t, ok := r.Source.Transform()
	if !ok {
		return false
	}
	return vmath.AngleBetween(t.Rotation, r.Target) <= r.MaxAngle
}

// EnvironmentValidated mirrors an environment flag
type EnvironmentValidated struct {
	Flag FlagSource
}

func (e *EnvironmentValidated) Check() bool {
	return e.Flag != nil && e.Flag.Validated()
}
