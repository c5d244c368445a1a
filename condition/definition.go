package condition

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/rigkit/vmath"
)

var (
	ErrUnknownConditionType = errors.New("unknown condition type")
	ErrUnboundSource        = errors.New("unbound condition source")
)

// Condition type names used in definitions
const (
	TypeMagnitude            = "magnitude"
	TypeDirection            = "direction"
	TypeScale                = "scale"
	TypeRotationThreshold    = "rotation_threshold"
	TypeEnvironmentValidated = "environment_validated"
	TypeExpression           = "expression"
)

// Definition is the authored form of a condition
type Definition struct {
	Type     string     `yaml:"type"`
	From     string     `yaml:"from,omitempty"`
	To       string     `yaml:"to,omitempty"`
	Source   string     `yaml:"source,omitempty"`
	Axis     mgl64.Vec3 `yaml:"axis,omitempty"`
	Target   mgl64.Vec3 `yaml:"target,omitempty"` // Direction vector, or Euler degrees for rotation_threshold
	Min      float64    `yaml:"min,omitempty"`
	Max      float64    `yaml:"max,omitempty"`
	MaxAngle float64    `yaml:"max_angle,omitempty"`
	Expr     string     `yaml:"expr,omitempty"`
}

// Bindings names the live sources definitions refer to
type Bindings struct {
	Transforms map[string]TransformSource
	Scalars    map[string]ScalarSource
	Flags      map[string]FlagSource
}

func (b Bindings) transform(name string) (TransformSource, error) {
	if s, ok := b.Transforms[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: transform %q", ErrUnboundSource, name)
}

func (b Bindings) scalar(name string) (ScalarSource, error) {
	if s, ok := b.Scalars[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: scalar %q", ErrUnboundSource, name)
}

// Build constructs the condition described by def
func Build(def Definition, b Bindings) (Condition, error) {
	switch def.Type {
	case TypeMagnitude:
		from, err := b.transform(def.From)
		if err != nil {
			return nil, err
		}
		to, err := b.transform(def.To)
		if err != nil {
			return nil, err
		}
		return &Magnitude{From: from, To: to, Min: def.Min, Max: def.Max}, nil

	case TypeDirection:
		src, err := b.transform(def.Source)
		if err != nil {
			return nil, err
		}
		axis := def.Axis
		if axis == (mgl64.Vec3{}) {
			axis = vmath.AxisForward
		}
		return &Direction{Source: src, Axis: axis, Target: def.Target, MaxAngle: def.MaxAngle}, nil

	case TypeScale:
		src, err := b.scalar(def.Source)
		if err != nil {
			return nil, err
		}
		return &Scale{Source: src, Min: def.Min, Max: def.Max}, nil

	case TypeRotationThreshold:
		src, err := b.transform(def.Source)
		if err != nil {
			return nil, err
		}
		return &RotationThreshold{Source: src, Target: vmath.EulerVec(def.Target), MaxAngle: def.MaxAngle}, nil

	case TypeEnvironmentValidated:
		flag, ok := b.Flags[def.Source]
		if !ok {
			return nil, fmt.Errorf("%w: flag %q", ErrUnboundSource, def.Source)
		}
		return &EnvironmentValidated{Flag: flag}, nil

	case TypeExpression:
		return NewExpression(def.Expr, b.Scalars)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConditionType, def.Type)
	}
}

// BuildAll builds every definition
func BuildAll(defs []Definition, b Bindings) ([]Condition, error) {
	out := make([]Condition, 0, len(defs))
	for i, d := range defs {
		c, err := Build(d, b)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}
