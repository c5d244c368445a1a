package asset

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/rigkit/animator"
	"github.com/lixenwraith/rigkit/condition"
	"github.com/lixenwraith/rigkit/constraint"
	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/pose"
	"github.com/lixenwraith/rigkit/skeleton"
	"github.com/lixenwraith/rigkit/vmath"
)

var (
	ErrUnknownBone           = errors.New("unknown bone name")
	ErrUnknownConstraintKind = errors.New("unknown constraint kind")
	ErrUnknownMode           = errors.New("unknown activation mode")
	ErrEmptyRig              = errors.New("rig defines no bones")
	ErrMissingPoseID         = errors.New("pose has no id")
)

// Constraint kind names used in rig files
const (
	KindNode  = "node"
	KindBone  = "bone"
	KindFloor = "floor"
)

// RigFile is the authored YAML form of a rig
type RigFile struct {
	Name        string           `yaml:"name"`
	Bones       []BoneSpec       `yaml:"bones"`
	Poses       []PoseSpec       `yaml:"poses,omitempty"`
	Constraints []ConstraintSpec `yaml:"constraints,omitempty"`
	Animators   []AnimatorSpec   `yaml:"animators,omitempty"`
}

// BoneSpec declares one bone; ids follow declaration order
type BoneSpec struct {
	Name   string     `yaml:"name"`
	Parent string     `yaml:"parent,omitempty"`
	Offset mgl64.Vec3 `yaml:"offset"`
}

// PoseBoneSpec is one authored rotation in Euler degrees
type PoseBoneSpec struct {
	Bone  string     `yaml:"bone"`
	Euler mgl64.Vec3 `yaml:"euler"`
}

// AnchorSpec places the skeleton for an anchored pose
type AnchorSpec struct {
	Bone     string     `yaml:"bone"`
	Position mgl64.Vec3 `yaml:"position"`
	Euler    mgl64.Vec3 `yaml:"euler"`
}

// PoseSpec is the authored form of a pose
type PoseSpec struct {
	ID           string         `yaml:"id"`
	Interpolable bool           `yaml:"interpolable"`
	Anchor       *AnchorSpec    `yaml:"anchor,omitempty"`
	Bones        []PoseBoneSpec `yaml:"bones"`
}

// ConstraintSpec is the authored form of a bone constraint
type ConstraintSpec struct {
	ID             string     `yaml:"id,omitempty"`
	Kind           string     `yaml:"kind"`
	Bone           string     `yaml:"bone"`
	Node           string     `yaml:"node,omitempty"`
	Reference      string     `yaml:"reference,omitempty"`
	Height         *float64   `yaml:"height,omitempty"` // nil = Env.FloorHeight
	PositionOffset mgl64.Vec3 `yaml:"position_offset"`
	RotationOffset mgl64.Vec3 `yaml:"rotation_offset"` // Euler degrees
	ShouldApply    bool       `yaml:"should_apply"`
}

// AnimatorSpec binds a pose to its activation rules
type AnimatorSpec struct {
	ID            string                 `yaml:"id,omitempty"`
	Pose          string                 `yaml:"pose"`
	Mode          string                 `yaml:"mode,omitempty"`
	MinDuration   time.Duration          `yaml:"min_duration,omitempty"`
	MaxDuration   time.Duration          `yaml:"max_duration,omitempty"`
	FixedDuration time.Duration          `yaml:"fixed_duration,omitempty"`
	Conditions    []condition.Definition `yaml:"conditions,omitempty"`
}

// Env supplies the live references constraints resolve against
type Env struct {
	Nodes       constraint.NodeResolver
	Bones       constraint.BoneReader
	FloorHeight float64
}

// ParseRig decodes a YAML rig definition
func ParseRig(data []byte) (*RigFile, error) {
	var rf RigFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rig: %w", err)
	}
	if len(rf.Bones) == 0 {
		return nil, ErrEmptyRig
	}
	return &rf, nil
}

// LoadRigFile reads and decodes a rig file
func LoadRigFile(path string) (*RigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rig %s: %w", path, err)
	}
	rf, err := ParseRig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rf, nil
}

// DefaultRig decodes the embedded humanoid
func DefaultRig() (*RigFile, error) {
	return ParseRig([]byte(DefaultHumanoidRig))
}

// BuildHierarchy resolves parent names and builds the skeleton
func (rf *RigFile) BuildHierarchy() (*skeleton.Hierarchy, error) {
	ids := make(map[string]core.BoneID, len(rf.Bones))
	for i, b := range rf.Bones {
		if _, dup := ids[b.Name]; dup {
			return nil, fmt.Errorf("%w: name %q", skeleton.ErrDuplicateBone, b.Name)
		}
		ids[b.Name] = core.BoneID(i)
	}

	defs := make([]skeleton.BoneDef, 0, len(rf.Bones))
	for i, b := range rf.Bones {
		parent := core.BoneNone
		if b.Parent != "" {
			id, ok := ids[b.Parent]
			if !ok {
				return nil, fmt.Errorf("bone %q: %w: parent %q", b.Name, ErrUnknownBone, b.Parent)
			}
			parent = id
		}
		defs = append(defs, skeleton.BoneDef{
			ID:     core.BoneID(i),
			Name:   b.Name,
			Parent: parent,
			Offset: b.Offset,
		})
	}
	return skeleton.NewHierarchy(defs)
}

// Pose returns the spec with the given id
func (rf *RigFile) Pose(id string) (PoseSpec, bool) {
	for _, p := range rf.Poses {
		if p.ID == id {
			return p, true
		}
	}
	return PoseSpec{}, false
}

func lookup(h *skeleton.Hierarchy, name string) (core.BoneID, error) {
	id, ok := h.Lookup(name)
	if !ok {
		return core.BoneNone, fmt.Errorf("%w: %q", ErrUnknownBone, name)
	}
	return id, nil
}

// BuildPose converts a pose spec against h and validates it
func BuildPose(h *skeleton.Hierarchy, spec PoseSpec) (*pose.Pose, error) {
	if h == nil {
		return nil, pose.ErrNilHierarchy
	}
	bones := make([]pose.BonePose, 0, len(spec.Bones))
	for _, b := range spec.Bones {
		id, err := lookup(h, b.Bone)
		if err != nil {
			return nil, fmt.Errorf("pose %q: %w", spec.ID, err)
		}
		bones = append(bones, pose.BonePose{Bone: id, Rotation: vmath.EulerVec(b.Euler)})
	}

	var anchor *skeleton.Anchor
	if spec.Anchor != nil {
		id, err := lookup(h, spec.Anchor.Bone)
		if err != nil {
			return nil, fmt.Errorf("pose %q anchor: %w", spec.ID, err)
		}
		anchor = &skeleton.Anchor{
			Bone:     id,
			Position: spec.Anchor.Position,
			Rotation: vmath.EulerVec(spec.Anchor.Euler),
		}
	}

	p, err := pose.New(spec.ID, bones, anchor, spec.Interpolable)
	if err != nil {
		return nil, fmt.Errorf("pose %q: %w", spec.ID, err)
	}
	if err := p.Validate(h); err != nil {
		return nil, fmt.Errorf("pose %q: %w", spec.ID, err)
	}
	return p, nil
}

// BuildPoses converts every pose in the file
func (rf *RigFile) BuildPoses(h *skeleton.Hierarchy) ([]*pose.Pose, error) {
	out := make([]*pose.Pose, 0, len(rf.Poses))
	for _, spec := range rf.Poses {
		p, err := BuildPose(h, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// BuildConstraint converts a constraint spec against h and env
func BuildConstraint(h *skeleton.Hierarchy, spec ConstraintSpec, env Env) (constraint.Constraint, error) {
	bone, err := lookup(h, spec.Bone)
	if err != nil {
		return nil, fmt.Errorf("constraint %q: %w", spec.ID, err)
	}

	var c constraint.Constraint
	switch spec.Kind {
	case KindNode:
		c, err = constraint.NewNodeBoneConstraint(spec.ID, bone, spec.ShouldApply, env.Nodes, spec.Node)

	case KindBone:
		ref, lerr := lookup(h, spec.Reference)
		if lerr != nil {
			return nil, fmt.Errorf("constraint %q reference: %w", spec.ID, lerr)
		}
		c, err = constraint.NewBoneBoneConstraint(spec.ID, bone, spec.ShouldApply, env.Bones, ref)

	case KindFloor:
		height := env.FloorHeight
		if spec.Height != nil {
			height = *spec.Height
		}
		c, err = constraint.NewFloorBoneConstraint(spec.ID, bone, spec.ShouldApply, env.Bones, height)

	default:
		return nil, fmt.Errorf("constraint %q: %w: %q", spec.ID, ErrUnknownConstraintKind, spec.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("constraint %q: %w", spec.ID, err)
	}

	c.SetPositionOffset(spec.PositionOffset)
	c.SetRotationOffset(vmath.EulerVec(spec.RotationOffset))
	return c, nil
}

// BuildConstraints converts every constraint in the file
func (rf *RigFile) BuildConstraints(h *skeleton.Hierarchy, env Env) ([]constraint.Constraint, error) {
	out := make([]constraint.Constraint, 0, len(rf.Constraints))
	for _, spec := range rf.Constraints {
		c, err := BuildConstraint(h, spec, env)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseMode maps a mode name to an activation mode; empty is on_request
func ParseMode(name string) (animator.ActivationMode, error) {
	switch name {
	case "", animator.ActivationOnRequest.String():
		return animator.ActivationOnRequest, nil
	case animator.ActivationOnTrigger.String():
		return animator.ActivationOnTrigger, nil
	}
	return animator.ActivationOnRequest, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// AnimatorOptions converts the timing and mode fields of spec
func AnimatorOptions(spec AnimatorSpec) (animator.Options, error) {
	mode, err := ParseMode(spec.Mode)
	if err != nil {
		return animator.Options{}, fmt.Errorf("animator %q: %w", spec.ID, err)
	}
	id := spec.ID
	if id == "" {
		id = spec.Pose
	}
	return animator.Options{
		ID:            id,
		Mode:          mode,
		MinDuration:   spec.MinDuration,
		MaxDuration:   spec.MaxDuration,
		FixedDuration: spec.FixedDuration,
	}, nil
}

// Validate builds every definition in the file without live references
// Conditions are checked against bindings so unbound sources surface here
func (rf *RigFile) Validate(b condition.Bindings) error {
	h, err := rf.BuildHierarchy()
	if err != nil {
		return err
	}
	if _, err := rf.BuildPoses(h); err != nil {
		return err
	}
	env := Env{Nodes: constraint.NewNodeMap(), Bones: noBones{}}
	if _, err := rf.BuildConstraints(h, env); err != nil {
		return err
	}
	for _, a := range rf.Animators {
		if _, ok := rf.Pose(a.Pose); !ok {
			return fmt.Errorf("animator %q: %w: %q", a.ID, pose.ErrUnknownPose, a.Pose)
		}
		if _, err := AnimatorOptions(a); err != nil {
			return err
		}
		if _, err := condition.BuildAll(a.Conditions, b); err != nil {
			return fmt.Errorf("animator %q: %w", a.Pose, err)
		}
	}
	return nil
}

// noBones is a reader with no live bones, used for offline validation
type noBones struct{}

func (noBones) Bone(core.BoneID) (skeleton.Transformation, bool) {
	return skeleton.Transformation{}, false
}
