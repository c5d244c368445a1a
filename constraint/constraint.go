package constraint

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/skeleton"
	"github.com/lixenwraith/rigkit/vmath"
)

var (
	ErrInvalidBone          = errors.New("constrained bone is none")
	ErrNodeNotFound         = errors.New("reference node not found")
	ErrReferenceBoneMissing = errors.New("reference bone missing")
)

// Kind tags the constraint variant
type Kind uint8

const (
	KindNode Kind = iota
	KindBone
	KindFloor
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindBone:
		return "bone"
	case KindFloor:
		return "floor"
	default:
		return "unknown"
	}
}

// Tracker is the tracked subskeleton surface constraints drive
type Tracker interface {
	ReplaceController(c skeleton.Controller, isPriority bool)
	RemoveController(bone core.BoneID) bool
}

// BoneReader exposes live bone transformations
type BoneReader interface {
	Bone(id core.BoneID) (skeleton.Transformation, bool)
}

// Constraint binds one bone to a reference frame with static offsets
// Implemented only by *NodeBoneConstraint, *BoneBoneConstraint and *FloorBoneConstraint
type Constraint interface {
	ID() string
	Kind() Kind
	ConstrainedBone() core.BoneID

	ShouldBeApplied() bool
	SetShouldBeApplied(v bool)
	IsApplied() bool

	PositionOffset() mgl64.Vec3
	SetPositionOffset(v mgl64.Vec3)
	RotationOffset() mgl64.Quat
	SetRotationOffset(q mgl64.Quat)

	// Resolve computes the target world transform of the constrained bone
	Resolve() (vmath.Transform, error)
	// Apply marks the constraint applied and installs a priority controller driven by Resolve
	// Returns false when it was already applied
	Apply(tracker Tracker) bool
	// EndApply marks the constraint not applied and removes its controller
	// Returns false when it was not applied
	EndApply(tracker Tracker) bool

	sealed()
}

// base carries the state shared by every variant
type base struct {
	mu      sync.RWMutex
	id      string
	kind    Kind
	bone    core.BoneID
	should  bool
	applied bool
	posOff  mgl64.Vec3
	rotOff  mgl64.Quat

	resolve func() (vmath.Transform, error)
	onApply func() // Variant hook run under the lock, may be nil
	onEnd   func()
}

// initBase fills the shared fields; an empty id is replaced by a fresh UUID
func (b *base) initBase(id string, kind Kind, bone core.BoneID, should bool) error {
	if !bone.Valid() {
		return fmt.Errorf("%s constraint %q: %w", kind, id, ErrInvalidBone)
	}
	if id == "" {
		id = uuid.NewString()
	}
	b.id = id
	b.kind = kind
	b.bone = bone
	b.should = should
	b.rotOff = mgl64.QuatIdent()
	return nil
}

func (b *base) sealed() {}

func (b *base) ID() string                   { return b.id }
func (b *base) Kind() Kind                   { return b.kind }
func (b *base) ConstrainedBone() core.BoneID { return b.bone }

func (b *base) ShouldBeApplied() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.should
}

func (b *base) SetShouldBeApplied(v bool) {
	b.mu.Lock()
	b.should = v
	b.mu.Unlock()
}

func (b *base) IsApplied() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.applied
}

func (b *base) PositionOffset() mgl64.Vec3 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.posOff
}

func (b *base) SetPositionOffset(v mgl64.Vec3) {
	b.mu.Lock()
	b.posOff = v
	b.mu.Unlock()
}

func (b *base) RotationOffset() mgl64.Quat {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rotOff
}

func (b *base) SetRotationOffset(q mgl64.Quat) {
	b.mu.Lock()
	b.rotOff = q.Normalize()
	b.mu.Unlock()
}

func (b *base) offsets() (mgl64.Vec3, mgl64.Quat) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.posOff, b.rotOff
}

func (b *base) Resolve() (vmath.Transform, error) {
	return b.resolve()
}

func (b *base) Apply(tracker Tracker) bool {
	b.mu.Lock()
	if b.applied {
		b.mu.Unlock()
		return false
	}
	b.applied = true
	if b.onApply != nil {
		b.onApply()
	}
	b.mu.Unlock()

	tracker.ReplaceController(&controller{bone: b.bone, resolve: b.resolve}, true)
	return true
}

func (b *base) EndApply(tracker Tracker) bool {
	b.mu.Lock()
	if !b.applied {
		b.mu.Unlock()
		return false
	}
	b.applied = false
	if b.onEnd != nil {
		b.onEnd()
	}
	b.mu.Unlock()

	tracker.RemoveController(b.bone)
	return true
}

// controller is the synthetic tracker an applied constraint installs
type controller struct {
	bone    core.BoneID
	resolve func() (vmath.Transform, error)
}

func (c *controller) Bone() core.BoneID { return c.bone }

func (c *controller) Evaluate() (vmath.Transform, error) {
	return c.resolve()
}
