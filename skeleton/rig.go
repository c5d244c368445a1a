package skeleton

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/vmath"
)

var (
	ErrUnknownBone    = errors.New("bone not in rig")
	ErrWriterConflict = errors.New("bone already written this frame")
)

// Rig is the live skeleton: one Transformation per hierarchy bone plus per-frame writer claims
// Each frame: BeginFrame, writes through SetLocalRotation or SetWorld, then Solve
type Rig struct {
	mu        sync.RWMutex
	hierarchy *Hierarchy
	root      vmath.Transform
	bones     map[core.BoneID]*Transformation
	writers   map[core.BoneID]core.Writer
	tracked   *TrackedSubskeleton
}

// NewRig creates a rig in bind pose
func NewRig(h *Hierarchy) *Rig {
	r := &Rig{
		hierarchy: h,
		root:      vmath.Identity(),
		bones:     make(map[core.BoneID]*Transformation, h.Len()),
		writers:   make(map[core.BoneID]core.Writer, h.Len()),
		tracked:   NewTrackedSubskeleton(),
	}
	for _, id := range h.Order() {
		t := identityTransformation()
		r.bones[id] = &t
	}
	r.Solve()
	return r
}

func (r *Rig) Hierarchy() *Hierarchy {
	return r.hierarchy
}

// Tracked returns the rig's tracked subskeleton
func (r *Rig) Tracked() *TrackedSubskeleton {
	return r.tracked
}

// Bone returns a copy of the bone's current transformation
func (r *Rig) Bone(id core.BoneID) (Transformation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.bones[id]
	if !ok {
		return Transformation{}, false
	}
	return *t, true
}

// Bones returns a snapshot of every bone transformation
func (r *Rig) Bones() map[core.BoneID]Transformation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[core.BoneID]Transformation, len(r.bones))
	for id, t := range r.bones {
		out[id] = *t
	}
	return out
}

// Root returns the rig origin
func (r *Rig) Root() vmath.Transform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.root
}

// SetRoot moves the rig origin; takes effect on the next Solve
func (r *Rig) SetRoot(t vmath.Transform) {
	r.mu.Lock()
	r.root = t
	r.mu.Unlock()
}

// BeginFrame releases every writer claim and resets each bone to its base rotation
func (r *Rig) BeginFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.writers)
	for _, t := range r.bones {
		t.LocalRotation = t.BaseLocalRotation
	}
}

// SetBaseLocalRotation sets the rotation a bone returns to when no writer claims it
// Takes effect on the next BeginFrame
func (r *Rig) SetBaseLocalRotation(id core.BoneID, q mgl64.Quat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.bones[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBone, id)
	}
	t.BaseLocalRotation = q.Normalize()
	return nil
}

// Writer returns the subsystem that owns the bone this frame
func (r *Rig) Writer(id core.BoneID) core.Writer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writers[id]
}

// SetLocalRotation writes a bone's local rotation on behalf of w
func (r *Rig) SetLocalRotation(id core.BoneID, q mgl64.Quat, w core.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.claim(id, w)
	if err != nil {
		return err
	}
	t.LocalRotation = q.Normalize()
	return nil
}

// SetWorld writes a bone's world transform on behalf of w
// Solve keeps the world value and derives the local rotation from it
func (r *Rig) SetWorld(id core.BoneID, world vmath.Transform, w core.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.claim(id, w)
	if err != nil {
		return err
	}
	t.WorldPosition = world.Position
	t.WorldRotation = world.Rotation.Normalize()
	return nil
}

// claim records w as the bone's writer; caller holds the lock
func (r *Rig) claim(id core.BoneID, w core.Writer) (*Transformation, error) {
	t, ok := r.bones[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBone, id)
	}
	if holder := r.writers[id]; holder != core.WriterNone && holder != w {
		return nil, fmt.Errorf("%w: %s held by %s, rejected %s", ErrWriterConflict, id, holder, w)
	}
	r.writers[id] = w
	return t, nil
}

// Solve runs forward kinematics from the root down
// Tracker-written bones keep their world transform; every other bone derives it from its parent
func (r *Rig) Solve() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.hierarchy.order {
		def := r.hierarchy.bones[id]
		t := r.bones[id]

		parentPos, parentRot := r.root.Position, r.root.Rotation
		if def.Parent != core.BoneNone {
			p := r.bones[def.Parent]
			parentPos, parentRot = p.WorldPosition, p.WorldRotation
		}

		if r.writers[id] == core.WriterTracker {
			t.LocalRotation = vmath.LocalFromWorld(parentRot, t.WorldRotation)
			continue
		}
		t.WorldRotation = parentRot.Mul(t.LocalRotation).Normalize()
		t.WorldPosition = parentPos.Add(parentRot.Rotate(def.Offset))
	}
}
