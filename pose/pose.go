package pose

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tiendc/go-deepcopy"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/skeleton"
)

var (
	ErrInvalidBone        = errors.New("pose references the none bone")
	ErrDuplicateBone      = errors.New("pose lists a bone twice")
	ErrBoneNotInHierarchy = errors.New("pose bone not in hierarchy")
	ErrNilHierarchy       = errors.New("nil hierarchy")
)

// BonePose is one authored world-relative bone rotation
type BonePose struct {
	Bone     core.BoneID
	Rotation mgl64.Quat
}

// Pose is an authored set of bone rotations plus an optional anchor
// Immutable after New; share by pointer, never mutate
type Pose struct {
	ID           string
	Bones        []BonePose
	Anchor       *skeleton.Anchor
	Interpolable bool
}

// New builds a pose, rejecting the none bone and duplicate entries
func New(id string, bones []BonePose, anchor *skeleton.Anchor, interpolable bool) (*Pose, error) {
	seen := make(map[core.BoneID]struct{}, len(bones))
	for _, b := range bones {
		if !b.Bone.Valid() {
			return nil, fmt.Errorf("pose %q: %w", id, ErrInvalidBone)
		}
		if _, dup := seen[b.Bone]; dup {
			return nil, fmt.Errorf("pose %q: %w: %s", id, ErrDuplicateBone, b.Bone)
		}
		seen[b.Bone] = struct{}{}
	}

	p := &Pose{
		ID:           id,
		Bones:        make([]BonePose, len(bones)),
		Interpolable: interpolable,
	}
	for i, b := range bones {
		p.Bones[i] = BonePose{Bone: b.Bone, Rotation: b.Rotation.Normalize()}
	}
	if anchor != nil {
		a := *anchor
		p.Anchor = &a
	}
	return p, nil
}

// Validate checks every pose bone, and the anchor bone, exists in h
func (p *Pose) Validate(h *skeleton.Hierarchy) error {
	if h == nil {
		return ErrNilHierarchy
	}
	for _, b := range p.Bones {
		if !h.Has(b.Bone) {
			return fmt.Errorf("pose %q: %w: %s", p.ID, ErrBoneNotInHierarchy, b.Bone)
		}
	}
	if p.Anchor != nil && !h.Has(p.Anchor.Bone) {
		return fmt.Errorf("pose %q anchor: %w: %s", p.ID, ErrBoneNotInHierarchy, p.Anchor.Bone)
	}
	return nil
}

// Rotation returns the authored world rotation of a bone
func (p *Pose) Rotation(bone core.BoneID) (mgl64.Quat, bool) {
	for _, b := range p.Bones {
		if b.Bone == bone {
			return b.Rotation, true
		}
	}
	return mgl64.Quat{}, false
}

// Clone returns a deep copy sharing no memory with p
func (p *Pose) Clone() (*Pose, error) {
	var out Pose
	if err := deepcopy.Copy(&out, p); err != nil {
		return nil, fmt.Errorf("clone pose %q: %w", p.ID, err)
	}
	return &out, nil
}
