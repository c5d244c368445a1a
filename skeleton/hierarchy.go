package skeleton

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/rigkit/core"
)

var (
	ErrInvalidBone    = errors.New("invalid bone id")
	ErrDuplicateBone  = errors.New("duplicate bone")
	ErrUnknownParent  = errors.New("parent bone not in hierarchy")
	ErrHierarchyCycle = errors.New("hierarchy contains a cycle")
)

// BoneDef is one authored bone relation
type BoneDef struct {
	ID     core.BoneID
	Name   string
	Parent core.BoneID // core.BoneNone for roots
	Offset mgl64.Vec3  // Static position relative to the parent
}

// Hierarchy is the immutable parent/child description of a skeleton
// Safe for concurrent readers once built
type Hierarchy struct {
	bones    map[core.BoneID]BoneDef
	byName   map[string]core.BoneID
	children map[core.BoneID][]core.BoneID
	order    []core.BoneID // Parents before children
}

// NewHierarchy validates defs and builds the hierarchy
func NewHierarchy(defs []BoneDef) (*Hierarchy, error) {
	h := &Hierarchy{
		bones:    make(map[core.BoneID]BoneDef, len(defs)),
		byName:   make(map[string]core.BoneID, len(defs)),
		children: make(map[core.BoneID][]core.BoneID),
		order:    make([]core.BoneID, 0, len(defs)),
	}

	for _, d := range defs {
		if !d.ID.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidBone, d.ID)
		}
		if _, dup := h.bones[d.ID]; dup {
			return nil, fmt.Errorf("%w: id %d", ErrDuplicateBone, d.ID)
		}
		if d.Name != "" {
			if _, dup := h.byName[d.Name]; dup {
				return nil, fmt.Errorf("%w: name %q", ErrDuplicateBone, d.Name)
			}
			h.byName[d.Name] = d.ID
		}
		h.bones[d.ID] = d
	}

	var roots []core.BoneID
	for _, d := range defs {
		switch {
		case d.Parent == core.BoneNone:
			roots = append(roots, d.ID)
		case d.Parent == d.ID:
			return nil, fmt.Errorf("%w: bone %d parents itself", ErrHierarchyCycle, d.ID)
		default:
			if _, ok := h.bones[d.Parent]; !ok {
				return nil, fmt.Errorf("%w: bone %d references %d", ErrUnknownParent, d.ID, d.Parent)
			}
			h.children[d.Parent] = append(h.children[d.Parent], d.ID)
		}
	}

	// Breadth-first from the roots; bones never reached sit on a cycle
	queue := append([]core.BoneID(nil), roots...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		h.order = append(h.order, id)
		queue = append(queue, h.children[id]...)
	}
	if len(h.order) != len(h.bones) {
		return nil, fmt.Errorf("%w: %d of %d bones unreachable from a root",
			ErrHierarchyCycle, len(h.bones)-len(h.order), len(h.bones))
	}

	return h, nil
}

// Parent returns the parent bone, core.BoneNone for roots and unknown bones
func (h *Hierarchy) Parent(bone core.BoneID) core.BoneID {
	if d, ok := h.bones[bone]; ok {
		return d.Parent
	}
	return core.BoneNone
}

func (h *Hierarchy) Has(bone core.BoneID) bool {
	_, ok := h.bones[bone]
	return ok
}

// Bone returns the definition of a bone
func (h *Hierarchy) Bone(bone core.BoneID) (BoneDef, bool) {
	d, ok := h.bones[bone]
	return d, ok
}

// Lookup resolves a bone by name
func (h *Hierarchy) Lookup(name string) (core.BoneID, bool) {
	id, ok := h.byName[name]
	return id, ok
}

// Name returns the bone name or its numeric form when unnamed
func (h *Hierarchy) Name(bone core.BoneID) string {
	if d, ok := h.bones[bone]; ok && d.Name != "" {
		return d.Name
	}
	return bone.String()
}

// Children returns a copy of the direct children in definition order
func (h *Hierarchy) Children(bone core.BoneID) []core.BoneID {
	return append([]core.BoneID(nil), h.children[bone]...)
}

// Order returns every bone with parents listed before their children
func (h *Hierarchy) Order() []core.BoneID {
	return append([]core.BoneID(nil), h.order...)
}

func (h *Hierarchy) Len() int {
	return len(h.bones)
}

// Names returns all bone names sorted
func (h *Hierarchy) Names() []string {
	names := make([]string, 0, len(h.byName))
	for n := range h.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Depth returns the number of ancestors of a bone
func (h *Hierarchy) Depth(bone core.BoneID) int {
	depth := 0
	for p := h.Parent(bone); p != core.BoneNone; p = h.Parent(p) {
		depth++
	}
	return depth
}
