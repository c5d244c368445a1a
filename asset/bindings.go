package asset

import (
	"github.com/lixenwraith/rigkit/condition"
	"github.com/lixenwraith/rigkit/constraint"
	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/skeleton"
	"github.com/lixenwraith/rigkit/vmath"
)

// BoneBindings exposes every named bone of h as condition sources
// Transforms are keyed by bone name; scalars "<bone>_x", "<bone>_y", "<bone>_z" carry its world position
func BoneBindings(h *skeleton.Hierarchy, reader constraint.BoneReader) condition.Bindings {
	b := condition.Bindings{
		Transforms: make(map[string]condition.TransformSource),
		Scalars:    make(map[string]condition.ScalarSource),
		Flags:      make(map[string]condition.FlagSource),
	}
	for _, id := range h.Order() {
		name := h.Name(id)
		b.Transforms[name] = boneTransform(reader, id)
		for axis, suffix := range [3]string{"_x", "_y", "_z"} {
			b.Scalars[name+suffix] = boneAxis(reader, id, axis)
		}
	}
	return b
}

func boneTransform(reader constraint.BoneReader, id core.BoneID) condition.TransformFunc {
	return func() (vmath.Transform, bool) {
		t, ok := reader.Bone(id)
		if !ok {
			return vmath.Transform{}, false
		}
		return t.World(), true
	}
}

func boneAxis(reader constraint.BoneReader, id core.BoneID, axis int) condition.ScalarFunc {
	return func() (float64, bool) {
		t, ok := reader.Bone(id)
		if !ok {
			return 0, false
		}
		return t.WorldPosition[axis], true
	}
}
