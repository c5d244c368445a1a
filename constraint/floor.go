package constraint

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/vmath"
)

// FloorBoneConstraint plants a bone on the horizontal plane y = Height
// The plant point is the bone's live position projected onto the plane, sampled when applied
// Resolve = plant + floor rotation * position offset, floor rotation * rotation offset
type FloorBoneConstraint struct {
	base
	reader   BoneReader
	height   float64
	yaw      float64 // Floor rotation about the up axis, degrees
	plant    mgl64.Vec3
	hasPlant bool
}

func NewFloorBoneConstraint(id string, bone core.BoneID, shouldBeApplied bool, reader BoneReader, height float64) (*FloorBoneConstraint, error) {
	c := &FloorBoneConstraint{reader: reader, height: height}
	if err := c.initBase(id, KindFloor, bone, shouldBeApplied); err != nil {
		return nil, err
	}
	c.resolve = c.resolveFloor
	c.onApply = c.samplePlant
	c.onEnd = func() { c.hasPlant = false }
	return c, nil
}

// Height returns the floor plane height
func (c *FloorBoneConstraint) Height() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.height
}

// SetHeight moves the floor plane; an existing plant point follows it
func (c *FloorBoneConstraint) SetHeight(h float64) {
	c.mu.Lock()
	c.height = h
	c.plant[1] = h
	c.mu.Unlock()
}

// SetYaw sets the floor rotation about the up axis in degrees
func (c *FloorBoneConstraint) SetYaw(deg float64) {
	c.mu.Lock()
	c.yaw = deg
	c.mu.Unlock()
}

// samplePlant runs under the lock when the constraint becomes applied
func (c *FloorBoneConstraint) samplePlant() {
	if live, ok := c.reader.Bone(c.bone); ok {
		c.plant = mgl64.Vec3{live.WorldPosition[0], c.height, live.WorldPosition[2]}
		c.hasPlant = true
	}
}

func (c *FloorBoneConstraint) resolveFloor() (vmath.Transform, error) {
	c.mu.RLock()
	plant, hasPlant, height, yaw := c.plant, c.hasPlant, c.height, c.yaw
	pos, rot := c.posOff, c.rotOff
	c.mu.RUnlock()

	if !hasPlant {
		live, ok := c.reader.Bone(c.bone)
		if !ok {
			return vmath.Transform{}, fmt.Errorf("constraint %s: %w: %s", c.id, ErrReferenceBoneMissing, c.bone)
		}
		plant = mgl64.Vec3{live.WorldPosition[0], height, live.WorldPosition[2]}
	}

	floor := vmath.Transform{Position: plant, Rotation: vmath.Euler(0, yaw, 0)}
	return floor.Compose(pos, rot), nil
}
