package constraint

import (
	"fmt"
	"log"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/vmath"
)

// BoneBoneConstraint binds a bone to another bone's live transformation
type BoneBoneConstraint struct {
	base
	reader    BoneReader
	reference core.BoneID
}

func NewBoneBoneConstraint(id string, bone core.BoneID, shouldBeApplied bool, reader BoneReader, reference core.BoneID) (*BoneBoneConstraint, error) {
	c := &BoneBoneConstraint{reader: reader, reference: reference}
	if err := c.initBase(id, KindBone, bone, shouldBeApplied); err != nil {
		return nil, err
	}
	c.resolve = c.resolveBone
	return c, nil
}

// ReferenceBone returns the bone this constraint follows
func (c *BoneBoneConstraint) ReferenceBone() core.BoneID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reference
}

// SetReferenceBone changes the followed bone; the none bone is logged and ignored
func (c *BoneBoneConstraint) SetReferenceBone(bone core.BoneID) {
	if !bone.Valid() {
		log.Printf("[Constraint] %s: ignoring reference bone %s", c.id, bone)
		return
	}
	c.mu.Lock()
	c.reference = bone
	c.mu.Unlock()
}

func (c *BoneBoneConstraint) resolveBone() (vmath.Transform, error) {
	ref := c.ReferenceBone()
	live, ok := c.reader.Bone(ref)
	if !ok {
		return vmath.Transform{}, fmt.Errorf("constraint %s: %w: %s", c.id, ErrReferenceBoneMissing, ref)
	}
	pos, rot := c.offsets()
	return live.World().Compose(pos, rot), nil
}
