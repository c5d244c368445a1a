package skeleton

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/rigkit/vmath"
)

// Transformation is the per-bone runtime value owned by a Rig
// BaseLocalRotation is the layer beneath every writer; LocalRotation is this frame's result
type Transformation struct {
	BaseLocalRotation mgl64.Quat
	LocalRotation     mgl64.Quat
	WorldRotation     mgl64.Quat
	WorldPosition     mgl64.Vec3
}

// World returns the world position and rotation as a transform
func (t Transformation) World() vmath.Transform {
	return vmath.Transform{Position: t.WorldPosition, Rotation: t.WorldRotation}
}

func identityTransformation() Transformation {
	return Transformation{
		BaseLocalRotation: mgl64.QuatIdent(),
		LocalRotation:     mgl64.QuatIdent(),
		WorldRotation:     mgl64.QuatIdent(),
	}
}
