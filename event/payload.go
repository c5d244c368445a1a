package event

import "github.com/lixenwraith/rigkit/core"

// AnimatorPayload identifies the animator and the pose it drives
type AnimatorPayload struct {
	AnimatorID string
	PoseID     string
}

// ConstraintPayload identifies a constraint and its bone
type ConstraintPayload struct {
	ConstraintID string
	Bone         core.BoneID
}

// ConflictPayload describes a rejected second write
type ConflictPayload struct {
	Bone     core.BoneID
	Holder   core.Writer // Writer that already owns the bone this frame
	Rejected core.Writer
}

// BoneErrorPayload carries an isolated per-bone failure
type BoneErrorPayload struct {
	Bone   core.BoneID
	Writer core.Writer
	Err    error
}
