package event

// EventType represents the type of rig event
type EventType int

const (
	// EventPoseConditionsValidated signals an animator's conditions held and its pose started
	// Trigger: Animator.TryActivate | Payload: *AnimatorPayload
	EventPoseConditionsValidated EventType = iota

	// EventPoseConditionsEnded signals an animator released its pose
	// Trigger: Animator.EndApply | Payload: *AnimatorPayload
	EventPoseConditionsEnded

	// EventConstraintApplied signals a constraint became the bone's single applied constraint
	// Trigger: constraint.Service | Payload: *ConstraintPayload
	EventConstraintApplied

	// EventConstraintEnded signals a constraint released its bone
	// Trigger: constraint.Service | Payload: *ConstraintPayload
	EventConstraintEnded

	// EventWriterConflict signals a second writer touched a bone in the same frame
	// Trigger: PoseSystem, TrackerSystem | Payload: *ConflictPayload
	EventWriterConflict

	// EventBoneResolveFailed signals a per-bone resolution error isolated by a system
	// Trigger: PoseSystem, TrackerSystem | Payload: *BoneErrorPayload
	EventBoneResolveFailed
)

var eventNames = map[EventType]string{
	EventPoseConditionsValidated: "PoseConditionsValidated",
	EventPoseConditionsEnded:     "PoseConditionsEnded",
	EventConstraintApplied:       "ConstraintApplied",
	EventConstraintEnded:         "ConstraintEnded",
	EventWriterConflict:          "WriterConflict",
	EventBoneResolveFailed:       "BoneResolveFailed",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return "Unknown"
}

// RigEvent is a single queued notification
type RigEvent struct {
	Type    EventType
	Payload any
	Frame   int64
}
