package core

// Writer tags the subsystem that owns a bone's transform for the current frame
// Exactly one writer may touch a bone per frame
type Writer uint8

const (
	WriterNone Writer = iota
	WriterPose
	WriterTracker
)

func (w Writer) String() string {
	switch w {
	case WriterNone:
		return "None"
	case WriterPose:
		return "Pose"
	case WriterTracker:
		return "Tracker"
	default:
		return "Unknown"
	}
}
