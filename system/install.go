package system

import (
	"github.com/lixenwraith/rigkit/engine"
	"github.com/lixenwraith/rigkit/skeleton"
)

// Install adds the frame, tracker, pose and solve systems for rig to rt
// Returns the pose system so callers can register players
func Install(rt *engine.Runtime, rig *skeleton.Rig) *PoseSystem {
	poses := NewPoseSystem(rig, rt)
	rt.AddSystem(NewSolveSystem(rig))
	rt.AddSystem(poses)
	rt.AddSystem(NewTrackerSystem(rig, rt))
	rt.AddSystem(NewFrameSystem(rig))
	return poses
}
