package system

import (
	"github.com/lixenwraith/rigkit/parameter"
	"github.com/lixenwraith/rigkit/skeleton"
)

// FrameSystem opens a new frame by releasing every bone's writer claim
type FrameSystem struct {
	rig *skeleton.Rig
}

func NewFrameSystem(rig *skeleton.Rig) *FrameSystem {
	return &FrameSystem{rig: rig}
}

func (s *FrameSystem) Name() string  { return "frame" }
func (s *FrameSystem) Priority() int { return parameter.PriorityFrame }

func (s *FrameSystem) Update() {
	s.rig.BeginFrame()
}
