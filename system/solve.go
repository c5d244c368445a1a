package system

import (
	"github.com/lixenwraith/rigkit/parameter"
	"github.com/lixenwraith/rigkit/skeleton"
)

// SolveSystem runs forward kinematics once every writer has run
type SolveSystem struct {
	rig *skeleton.Rig
}

func NewSolveSystem(rig *skeleton.Rig) *SolveSystem {
	return &SolveSystem{rig: rig}
}

func (s *SolveSystem) Name() string  { return "solve" }
func (s *SolveSystem) Priority() int { return parameter.PrioritySolve }

func (s *SolveSystem) Update() {
	s.rig.Solve()
}
