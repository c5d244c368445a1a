package system

import (
	"errors"
	"log"
	"sync/atomic"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/engine"
	"github.com/lixenwraith/rigkit/event"
	"github.com/lixenwraith/rigkit/parameter"
	"github.com/lixenwraith/rigkit/skeleton"
	"github.com/lixenwraith/rigkit/status"
	"github.com/lixenwraith/rigkit/vmath"
)

// TrackerSystem writes every tracked bone from its active controller
// Runs before the pose layer so applied constraints and simulated trackers own their bones
type TrackerSystem struct {
	rig     *skeleton.Rig
	runtime *engine.Runtime

	// Bones whose last evaluation failed; logged once per failure streak
	failing map[core.BoneID]bool

	statErrors    *atomic.Int64
	statConflicts *atomic.Int64
}

func NewTrackerSystem(rig *skeleton.Rig, runtime *engine.Runtime) *TrackerSystem {
	return &TrackerSystem{
		rig:           rig,
		runtime:       runtime,
		failing:       make(map[core.BoneID]bool),
		statErrors:    runtime.Status.Ints.Get(status.KeyTrackerErrors),
		statConflicts: runtime.Status.Ints.Get(status.KeyConflicts),
	}
}

func (s *TrackerSystem) Name() string  { return "tracker" }
func (s *TrackerSystem) Priority() int { return parameter.PriorityTracker }

func (s *TrackerSystem) Update() {
	s.rig.Tracked().Evaluate(func(bone core.BoneID, t vmath.Transform, err error) {
		if err != nil {
			s.statErrors.Add(1)
			if !s.failing[bone] {
				log.Printf("[Tracker] %s: %v", bone, err)
				s.failing[bone] = true
			}
			s.runtime.Emit(event.EventBoneResolveFailed, &event.BoneErrorPayload{
				Bone: bone, Writer: core.WriterTracker, Err: err,
			})
			return
		}
		if s.failing[bone] {
			log.Printf("[Tracker] %s: recovered", bone)
			delete(s.failing, bone)
		}

		if err := s.rig.SetWorld(bone, t, core.WriterTracker); err != nil {
			reportWriteError(s.runtime, s.rig, s.statConflicts, bone, core.WriterTracker, err)
		}
	})
}

// reportWriteError counts and emits a rejected bone write
func reportWriteError(rt *engine.Runtime, rig *skeleton.Rig, conflicts *atomic.Int64, bone core.BoneID, w core.Writer, err error) {
	if errors.Is(err, skeleton.ErrWriterConflict) {
		conflicts.Add(1)
		rt.Emit(event.EventWriterConflict, &event.ConflictPayload{
			Bone: bone, Holder: rig.Writer(bone), Rejected: w,
		})
		return
	}
	log.Printf("[%s] %s: %v", w, bone, err)
	rt.Emit(event.EventBoneResolveFailed, &event.BoneErrorPayload{Bone: bone, Writer: w, Err: err})
}
