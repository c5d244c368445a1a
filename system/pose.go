package system

import (
	"log"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/engine"
	"github.com/lixenwraith/rigkit/event"
	"github.com/lixenwraith/rigkit/parameter"
	"github.com/lixenwraith/rigkit/pose"
	"github.com/lixenwraith/rigkit/skeleton"
	"github.com/lixenwraith/rigkit/status"
)

// PoseSystem writes the output of every playing pose player into the rig
// A failing player is isolated: its bones keep last frame's rotation and other players continue
type PoseSystem struct {
	mu      sync.RWMutex
	rig     *skeleton.Rig
	runtime *engine.Runtime
	players []*pose.Player

	statErrors    *atomic.Int64
	statConflicts *atomic.Int64
	statPlaying   *atomic.Int64
}

func NewPoseSystem(rig *skeleton.Rig, runtime *engine.Runtime) *PoseSystem {
	return &PoseSystem{
		rig:           rig,
		runtime:       runtime,
		statErrors:    runtime.Status.Ints.Get(status.KeyPoseErrors),
		statConflicts: runtime.Status.Ints.Get(status.KeyConflicts),
		statPlaying:   runtime.Status.Ints.Get(status.KeyPosesPlaying),
	}
}

func (s *PoseSystem) Name() string  { return "pose" }
func (s *PoseSystem) Priority() int { return parameter.PriorityPose }

// AddPlayer registers a player; order decides which player writes a shared bone first
func (s *PoseSystem) AddPlayer(p *pose.Player) {
	s.mu.Lock()
	s.players = append(s.players, p)
	s.mu.Unlock()
}

// RemovePlayer unregisters a player
func (s *PoseSystem) RemovePlayer(p *pose.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.players {
		if existing == p {
			s.players = append(s.players[:i], s.players[i+1:]...)
			return
		}
	}
}

func (s *PoseSystem) Update() {
	s.mu.RLock()
	players := append([]*pose.Player(nil), s.players...)
	s.mu.RUnlock()

	h := s.rig.Hierarchy()
	var playing int64
	for _, p := range players {
		if !p.IsPlaying() {
			continue
		}
		playing++

		var out pose.LocalPose
		err := core.Recover(func() error {
			var poseErr error
			out, poseErr = p.GetPose(h)
			return poseErr
		})
		if err != nil {
			s.statErrors.Add(1)
			log.Printf("[Pose] %s: %v", p.Clip().ID, err)
			s.runtime.Emit(event.EventBoneResolveFailed, &event.BoneErrorPayload{
				Bone: core.BoneNone, Writer: core.WriterPose, Err: err,
			})
			continue
		}

		bones := make([]core.BoneID, 0, len(out))
		for b := range out {
			bones = append(bones, b)
		}
		sort.Slice(bones, func(i, j int) bool { return bones[i] < bones[j] })

		for _, b := range bones {
			if err := s.rig.SetLocalRotation(b, out[b], core.WriterPose); err != nil {
				reportWriteError(s.runtime, s.rig, s.statConflicts, b, core.WriterPose, err)
			}
		}
	}
	s.statPlaying.Store(playing)
}
