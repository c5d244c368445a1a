package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/redis/go-redis/v9"

	"github.com/lixenwraith/rigkit/animator"
	"github.com/lixenwraith/rigkit/asset"
	"github.com/lixenwraith/rigkit/condition"
	"github.com/lixenwraith/rigkit/config"
	"github.com/lixenwraith/rigkit/constraint"
	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/engine"
	"github.com/lixenwraith/rigkit/parameter"
	"github.com/lixenwraith/rigkit/pose"
	"github.com/lixenwraith/rigkit/skeleton"
	"github.com/lixenwraith/rigkit/status"
	"github.com/lixenwraith/rigkit/system"
	"github.com/lixenwraith/rigkit/vmath"
)

// Sandbox constraint and node ids looked up in the rig file
const (
	targetNode        = "target"
	nodeConstraintID  = "hand_follows_target"
	boneConstraintID  = "hands_together"
	floorConstraintID = "left_foot_planted"
)

// Target node orbit
const (
	targetPriority = parameter.PriorityFrame + 5
	targetRadius   = 0.35
	targetPeriod   = 4 * time.Second
	storeTimeout   = 5 * time.Second
)

var targetCenter = mgl64.Vec3{0.45, 1.45, 0.2}

// Sandbox wires a rig file into a live runtime
type Sandbox struct {
	clock       *engine.PausableClock
	rt          *engine.Runtime
	rig         *skeleton.Rig
	nodes       *constraint.NodeMap
	constraints *constraint.Service
	byID        map[string]constraint.Constraint
	animators   []*animator.Animator
	selected    int
	lib         *pose.Library
	acquired    []string // Pose ids held by players, released on Close
	rdb         *redis.Client
}

// NewSandbox builds the runtime for rf on pausable time over base; nothing ticks until the caller drives rt
func NewSandbox(rf *asset.RigFile, cfg config.Config, base engine.Clock) (*Sandbox, error) {
	h, err := rf.BuildHierarchy()
	if err != nil {
		return nil, err
	}

	clock := engine.NewPausableClock(base)
	rig := skeleton.NewRig(h)
	rt := engine.NewRuntime(clock)
	poses := system.Install(rt, rig)

	s := &Sandbox{
		clock: clock,
		rt:    rt,
		rig:   rig,
		nodes: constraint.NewNodeMap(),
		byID:  make(map[string]constraint.Constraint),
	}
	s.nodes.Set(targetNode, vmath.Transform{Position: targetCenter, Rotation: mgl64.QuatIdent()})
	rt.AddSystem(&targetSystem{nodes: s.nodes, clock: clock, start: clock.Now()})

	s.constraints = constraint.NewService(rig.Tracked(), constraint.WithEmitter(rt), constraint.WithStatus(rt.Status))
	cs, err := rf.BuildConstraints(h, asset.Env{Nodes: s.nodes, Bones: rig, FloorHeight: cfg.Constraint.FloorHeight})
	if err != nil {
		return nil, err
	}
	for _, c := range cs {
		s.constraints.RegisterConstraint(c)
		s.byID[c.ID()] = c
	}

	if err := s.openLibrary(rf, h, cfg.Store); err != nil {
		s.Close()
		return nil, err
	}

	bindings := asset.BoneBindings(h, rig)
	for _, spec := range rf.Animators {
		opts, err := asset.AnimatorOptions(spec)
		if err != nil {
			s.Close()
			return nil, err
		}
		opts.WatchPeriod = cfg.Animator.WatchPeriod
		if opts.MaxDuration <= 0 && opts.FixedDuration <= 0 {
			opts.FixedDuration = cfg.Animator.FixedDuration
		}
		conds, err := condition.BuildAll(spec.Conditions, bindings)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("animator %q: %w", opts.ID, err)
		}
		clip, err := s.lib.Acquire(spec.Pose)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("animator %q: %w", opts.ID, err)
		}
		s.acquired = append(s.acquired, spec.Pose)

		player := pose.NewPlayer(clip, rig, rig.Tracked(), rt.Scheduler,
			pose.WithDefaults(cfg.Pose.StartTransition, cfg.Pose.EndTransition))
		poses.AddPlayer(player)
		s.animators = append(s.animators, animator.New(player, rt.Scheduler, rt, opts, conds...))
	}
	return s, nil
}

// openLibrary fills the pose library from the rig file and, when configured, the Redis store
func (s *Sandbox) openLibrary(rf *asset.RigFile, h *skeleton.Hierarchy, cfg config.StoreConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	var store asset.PoseIndex
	if cfg.RedisAddr != "" {
		s.rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store = asset.NewRedisPoseStore(s.rdb, cfg.KeyPrefix, h)
	}
	lib, err := asset.NewLibrary(ctx, rf, h, store)
	if err != nil {
		return fmt.Errorf("pose library: %w", err)
	}
	s.lib = lib
	return nil
}

// Library returns the poses available to the sandbox
func (s *Sandbox) Library() *pose.Library {
	return s.lib
}

// Runtime exposes the tick loop state
func (s *Sandbox) Runtime() *engine.Runtime {
	return s.rt
}

// TogglePause freezes or resumes rig time; returns true when now paused
func (s *Sandbox) TogglePause() bool {
	paused := s.clock.Toggle()
	s.rt.Status.Bools.Get(status.KeyPaused).Store(paused)
	return paused
}

// ToggleConstraint flips the application wish of constraint id
// Returns false when the rig file has no such constraint
func (s *Sandbox) ToggleConstraint(id string) bool {
	c, ok := s.byID[id]
	if !ok {
		log.Printf("[Sandbox] no constraint %q in rig", id)
		return false
	}
	s.rt.RunSafe(func() {
		if c.ShouldBeApplied() {
			s.constraints.ForceDeactivateConstraint(c)
		} else {
			s.constraints.ForceActivateConstraint(c)
		}
	})
	return true
}

// Selected returns the animator driven by RequestPose and EndPose
func (s *Sandbox) Selected() *animator.Animator {
	if len(s.animators) == 0 {
		return nil
	}
	return s.animators[s.selected]
}

// SelectNext cycles the selected animator, ending the current one
func (s *Sandbox) SelectNext() {
	if len(s.animators) < 2 {
		return
	}
	s.EndPose()
	s.selected = (s.selected + 1) % len(s.animators)
}

// RequestPose triggers or starts watching the selected animator depending on its mode
func (s *Sandbox) RequestPose() {
	a := s.Selected()
	if a == nil {
		return
	}
	s.rt.RunSafe(func() {
		if a.Mode() == animator.ActivationOnTrigger {
			a.Trigger()
			return
		}
		a.StartWatchActivationConditions()
		a.TryActivate()
	})
}

// EndPose stops watching and releases the selected animator's pose
func (s *Sandbox) EndPose() {
	a := s.Selected()
	if a == nil {
		return
	}
	s.rt.RunSafe(func() {
		a.StopWatchActivationConditions()
		a.EndApply()
	})
}

// Close ends every animator immediately and releases the poses and store connection
// Safe to call more than once
func (s *Sandbox) Close() {
	s.rt.RunSafe(func() {
		for _, a := range s.animators {
			a.Close()
		}
		for _, id := range s.acquired {
			s.lib.Release(id)
		}
		s.acquired = nil
	})
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			log.Printf("[Sandbox] closing store: %v", err)
		}
		s.rdb = nil
	}
}

// BoneView is one bone as drawn by the viewer
type BoneView struct {
	Name      string
	Position  mgl64.Vec3
	Parent    mgl64.Vec3
	HasParent bool
	Writer    core.Writer
}

// Frame is a consistent snapshot of the rig between ticks
type Frame struct {
	Bones    []BoneView
	Target   mgl64.Vec3
	Applied  []string // Applied constraint ids, sorted
	Animator string
	Mode     string
	PoseOn   bool
	Paused   bool
	Metrics  map[string]int64
	FrameNo  int64
}

// Snapshot captures the rig under the update lock
func (s *Sandbox) Snapshot() Frame {
	var f Frame
	s.rt.RunSafe(func() {
		h := s.rig.Hierarchy()
		bones := s.rig.Bones()
		for _, id := range h.Order() {
			t := bones[id]
			v := BoneView{Name: h.Name(id), Position: t.WorldPosition, Writer: s.rig.Writer(id)}
			if p := h.Parent(id); p != core.BoneNone {
				v.Parent = bones[p].WorldPosition
				v.HasParent = true
			}
			f.Bones = append(f.Bones, v)
		}
		for _, bone := range s.constraints.Bones() {
			if c := s.constraints.Applied(bone); c != nil {
				f.Applied = append(f.Applied, c.ID())
			}
		}
		if t, ok := s.nodes.ResolveNode(targetNode); ok {
			f.Target = t.Position
		}
		if a := s.Selected(); a != nil {
			f.Animator = a.ID()
			f.Mode = a.Mode().String()
			f.PoseOn = a.IsApplied()
		}
		f.FrameNo = s.rt.Frame()
	})
	f.Paused = s.rt.Status.Bools.Get(status.KeyPaused).Load()
	sort.Strings(f.Applied)
	f.Metrics = s.rt.Status.Snapshot()
	return f
}

// targetSystem orbits the target node so node constraints have something to follow
type targetSystem struct {
	nodes *constraint.NodeMap
	clock engine.Clock
	start time.Time
}

func (t *targetSystem) Name() string  { return "target" }
func (t *targetSystem) Priority() int { return targetPriority }

func (t *targetSystem) Update() {
	phase := 2 * math.Pi * float64(engine.Since(t.clock, t.start)) / float64(targetPeriod)
	pos := targetCenter.Add(mgl64.Vec3{targetRadius * math.Cos(phase), targetRadius * math.Sin(phase), 0})
	t.nodes.Set(targetNode, vmath.Transform{Position: pos, Rotation: mgl64.QuatIdent()})
}
