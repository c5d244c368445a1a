package pose

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/engine"
	"github.com/lixenwraith/rigkit/parameter"
	"github.com/lixenwraith/rigkit/skeleton"
	"github.com/lixenwraith/rigkit/vmath"
)

// BoneReader exposes the live skeleton's bone state; transitions blend against BaseLocalRotation
type BoneReader interface {
	Bone(id core.BoneID) (skeleton.Transformation, bool)
}

// TrackerSimulator grounds anchored poses through simulated trackers
type TrackerSimulator interface {
	StartTrackerSimulation(anchor skeleton.Anchor)
	StopTrackerSimulation(anchor skeleton.Anchor) bool
}

// PlayingParameters configures one playback
type PlayingParameters struct {
	IsAnchored              bool
	Anchor                  skeleton.Anchor
	StartTransitionDuration time.Duration
	EndTransitionDuration   time.Duration
}

// LocalPose is the per-frame output: local rotation per clip bone
type LocalPose map[core.BoneID]mgl64.Quat

// Option configures a Player
type Option func(*Player)

// WithDefaults sets the transition durations used when Play receives nil parameters
func WithDefaults(start, end time.Duration) Option {
	return func(p *Player) {
		p.defaults.StartTransitionDuration = start
		p.defaults.EndTransitionDuration = end
	}
}

// Player blends one pose clip onto a skeleton over time
// State machine: Idle -> Playing -> Ending -> Idle
// All timers run on the engine scheduler; every scheduling site cancels the previous handle first
type Player struct {
	mu sync.Mutex

	clip      *Pose
	bones     BoneReader
	tracker   TrackerSimulator
	scheduler *engine.Scheduler
	defaults  PlayingParameters

	state        State
	params       PlayingParameters
	startTime    time.Time
	endRequested time.Time
	endTimer     engine.TimerHandle

	// Nearest clip ancestor per bone, rebuilt on every GetPose call
	ancestors map[core.BoneID]core.BoneID
}

// NewPlayer creates an idle player for clip
// tracker may be nil when anchored playback is never requested
func NewPlayer(clip *Pose, bones BoneReader, tracker TrackerSimulator, scheduler *engine.Scheduler, opts ...Option) *Player {
	p := &Player{
		clip:      clip,
		bones:     bones,
		tracker:   tracker,
		scheduler: scheduler,
		defaults: PlayingParameters{
			StartTransitionDuration: parameter.StartTransitionDuration,
			EndTransitionDuration:   parameter.EndTransitionDuration,
		},
		ancestors: make(map[core.BoneID]core.BoneID),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Clip returns the pose being played
func (p *Player) Clip() *Pose {
	return p.clip
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsPlaying is true while Playing or Ending
func (p *Player) IsPlaying() bool {
	return p.State() != StateIdle
}

func (p *Player) IsEnding() bool {
	return p.State() == StateEnding
}

// Parameters returns the parameters of the current playback
func (p *Player) Parameters() PlayingParameters {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

// Play starts playback; no-op while already playing
// nil params use the player defaults; a clip anchor enables anchoring when the caller did not
func (p *Player) Play(params *PlayingParameters) {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return
	}

	pp := p.defaults
	if params != nil {
		pp = *params
	}
	if p.clip.Anchor != nil && !pp.IsAnchored {
		pp.IsAnchored = true
		pp.Anchor = *p.clip.Anchor
	}

	p.params = pp
	p.state = StatePlaying
	p.startTime = p.scheduler.Clock().Now()
	p.mu.Unlock()

	if pp.IsAnchored && p.tracker != nil {
		p.tracker.StartTrackerSimulation(pp.Anchor)
	}
}

// End stops playback; no-op when idle
// Immediate or non-interpolable clips stop now, otherwise the player enters Ending for the end transition
// While Ending, End(false) is a no-op and End(true) cancels the pending stop and stops now
func (p *Player) End(immediate bool) {
	p.mu.Lock()
	switch p.state {
	case StateIdle:
		p.mu.Unlock()
		return

	case StateEnding:
		if !immediate {
			p.mu.Unlock()
			return
		}

	case StatePlaying:
		if !immediate && p.clip.Interpolable {
			p.state = StateEnding
			p.endRequested = p.scheduler.Clock().Now()
			p.scheduler.Reschedule(&p.endTimer, p.params.EndTransitionDuration, p.finishEnding)
			p.mu.Unlock()
			return
		}
	}

	anchored, anchor := p.stopLocked()
	p.mu.Unlock()
	p.releaseAnchor(anchored, anchor)
}

// finishEnding runs on the scheduler when the end transition elapses
func (p *Player) finishEnding() {
	p.mu.Lock()
	if p.state != StateEnding {
		p.mu.Unlock()
		return
	}
	anchored, anchor := p.stopLocked()
	p.mu.Unlock()
	p.releaseAnchor(anchored, anchor)
}

func (p *Player) stopLocked() (bool, skeleton.Anchor) {
	p.scheduler.Cancel(p.endTimer)
	p.endTimer = engine.TimerHandle{}
	p.state = StateIdle

	anchored, anchor := p.params.IsAnchored, p.params.Anchor
	p.params = PlayingParameters{}
	p.startTime = time.Time{}
	p.endRequested = time.Time{}
	return anchored, anchor
}

func (p *Player) releaseAnchor(anchored bool, anchor skeleton.Anchor) {
	if anchored && p.tracker != nil {
		if !p.tracker.StopTrackerSimulation(anchor) {
			log.Printf("[Pose] %s: anchor %s was not simulated", p.clip.ID, anchor.Bone)
		}
	}
}

// GetPose computes the local rotation of every clip bone for the current time
// Returns nil, nil when not playing
func (p *Player) GetPose(h *skeleton.Hierarchy) (LocalPose, error) {
	if h == nil {
		return nil, ErrNilHierarchy
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateIdle {
		return nil, nil
	}

	clear(p.ancestors)
	world := make(map[core.BoneID]mgl64.Quat, len(p.clip.Bones))
	for _, b := range p.clip.Bones {
		world[b.Bone] = b.Rotation
	}

	factor := 1.0
	if p.clip.Interpolable {
		now := p.scheduler.Clock().Now()
		if p.state == StatePlaying {
			factor = blendFactor(now.Sub(p.startTime), p.params.StartTransitionDuration)
		} else {
			factor = blendFactor(now.Sub(p.endRequested), p.params.EndTransitionDuration)
		}
	}

	out := make(LocalPose, len(p.clip.Bones))
	for _, b := range p.clip.Bones {
		if !h.Has(b.Bone) {
			return nil, fmt.Errorf("pose %q: %w: %s", p.clip.ID, ErrBoneNotInHierarchy, b.Bone)
		}

		local := b.Rotation
		if anc := p.clipAncestor(h, b.Bone, world); anc != core.BoneNone {
			local = vmath.LocalFromWorld(world[anc], b.Rotation)
		}

		if p.clip.Interpolable {
			current := p.baseRotation(b.Bone)
			if p.state == StatePlaying {
				local = vmath.Slerp(current, local, factor)
			} else {
				local = vmath.Slerp(local, current, factor)
			}
		}
		out[b.Bone] = local
	}
	return out, nil
}

// baseRotation is the bone's rotation beneath the pose layer, identity when unknown
func (p *Player) baseRotation(bone core.BoneID) mgl64.Quat {
	live, ok := p.bones.Bone(bone)
	if !ok || live.BaseLocalRotation.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return live.BaseLocalRotation
}

// clipAncestor returns the nearest ancestor of bone present in the clip, memoized per call
func (p *Player) clipAncestor(h *skeleton.Hierarchy, bone core.BoneID, world map[core.BoneID]mgl64.Quat) core.BoneID {
	if anc, ok := p.ancestors[bone]; ok {
		return anc
	}
	parent := h.Parent(bone)
	var anc core.BoneID
	switch {
	case parent == core.BoneNone:
		anc = core.BoneNone
	case hasBone(world, parent):
		anc = parent
	default:
		anc = p.clipAncestor(h, parent, world)
	}
	p.ancestors[bone] = anc
	return anc
}

func hasBone(world map[core.BoneID]mgl64.Quat, bone core.BoneID) bool {
	_, ok := world[bone]
	return ok
}

// blendFactor maps elapsed time over a transition to [0,1]
// Zero or negative durations complete instantly
func blendFactor(elapsed, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	return vmath.Clamp01(float64(elapsed) / float64(duration))
}
