package animator

import (
	"log"
	"sync"
	"time"

	"github.com/lixenwraith/rigkit/condition"
	"github.com/lixenwraith/rigkit/engine"
	"github.com/lixenwraith/rigkit/event"
	"github.com/lixenwraith/rigkit/parameter"
	"github.com/lixenwraith/rigkit/pose"
)

// ActivationMode selects how an animator may start its pose
type ActivationMode uint8

const (
	// ActivationOnRequest applies as soon as conditions hold
	ActivationOnRequest ActivationMode = iota
	// ActivationOnTrigger additionally waits for an explicit Trigger
	ActivationOnTrigger
)

func (m ActivationMode) String() string {
	if m == ActivationOnTrigger {
		return "on_trigger"
	}
	return "on_request"
}

// Playable is the player surface an animator drives
type Playable interface {
	Play(params *pose.PlayingParameters)
	End(immediate bool)
	IsPlaying() bool
	Clip() *pose.Pose
}

// Emitter receives animator notifications
type Emitter interface {
	Emit(t event.EventType, payload any)
}

// Options configures an Animator
type Options struct {
	ID            string
	Mode          ActivationMode
	MinDuration   time.Duration // Conditions turning false cannot end the pose earlier
	MaxDuration   time.Duration // 0 = unbounded
	FixedDuration time.Duration // Applies only when MaxDuration is 0
	WatchPeriod   time.Duration
	Parameters    *pose.PlayingParameters // nil = player defaults
}

// Animator gates a pose player behind a conjunction of activation conditions
// Watch loops are repeating scheduler timers on the tick loop
type Animator struct {
	mu sync.Mutex

	player     Playable
	scheduler  *engine.Scheduler
	emitter    Emitter
	conditions []condition.Condition
	opts       Options

	applied   bool
	triggered bool
	appliedAt time.Time

	activationWatch engine.TimerHandle
	endWatch        engine.TimerHandle
}

// New creates an animator; emitter may be nil
func New(player Playable, scheduler *engine.Scheduler, emitter Emitter, opts Options, conds ...condition.Condition) *Animator {
	if opts.WatchPeriod <= 0 {
		opts.WatchPeriod = parameter.WatchPeriod
	}
	if opts.ID == "" && player.Clip() != nil {
		opts.ID = player.Clip().ID
	}
	return &Animator{
		player:     player,
		scheduler:  scheduler,
		emitter:    emitter,
		conditions: conds,
		opts:       opts,
	}
}

func (a *Animator) ID() string {
	return a.opts.ID
}

// Mode returns the activation mode
func (a *Animator) Mode() ActivationMode {
	return a.opts.Mode
}

// AddCondition attaches another activation condition
func (a *Animator) AddCondition(c condition.Condition) {
	a.mu.Lock()
	a.conditions = append(a.conditions, c)
	a.mu.Unlock()
}

// CheckConditions is true when every condition holds; true with no conditions
func (a *Animator) CheckConditions() bool {
	a.mu.Lock()
	conds := a.conditions
	a.mu.Unlock()
	return condition.All(conds...).Check()
}

// IsApplied reports whether the animator currently drives its pose
func (a *Animator) IsApplied() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.applied
}

// Watching reports whether the activation watch loop runs
func (a *Animator) Watching() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scheduler.Active(a.activationWatch)
}

// StartWatchActivationConditions starts the periodic activation check; idempotent
func (a *Animator) StartWatchActivationConditions() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.scheduler.Active(a.activationWatch) {
		return
	}
	a.activationWatch = a.scheduler.Every(a.opts.WatchPeriod, a.watchActivation)
}

// StopWatchActivationConditions stops the periodic activation check; idempotent
func (a *Animator) StopWatchActivationConditions() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scheduler.Cancel(a.activationWatch)
	a.activationWatch = engine.TimerHandle{}
}

func (a *Animator) watchActivation() bool {
	if !a.IsApplied() {
		a.TryActivate()
	}
	return true
}

// Trigger arms an on-trigger animator and attempts activation
// The trigger stays armed until an activation consumes it
func (a *Animator) Trigger() bool {
	a.mu.Lock()
	a.triggered = true
	a.mu.Unlock()
	return a.TryActivate()
}

// TryActivate applies the pose when allowed and conditions hold
func (a *Animator) TryActivate() bool {
	a.mu.Lock()
	if a.applied {
		a.mu.Unlock()
		return false
	}
	if a.opts.Mode == ActivationOnTrigger && !a.triggered {
		a.mu.Unlock()
		return false
	}
	// Previous apply still running its end transition
	if a.player.IsPlaying() {
		a.mu.Unlock()
		return false
	}
	if !condition.All(a.conditions...).Check() {
		a.mu.Unlock()
		return false
	}

	a.applied = true
	a.triggered = false
	a.appliedAt = a.scheduler.Clock().Now()
	a.scheduler.Cancel(a.endWatch)
	a.endWatch = a.scheduler.Every(a.opts.WatchPeriod, a.watchEnd)
	params := a.opts.Parameters
	a.mu.Unlock()

	a.player.Play(params)
	a.emit(event.EventPoseConditionsValidated)
	return true
}

// watchEnd decides whether the applied pose has run its course
func (a *Animator) watchEnd() bool {
	a.mu.Lock()
	if !a.applied {
		a.mu.Unlock()
		return false
	}
	elapsed := a.scheduler.Clock().Now().Sub(a.appliedAt)
	opts := a.opts
	conds := a.conditions
	a.mu.Unlock()

	var reason string
	switch {
	case opts.MaxDuration > 0 && elapsed >= opts.MaxDuration:
		reason = "max duration"
	case opts.MaxDuration <= 0 && opts.FixedDuration > 0 && elapsed >= opts.FixedDuration:
		reason = "fixed duration"
	case elapsed >= opts.MinDuration && !condition.All(conds...).Check():
		reason = "conditions ended"
	default:
		return true
	}

	log.Printf("[Animator] %s: ending after %v (%s)", opts.ID, elapsed, reason)
	a.EndApply()
	return false
}

// EndApply releases the pose with an interpolated end; no-op when not applied
func (a *Animator) EndApply() {
	a.mu.Lock()
	if !a.applied {
		a.mu.Unlock()
		return
	}
	a.applied = false
	a.scheduler.Cancel(a.endWatch)
	a.endWatch = engine.TimerHandle{}
	a.mu.Unlock()

	a.player.End(false)
	a.emit(event.EventPoseConditionsEnded)
}

// Close stops both watch loops and ends the pose immediately
func (a *Animator) Close() {
	a.StopWatchActivationConditions()
	a.mu.Lock()
	wasApplied := a.applied
	a.applied = false
	a.scheduler.Cancel(a.endWatch)
	a.endWatch = engine.TimerHandle{}
	a.mu.Unlock()

	a.player.End(true)
	if wasApplied {
		a.emit(event.EventPoseConditionsEnded)
	}
}

func (a *Animator) emit(t event.EventType) {
	if a.emitter == nil {
		return
	}
	poseID := ""
	if clip := a.player.Clip(); clip != nil {
		poseID = clip.ID
	}
	a.emitter.Emit(t, &event.AnimatorPayload{AnimatorID: a.opts.ID, PoseID: poseID})
}
