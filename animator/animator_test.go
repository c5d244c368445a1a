package animator

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/rigkit/condition"
	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/engine"
	"github.com/lixenwraith/rigkit/event"
	"github.com/lixenwraith/rigkit/pose"
	"github.com/lixenwraith/rigkit/skeleton"
)

const period = 100 * time.Millisecond

type recorder struct {
	events []event.EventType
}

func (r *recorder) Emit(t event.EventType, _ any) { r.events = append(r.events, t) }

type noBones struct{}

func (noBones) Bone(core.BoneID) (skeleton.Transformation, bool) { return skeleton.Transformation{}, false }

type fixture struct {
	clock     *engine.MockTimeProvider
	scheduler *engine.Scheduler
	player    *pose.Player
	events    *recorder
	cond      *bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := engine.NewMockTimeProvider(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	sched := engine.NewScheduler(clock)
	clip, err := pose.New("wave", []pose.BonePose{{Bone: 1, Rotation: mgl64.QuatIdent()}}, nil, true)
	require.NoError(t, err)
	cond := false
	return &fixture{
		clock:     clock,
		scheduler: sched,
		player:    pose.NewPlayer(clip, noBones{}, nil, sched, pose.WithDefaults(0, period)),
		events:    &recorder{},
		cond:      &cond,
	}
}

func (f *fixture) animator(opts Options) *Animator {
	opts.WatchPeriod = period
	return New(f.player, f.scheduler, f.events, opts, condition.Func(func() bool { return *f.cond }))
}

// step advances one watch period at a time, ticking the scheduler after each
func (f *fixture) step(n int) {
	for range n {
		f.clock.Advance(period)
		f.scheduler.Tick()
	}
}

func TestCheckConditions(t *testing.T) {
	f := newFixture(t)
	empty := New(f.player, f.scheduler, nil, Options{})
	assert.True(t, empty.CheckConditions())
	assert.Equal(t, "wave", empty.ID())

	a := f.animator(Options{})
	assert.False(t, a.CheckConditions())
	*f.cond = true
	assert.True(t, a.CheckConditions())

	a.AddCondition(condition.Func(func() bool { return false }))
	assert.False(t, a.CheckConditions())
}

func TestTryActivateOnRequest(t *testing.T) {
	f := newFixture(t)
	a := f.animator(Options{})

	assert.False(t, a.TryActivate(), "conditions false")
	assert.False(t, f.player.IsPlaying())

	*f.cond = true
	require.True(t, a.TryActivate())
	assert.True(t, a.IsApplied())
	assert.True(t, f.player.IsPlaying())
	assert.Equal(t, []event.EventType{event.EventPoseConditionsValidated}, f.events.events)

	assert.False(t, a.TryActivate(), "already applied")
}

func TestTriggerMode(t *testing.T) {
	f := newFixture(t)
	a := f.animator(Options{Mode: ActivationOnTrigger})
	*f.cond = true

	assert.False(t, a.TryActivate(), "waits for trigger")

	*f.cond = false
	assert.False(t, a.Trigger(), "armed but conditions false")

	a.StartWatchActivationConditions()
	*f.cond = true
	f.step(1)
	assert.True(t, a.IsApplied(), "armed trigger activates through the watch loop")

	a.EndApply()
	f.step(1)
	assert.False(t, a.IsApplied(), "trigger consumed by the previous activation")
}

func TestTryActivateWaitsForEndingPlayer(t *testing.T) {
	f := newFixture(t)
	f.player = pose.NewPlayer(f.player.Clip(), noBones{}, nil, f.scheduler, pose.WithDefaults(0, 3*period))
	a := f.animator(Options{})
	a.StartWatchActivationConditions()
	*f.cond = true
	f.step(1)
	require.True(t, a.IsApplied())

	a.EndApply()
	require.True(t, f.player.IsEnding())
	assert.False(t, a.TryActivate(), "player still ending")

	f.step(2)
	assert.False(t, a.IsApplied(), "watch loop waits for the end transition")
	assert.True(t, f.player.IsEnding())
	assert.Equal(t, []event.EventType{
		event.EventPoseConditionsValidated,
		event.EventPoseConditionsEnded,
	}, f.events.events)

	f.step(2)
	assert.True(t, a.IsApplied())
	assert.True(t, f.player.IsPlaying())
	assert.False(t, f.player.IsEnding())
	assert.Equal(t, event.EventPoseConditionsValidated, f.events.events[len(f.events.events)-1])
}

func TestWatchActivationIdempotent(t *testing.T) {
	f := newFixture(t)
	a := f.animator(Options{})

	a.StartWatchActivationConditions()
	a.StartWatchActivationConditions()
	assert.Equal(t, 1, f.scheduler.Pending())
	assert.True(t, a.Watching())

	f.step(3)
	assert.False(t, a.IsApplied())

	*f.cond = true
	f.step(1)
	assert.True(t, a.IsApplied())

	a.StopWatchActivationConditions()
	a.StopWatchActivationConditions()
	assert.False(t, a.Watching())
}

func TestStoppedWatchNeverActivates(t *testing.T) {
	f := newFixture(t)
	a := f.animator(Options{})
	a.StartWatchActivationConditions()
	a.StopWatchActivationConditions()

	*f.cond = true
	f.step(5)
	assert.False(t, a.IsApplied())
}

func TestEndOnConditionsRespectsMinDuration(t *testing.T) {
	f := newFixture(t)
	a := f.animator(Options{MinDuration: 5 * period})
	*f.cond = true
	require.True(t, a.TryActivate())

	*f.cond = false
	f.step(4)
	assert.True(t, a.IsApplied(), "min duration suppresses early termination")

	f.step(1)
	assert.False(t, a.IsApplied())
	assert.True(t, f.player.IsEnding(), "ending is interpolated")
	assert.Equal(t, event.EventPoseConditionsEnded, f.events.events[len(f.events.events)-1])

	f.step(1)
	assert.False(t, f.player.IsPlaying())
}

func TestEndOnMaxDuration(t *testing.T) {
	f := newFixture(t)
	a := f.animator(Options{MaxDuration: 3 * period, FixedDuration: period})
	*f.cond = true
	require.True(t, a.TryActivate())

	f.step(2)
	assert.True(t, a.IsApplied(), "fixed duration ignored when max is set")
	f.step(1)
	assert.False(t, a.IsApplied())
}

func TestEndOnFixedDuration(t *testing.T) {
	f := newFixture(t)
	a := f.animator(Options{FixedDuration: 2 * period})
	*f.cond = true
	require.True(t, a.TryActivate())

	f.step(1)
	assert.True(t, a.IsApplied())
	f.step(1)
	assert.False(t, a.IsApplied())
}

func TestCloseEndsImmediately(t *testing.T) {
	f := newFixture(t)
	a := f.animator(Options{})
	a.StartWatchActivationConditions()
	*f.cond = true
	require.True(t, a.TryActivate())

	a.Close()
	assert.False(t, a.IsApplied())
	assert.False(t, a.Watching())
	assert.False(t, f.player.IsPlaying())
	assert.Equal(t, 0, f.scheduler.Pending())
}
