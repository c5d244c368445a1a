package constraint

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/event"
	"github.com/lixenwraith/rigkit/skeleton"
	"github.com/lixenwraith/rigkit/status"
	"github.com/lixenwraith/rigkit/vmath"
)

type emitted struct {
	t  event.EventType
	id string
}

type recorder struct {
	events []emitted
}

func (r *recorder) Emit(t event.EventType, payload any) {
	p := payload.(*event.ConstraintPayload)
	r.events = append(r.events, emitted{t: t, id: p.ConstraintID})
}

func nodeConstraint(t *testing.T, id string, bone core.BoneID, should bool) *NodeBoneConstraint {
	t.Helper()
	nodes := NewNodeMap()
	nodes.Set(id, vmath.Identity())
	c, err := NewNodeBoneConstraint(id, bone, should, nodes, id)
	require.NoError(t, err)
	return c
}

func appliedCount(list []Constraint) int {
	n := 0
	for _, c := range list {
		if c.IsApplied() {
			n++
		}
	}
	return n
}

func TestRegisterAppliesFirstEligible(t *testing.T) {
	rec := &recorder{}
	reg := status.NewRegistry()
	svc := NewService(skeleton.NewTrackedSubskeleton(), WithEmitter(rec), WithStatus(reg))

	idle := nodeConstraint(t, "idle", 1, false)
	svc.RegisterConstraint(idle)
	assert.False(t, idle.IsApplied())
	assert.Nil(t, svc.Applied(1))

	a := nodeConstraint(t, "a", 1, true)
	svc.RegisterConstraint(a)
	assert.True(t, a.IsApplied())
	assert.Equal(t, []emitted{{event.EventConstraintApplied, "a"}}, rec.events)
	assert.Equal(t, int64(1), reg.Ints.Get(status.KeyConstraintApplied).Load())

	svc.RegisterConstraint(a) // duplicate ignored
	assert.Len(t, svc.Constraints(1), 2)
}

func TestRegisterDoesNotStealAppliedBone(t *testing.T) {
	svc := NewService(skeleton.NewTrackedSubskeleton())
	a := nodeConstraint(t, "a", 1, true)
	b := nodeConstraint(t, "b", 1, true)

	svc.RegisterConstraint(a)
	svc.RegisterConstraint(b)
	assert.True(t, a.IsApplied())
	assert.False(t, b.IsApplied(), "existing applied constraint wins until update")

	svc.UpdateConstraints()
	assert.False(t, a.IsApplied())
	assert.True(t, b.IsApplied(), "first pending eligible constraint takes the bone")
	assert.Same(t, b, svc.Applied(1))
}

func TestUnregisterPromotesNext(t *testing.T) {
	rec := &recorder{}
	tracker := skeleton.NewTrackedSubskeleton()
	svc := NewService(tracker, WithEmitter(rec))
	a := nodeConstraint(t, "a", 1, true)
	skip := nodeConstraint(t, "skip", 1, false)
	b := nodeConstraint(t, "b", 1, true)
	svc.RegisterConstraint(a)
	svc.RegisterConstraint(skip)
	svc.RegisterConstraint(b)

	svc.UnregisterConstraint(a)
	assert.False(t, a.IsApplied())
	assert.False(t, skip.IsApplied())
	assert.True(t, b.IsApplied())
	assert.Len(t, svc.Constraints(1), 2)
	assert.Equal(t, []emitted{
		{event.EventConstraintApplied, "a"},
		{event.EventConstraintEnded, "a"},
		{event.EventConstraintApplied, "b"},
	}, rec.events)

	svc.UnregisterConstraint(b)
	svc.UnregisterConstraint(skip)
	assert.Empty(t, svc.Bones())
	assert.Nil(t, tracker.Active(1), "tracker stack fully unwound")

	svc.UnregisterConstraint(b) // unknown is a logged no-op
}

func TestForceActivateAndDeactivate(t *testing.T) {
	svc := NewService(skeleton.NewTrackedSubskeleton())
	a := nodeConstraint(t, "a", 2, true)
	b := nodeConstraint(t, "b", 2, false)
	svc.RegisterConstraint(a)
	svc.RegisterConstraint(b)

	svc.ForceActivateConstraint(b)
	assert.True(t, b.ShouldBeApplied())
	assert.True(t, b.IsApplied())
	assert.False(t, a.IsApplied())

	svc.ForceDeactivateConstraint(b)
	assert.False(t, b.IsApplied())
	assert.True(t, a.IsApplied(), "remaining eligible constraint reclaims the bone")

	svc.ForceDeactivateConstraint(a)
	assert.Nil(t, svc.Applied(2))
}

func TestRegisterRejectsInvalid(t *testing.T) {
	svc := NewService(skeleton.NewTrackedSubskeleton())
	svc.RegisterConstraint(nil)
	assert.Empty(t, svc.Bones())
}

func TestUpdateKeepsSingleApplied(t *testing.T) {
	svc := NewService(skeleton.NewTrackedSubskeleton())
	a := nodeConstraint(t, "a", 1, true)
	svc.RegisterConstraint(a)

	svc.UpdateConstraintsFor(1)
	assert.True(t, a.IsApplied(), "applied constraint with no pending rival stays")

	a.SetShouldBeApplied(false)
	svc.UpdateConstraintsFor(1)
	assert.False(t, a.IsApplied())
}

func TestAtMostOneAppliedRandomized(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		tracker := skeleton.NewTrackedSubskeleton()
		svc := NewService(tracker)

		var registered []Constraint
		for step := 0; step < 200; step++ {
			bone := core.BoneID(rng.Intn(3))
			switch op := rng.Intn(6); op {
			case 0, 1:
				c := nodeConstraint(t, "", bone, rng.Intn(2) == 0)
				svc.RegisterConstraint(c)
				registered = append(registered, c)
			case 2:
				if len(registered) > 0 {
					i := rng.Intn(len(registered))
					svc.UnregisterConstraint(registered[i])
					registered = append(registered[:i], registered[i+1:]...)
				}
			case 3:
				if len(registered) > 0 {
					svc.ForceActivateConstraint(registered[rng.Intn(len(registered))])
				}
			case 4:
				if len(registered) > 0 {
					svc.ForceDeactivateConstraint(registered[rng.Intn(len(registered))])
				}
			case 5:
				if len(registered) > 0 {
					registered[rng.Intn(len(registered))].SetShouldBeApplied(rng.Intn(2) == 0)
				}
				svc.UpdateConstraints()
			}

			for b := core.BoneID(0); b < 3; b++ {
				list := svc.Constraints(b)
				require.LessOrEqual(t, appliedCount(list), 1, "seed %d step %d bone %d", seed, step, b)

				// Tracker carries exactly the applied constraint's controller
				if appliedCount(list) == 1 {
					require.NotNil(t, tracker.Active(b))
				} else {
					require.Nil(t, tracker.Active(b), "seed %d step %d bone %d", seed, step, b)
				}
			}
		}
	}
}

func TestRegisterAlreadyAppliedCountsOnce(t *testing.T) {
	rec := &recorder{}
	reg := status.NewRegistry()
	tracker := skeleton.NewTrackedSubskeleton()
	svc := NewService(tracker, WithEmitter(rec), WithStatus(reg))
	gauge := reg.Ints.Get(status.KeyConstraintApplied)

	c := nodeConstraint(t, "early", 2, true)
	require.True(t, c.Apply(tracker))

	svc.RegisterConstraint(c)
	assert.True(t, c.IsApplied())
	assert.Equal(t, int64(1), gauge.Load())
	assert.Empty(t, rec.events, "no applied event for a constraint that was already applied")

	svc.UpdateConstraints()
	assert.Equal(t, int64(1), gauge.Load())

	svc.UnregisterConstraint(c)
	assert.False(t, c.IsApplied())
	assert.Equal(t, int64(0), gauge.Load())
	assert.Equal(t, []emitted{{event.EventConstraintEnded, "early"}}, rec.events)
}

func TestGaugeTracksRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	reg := status.NewRegistry()
	svc := NewService(skeleton.NewTrackedSubskeleton(), WithStatus(reg))
	gauge := reg.Ints.Get(status.KeyConstraintApplied)

	var all []Constraint
	for i := range 6 {
		c := nodeConstraint(t, string(rune('a'+i)), core.BoneID(i%2), rng.Intn(2) == 0)
		all = append(all, c)
		svc.RegisterConstraint(c)
	}
	for range 200 {
		c := all[rng.Intn(len(all))]
		switch rng.Intn(3) {
		case 0:
			svc.ForceActivateConstraint(c)
		case 1:
			svc.ForceDeactivateConstraint(c)
		default:
			svc.UpdateConstraints()
		}
		assert.Equal(t, int64(appliedCount(all)), gauge.Load())
	}
}
