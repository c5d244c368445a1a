package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/rigkit/asset"
	"github.com/lixenwraith/rigkit/config"
	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/engine"
	"github.com/lixenwraith/rigkit/vmath"
)

func newTestSandbox(t *testing.T) (*Sandbox, *engine.MockTimeProvider) {
	t.Helper()
	rf, err := asset.DefaultRig()
	require.NoError(t, err)
	clock := engine.NewMockTimeProvider(time.Unix(0, 0))
	sb, err := NewSandbox(rf, config.Default(), clock)
	require.NoError(t, err)
	return sb, clock
}

func tick(sb *Sandbox, clock *engine.MockTimeProvider, n int) {
	for i := 0; i < n; i++ {
		clock.Advance(16 * time.Millisecond)
		sb.Runtime().Update()
	}
}

func boneView(t *testing.T, f Frame, name string) BoneView {
	t.Helper()
	for _, b := range f.Bones {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("bone %q not in frame", name)
	return BoneView{}
}

func TestSandboxBindPose(t *testing.T) {
	sb, clock := newTestSandbox(t)
	tick(sb, clock, 1)

	f := sb.Snapshot()
	assert.Equal(t, int64(1), f.FrameNo)
	assert.Len(t, f.Bones, 19)
	assert.Empty(t, f.Applied)
	assert.Equal(t, "wave", f.Animator)
	assert.False(t, f.PoseOn)

	head := boneView(t, f, "head")
	assert.InDelta(t, 1.62, head.Position.Y(), 1e-9)
}

func TestSandboxNodeConstraintFollowsTarget(t *testing.T) {
	sb, clock := newTestSandbox(t)

	require.True(t, sb.ToggleConstraint(nodeConstraintID))
	tick(sb, clock, 3)

	f := sb.Snapshot()
	assert.Equal(t, []string{nodeConstraintID}, f.Applied)
	hand := boneView(t, f, "right_hand")
	assert.Equal(t, core.WriterTracker, hand.Writer)
	assert.True(t, vmath.Vec3NearlyEqual(f.Target, hand.Position, 1e-9))

	require.True(t, sb.ToggleConstraint(nodeConstraintID))
	tick(sb, clock, 1)
	f = sb.Snapshot()
	assert.Empty(t, f.Applied)
	assert.Equal(t, core.WriterNone, boneView(t, f, "right_hand").Writer)
}

func TestSandboxUnknownConstraint(t *testing.T) {
	sb, _ := newTestSandbox(t)
	assert.False(t, sb.ToggleConstraint("missing"))
}

func TestSandboxPoseRequest(t *testing.T) {
	sb, clock := newTestSandbox(t)

	sb.RequestPose()
	tick(sb, clock, 2)
	f := sb.Snapshot()
	assert.True(t, f.PoseOn)
	assert.Equal(t, core.WriterPose, boneView(t, f, "right_upper_arm").Writer)
	assert.Equal(t, int64(1), f.Metrics["pose.playing"])

	sb.EndPose()
	tick(sb, clock, 1)
	assert.False(t, sb.Snapshot().PoseOn)
}

func TestSandboxTriggerAnimator(t *testing.T) {
	sb, clock := newTestSandbox(t)

	sb.SelectNext()
	require.Equal(t, "sit", sb.Selected().ID())

	sb.RequestPose()
	tick(sb, clock, 1)
	f := sb.Snapshot()
	assert.True(t, f.PoseOn)
	assert.Equal(t, "on_trigger", f.Mode)

	// Anchored pose drives the hips through the tracker
	hips := boneView(t, f, "hips")
	assert.Equal(t, core.WriterTracker, hips.Writer)
	assert.InDelta(t, 0.5, hips.Position.Y(), 1e-9)

	sb.Close()
	tick(sb, clock, 1)
	assert.False(t, sb.Snapshot().PoseOn)
}

func TestHandleKey(t *testing.T) {
	sb, clock := newTestSandbox(t)

	assert.False(t, handleKey(sb, 'q'))
	assert.True(t, handleKey(sb, 'b'))
	tick(sb, clock, 1)
	assert.Equal(t, []string{boneConstraintID}, sb.Snapshot().Applied)

	assert.True(t, handleKey(sb, 'x'))
}

// fakeScreen records cells written by the viewer
type fakeScreen struct {
	w, h  int
	cells map[[2]int]rune
}

func newFakeScreen(w, h int) *fakeScreen {
	return &fakeScreen{w: w, h: h, cells: make(map[[2]int]rune)}
}

func (s *fakeScreen) SetContent(x, y int, r rune, _ []rune, _ tcell.Style) {
	s.cells[[2]int{x, y}] = r
}

func (s *fakeScreen) Size() (int, int) { return s.w, s.h }

func (s *fakeScreen) row(y int) string {
	var b strings.Builder
	for x := 0; x < s.w; x++ {
		r, ok := s.cells[[2]int{x, y}]
		if !ok {
			r = ' '
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func (s *fakeScreen) count(r rune) int {
	n := 0
	for _, c := range s.cells {
		if c == r {
			n++
		}
	}
	return n
}

func TestDraw(t *testing.T) {
	sb, clock := newTestSandbox(t)
	tick(sb, clock, 1)

	screen := newFakeScreen(100, 40)
	draw(screen, sb.Snapshot())

	assert.True(t, strings.HasPrefix(screen.row(0), "frame 1 | animator wave (on_request) off"))
	assert.Equal(t, "applied: none", screen.row(1))
	assert.Equal(t, helpLine, screen.row(39))
	assert.Equal(t, 1, screen.count('+'))
	assert.Greater(t, screen.count('o'), 5)

	for key := range screen.cells {
		assert.True(t, key[0] >= 0 && key[0] < 100 && key[1] >= 0 && key[1] < 40, "cell %v out of bounds", key)
	}
}

func TestDrawTinyScreen(t *testing.T) {
	screen := newFakeScreen(10, 3)
	draw(screen, Frame{})
	assert.Empty(t, screen.cells)
}

func TestSandboxPauseFreezesTarget(t *testing.T) {
	sb, clock := newTestSandbox(t)
	tick(sb, clock, 1)

	require.True(t, sb.TogglePause())
	before := sb.Snapshot().Target
	tick(sb, clock, 10)
	f := sb.Snapshot()
	assert.True(t, f.Paused)
	assert.Equal(t, before, f.Target)

	require.False(t, sb.TogglePause())
	tick(sb, clock, 10)
	assert.NotEqual(t, before, sb.Snapshot().Target)
}

func TestSandboxHoldsAnimatorPoses(t *testing.T) {
	sb, _ := newTestSandbox(t)
	lib := sb.Library()
	assert.Equal(t, []string{"arms_down", "sit", "wave"}, lib.IDs())
	assert.Equal(t, 1, lib.Refs("wave"))
	assert.Equal(t, 1, lib.Refs("sit"))
	assert.Equal(t, 0, lib.Refs("arms_down"))

	sb.Close()
	sb.Close()
	assert.Equal(t, 0, lib.Refs("wave"))
	assert.Equal(t, 0, lib.Refs("sit"))
}

func TestSandboxLoadsPosesFromStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rf, err := asset.DefaultRig()
	require.NoError(t, err)
	h, err := rf.BuildHierarchy()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := asset.NewRedisPoseStore(rdb, "sb", h)
	require.NoError(t, store.Put(context.Background(), asset.PoseSpec{
		ID:           "wave",
		Interpolable: true,
		Bones:        []asset.PoseBoneSpec{{Bone: "right_upper_arm", Euler: mgl64.Vec3{0, 0, 45}}},
	}))

	cfg := config.Default()
	cfg.Store.RedisAddr = mr.Addr()
	cfg.Store.KeyPrefix = "sb"
	clock := engine.NewMockTimeProvider(time.Unix(0, 0))
	sb, err := NewSandbox(rf, cfg, clock)
	require.NoError(t, err)
	defer sb.Close()

	wave, ok := sb.Library().Get("wave")
	require.True(t, ok)
	require.Len(t, wave.Bones, 1)
	assert.True(t, vmath.QuatNearlyEqual(vmath.Euler(0, 0, 45), wave.Bones[0].Rotation, 1e-9))

	// The animator plays the stored one-bone copy, not the file's three-bone wave
	sb.RequestPose()
	tick(sb, clock, 2)
	f := sb.Snapshot()
	require.True(t, f.PoseOn)
	assert.Equal(t, core.WriterPose, boneView(t, f, "right_upper_arm").Writer)
	assert.Equal(t, core.WriterNone, boneView(t, f, "right_lower_arm").Writer)
}

func TestSandboxStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	rf, err := asset.DefaultRig()
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Store.RedisAddr = addr
	_, err = NewSandbox(rf, cfg, engine.NewMockTimeProvider(time.Unix(0, 0)))
	assert.ErrorContains(t, err, "pose library")
}
