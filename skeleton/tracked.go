package skeleton

import (
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/vmath"
)

// Anchor grounds a pose in space at one bone
type Anchor struct {
	Bone     core.BoneID
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Transform returns the anchor as a world transform
func (a Anchor) Transform() vmath.Transform {
	return vmath.Transform{Position: a.Position, Rotation: a.Rotation}
}

// Controller is a tracking source for one bone, evaluated every tick
type Controller interface {
	Bone() core.BoneID
	Evaluate() (vmath.Transform, error)
}

// SimulatedTracker holds a bone at a fixed anchor
type SimulatedTracker struct {
	anchor Anchor
}

func NewSimulatedTracker(anchor Anchor) *SimulatedTracker {
	return &SimulatedTracker{anchor: anchor}
}

func (s *SimulatedTracker) Bone() core.BoneID { return s.anchor.Bone }

func (s *SimulatedTracker) Evaluate() (vmath.Transform, error) {
	return s.anchor.Transform(), nil
}

// Anchor returns the simulated anchor
func (s *SimulatedTracker) Anchor() Anchor {
	return s.anchor
}

type simulation struct {
	tracker  *SimulatedTracker
	previous Controller // Base source restored on stop, nil if none
}

// TrackedSubskeleton owns the tracking sources of tracked bones
// Each bone has a base source plus a stack of priority overrides; the top of the stack wins
type TrackedSubskeleton struct {
	mu        sync.RWMutex
	base      map[core.BoneID]Controller
	overrides map[core.BoneID][]Controller
	simulated map[core.BoneID]*simulation
}

func NewTrackedSubskeleton() *TrackedSubskeleton {
	return &TrackedSubskeleton{
		base:      make(map[core.BoneID]Controller),
		overrides: make(map[core.BoneID][]Controller),
		simulated: make(map[core.BoneID]*simulation),
	}
}

// StartTrackerSimulation substitutes a simulated tracker for the anchor bone's base source
// Restarting on an already simulated bone moves the anchor
func (ts *TrackedSubskeleton) StartTrackerSimulation(anchor Anchor) {
	if !anchor.Bone.Valid() {
		return
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()

	tracker := NewSimulatedTracker(anchor)
	if sim, ok := ts.simulated[anchor.Bone]; ok {
		sim.tracker = tracker
		ts.base[anchor.Bone] = tracker
		return
	}
	ts.simulated[anchor.Bone] = &simulation{tracker: tracker, previous: ts.base[anchor.Bone]}
	ts.base[anchor.Bone] = tracker
}

// StopTrackerSimulation ends the simulation on the anchor bone and restores the prior base source
// Returns false when the bone was not simulated
func (ts *TrackedSubskeleton) StopTrackerSimulation(anchor Anchor) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	sim, ok := ts.simulated[anchor.Bone]
	if !ok {
		return false
	}
	delete(ts.simulated, anchor.Bone)

	// Base may have been replaced while simulating; only restore over our own tracker
	if ts.base[anchor.Bone] == Controller(sim.tracker) {
		if sim.previous != nil {
			ts.base[anchor.Bone] = sim.previous
		} else {
			delete(ts.base, anchor.Bone)
		}
	}
	return true
}

// Simulating reports whether the bone currently runs a simulated tracker
func (ts *TrackedSubskeleton) Simulating(bone core.BoneID) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	_, ok := ts.simulated[bone]
	return ok
}

// ReplaceController installs c for its bone
// Priority controllers stack above the current source; others replace the base source
func (ts *TrackedSubskeleton) ReplaceController(c Controller, isPriority bool) {
	if c == nil || !c.Bone().Valid() {
		return
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()

	bone := c.Bone()
	if isPriority {
		ts.overrides[bone] = append(ts.overrides[bone], c)
		return
	}
	ts.base[bone] = c
}

// RemoveController pops the bone's top priority controller, or clears its base source
// Returns false when the bone had no controller
func (ts *TrackedSubskeleton) RemoveController(bone core.BoneID) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if stack := ts.overrides[bone]; len(stack) > 0 {
		stack[len(stack)-1] = nil
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			delete(ts.overrides, bone)
		} else {
			ts.overrides[bone] = stack
		}
		return true
	}
	if _, ok := ts.base[bone]; ok {
		delete(ts.base, bone)
		delete(ts.simulated, bone)
		return true
	}
	return false
}

// Active returns the controller currently driving the bone
func (ts *TrackedSubskeleton) Active(bone core.BoneID) Controller {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.activeLocked(bone)
}

func (ts *TrackedSubskeleton) activeLocked(bone core.BoneID) Controller {
	if stack := ts.overrides[bone]; len(stack) > 0 {
		return stack[len(stack)-1]
	}
	return ts.base[bone]
}

// Bones returns every bone with an active controller, sorted
func (ts *TrackedSubskeleton) Bones() []core.BoneID {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	seen := make(map[core.BoneID]struct{}, len(ts.base)+len(ts.overrides))
	for b := range ts.base {
		seen[b] = struct{}{}
	}
	for b := range ts.overrides {
		seen[b] = struct{}{}
	}
	bones := make([]core.BoneID, 0, len(seen))
	for b := range seen {
		bones = append(bones, b)
	}
	sort.Slice(bones, func(i, j int) bool { return bones[i] < bones[j] })
	return bones
}

// Evaluate runs every active controller and reports its result to fn
// Controllers are evaluated without the lock held; a panicking controller reports an error
func (ts *TrackedSubskeleton) Evaluate(fn func(bone core.BoneID, t vmath.Transform, err error)) {
	bones := ts.Bones()
	active := make([]Controller, len(bones))
	ts.mu.RLock()
	for i, b := range bones {
		active[i] = ts.activeLocked(b)
	}
	ts.mu.RUnlock()

	for i, c := range active {
		if c == nil {
			continue
		}
		var t vmath.Transform
		err := core.Recover(func() error {
			var evalErr error
			t, evalErr = c.Evaluate()
			return evalErr
		})
		fn(bones[i], t, err)
	}
}
