package constraint

import (
	"log"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/event"
	"github.com/lixenwraith/rigkit/status"
)

// Emitter receives constraint notifications
type Emitter interface {
	Emit(t event.EventType, payload any)
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithEmitter routes applied/ended notifications to e
func WithEmitter(e Emitter) ServiceOption {
	return func(s *Service) { s.emitter = e }
}

// WithStatus publishes the applied-constraint gauge to reg
func WithStatus(reg *status.Registry) ServiceOption {
	return func(s *Service) { s.statApplied = reg.Ints.Get(status.KeyConstraintApplied) }
}

// Service owns every registered constraint per bone and keeps at most one applied per bone
// Tie-break is registration order: the first eligible constraint wins
type Service struct {
	mu      sync.Mutex
	tracker Tracker
	byBone  map[core.BoneID][]Constraint

	emitter     Emitter
	statApplied *atomic.Int64
}

// NewService creates a service applying constraints through tracker
func NewService(tracker Tracker, opts ...ServiceOption) *Service {
	s := &Service{
		tracker:     tracker,
		byBone:      make(map[core.BoneID][]Constraint),
		statApplied: new(atomic.Int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterConstraint adds c to its bone's list
// c is applied only if it should be and no other constraint on the bone is applied
func (s *Service) RegisterConstraint(c Constraint) {
	if c == nil {
		log.Printf("[Constraint] register: nil constraint ignored")
		return
	}
	bone := c.ConstrainedBone()
	if !bone.Valid() {
		log.Printf("[Constraint] register %s: constrained bone is none, ignored", c.ID())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byBone[bone]
	for _, existing := range list {
		if existing == c {
			log.Printf("[Constraint] register %s: already registered on %s", c.ID(), bone)
			return
		}
	}
	s.byBone[bone] = append(list, c)

	// Already applied elsewhere: adopt it into the gauge so a later end balances
	if c.IsApplied() {
		log.Printf("[Constraint] register %s: already applied", c.ID())
		s.statApplied.Add(1)
		return
	}
	if c.ShouldBeApplied() && appliedIn(list) == nil {
		s.apply(c)
	}
}

// UnregisterConstraint removes c; if it was applied the next eligible constraint is promoted
func (s *Service) UnregisterConstraint(c Constraint) {
	if c == nil {
		return
	}
	bone := c.ConstrainedBone()

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byBone[bone]
	idx := -1
	for i, existing := range list {
		if existing == c {
			idx = i
			break
		}
	}
	if idx < 0 {
		log.Printf("[Constraint] unregister %s: not registered", c.ID())
		return
	}

	list = append(list[:idx:idx], list[idx+1:]...)
	if len(list) == 0 {
		delete(s.byBone, bone)
	} else {
		s.byBone[bone] = list
	}

	if !c.IsApplied() {
		return
	}
	s.end(c)
	for _, next := range list {
		if next.ShouldBeApplied() {
			s.apply(next)
			return
		}
	}
}

// UpdateConstraints re-arbitrates every bone
func (s *Service) UpdateConstraints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, bone := range s.bonesLocked() {
		s.updateBone(bone)
	}
}

// UpdateConstraintsFor re-arbitrates one bone
func (s *Service) UpdateConstraintsFor(bone core.BoneID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateBone(bone)
}

// updateBone applies the first pending eligible constraint and ends every other applied one
// With no pending candidate the first applied constraint that should stay applied keeps the bone
func (s *Service) updateBone(bone core.BoneID) {
	list := s.byBone[bone]

	var chosen Constraint
	for _, c := range list {
		if c.ShouldBeApplied() && !c.IsApplied() {
			chosen = c
			break
		}
	}

	keep := chosen
	if keep == nil {
		for _, c := range list {
			if c.IsApplied() && c.ShouldBeApplied() {
				keep = c
				break
			}
		}
	}

	// End before apply so two constraints are never applied at once
	for _, c := range list {
		if c != keep && c.IsApplied() {
			s.end(c)
		}
	}
	if chosen != nil {
		s.apply(chosen)
	}
}

// ForceActivateConstraint marks c as wanting application and re-arbitrates its bone
func (s *Service) ForceActivateConstraint(c Constraint) {
	if c == nil {
		return
	}
	c.SetShouldBeApplied(true)
	s.UpdateConstraintsFor(c.ConstrainedBone())
}

// ForceDeactivateConstraint clears c's application wish and re-arbitrates its bone
func (s *Service) ForceDeactivateConstraint(c Constraint) {
	if c == nil {
		return
	}
	c.SetShouldBeApplied(false)
	s.UpdateConstraintsFor(c.ConstrainedBone())
}

// Constraints returns a copy of the bone's constraints in registration order
func (s *Service) Constraints(bone core.BoneID) []Constraint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Constraint(nil), s.byBone[bone]...)
}

// Applied returns the bone's applied constraint, nil if none
func (s *Service) Applied(bone core.BoneID) Constraint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appliedIn(s.byBone[bone])
}

// Bones returns every bone with registered constraints, sorted
func (s *Service) Bones() []core.BoneID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bonesLocked()
}

func (s *Service) bonesLocked() []core.BoneID {
	bones := make([]core.BoneID, 0, len(s.byBone))
	for b := range s.byBone {
		bones = append(bones, b)
	}
	sort.Slice(bones, func(i, j int) bool { return bones[i] < bones[j] })
	return bones
}

func (s *Service) apply(c Constraint) {
	if !c.Apply(s.tracker) {
		return
	}
	s.statApplied.Add(1)
	s.emit(event.EventConstraintApplied, c)
}

func (s *Service) end(c Constraint) {
	if !c.EndApply(s.tracker) {
		return
	}
	s.statApplied.Add(-1)
	s.emit(event.EventConstraintEnded, c)
}

func (s *Service) emit(t event.EventType, c Constraint) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(t, &event.ConstraintPayload{ConstraintID: c.ID(), Bone: c.ConstrainedBone()})
}

func appliedIn(list []Constraint) Constraint {
	for _, c := range list {
		if c.IsApplied() {
			return c
		}
	}
	return nil
}
