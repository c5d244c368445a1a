package pose

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrNilPose       = errors.New("nil pose")
	ErrDuplicatePose = errors.New("pose already registered")
	ErrUnknownPose   = errors.New("pose not registered")
	ErrPoseInUse     = errors.New("pose still referenced")
)

// Loader supplies immutable poses by id
type Loader interface {
	LoadPose(ctx context.Context, id string) (*Pose, error)
}

type libraryEntry struct {
	pose  *Pose
	owner string
	refs  int
}

// Library holds registered poses by id for environment-level and per-user owners
// Stored poses are private deep copies and never mutated
type Library struct {
	mu      sync.RWMutex
	entries map[string]*libraryEntry
}

func NewLibrary() *Library {
	return &Library{entries: make(map[string]*libraryEntry)}
}

// Register stores a deep copy of p under p.ID for owner
func (l *Library) Register(owner string, p *Pose) error {
	if p == nil {
		return ErrNilPose
	}
	stored, err := p.Clone()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[p.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePose, p.ID)
	}
	l.entries[p.ID] = &libraryEntry{pose: stored, owner: owner}
	return nil
}

// Get returns a registered pose without taking a reference
func (l *Library) Get(id string) (*Pose, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[id]
	if !ok {
		return nil, false
	}
	return e.pose, true
}

// Acquire returns a registered pose and takes a reference on it
func (l *Library) Acquire(id string) (*Pose, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPose, id)
	}
	e.refs++
	return e.pose, nil
}

// Release drops a reference taken by Acquire
func (l *Library) Release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[id]; ok && e.refs > 0 {
		e.refs--
	}
}

// Refs returns the live reference count of a pose
func (l *Library) Refs(id string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.entries[id]; ok {
		return e.refs
	}
	return 0
}

// Unregister removes an unreferenced pose
func (l *Library) Unregister(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPose, id)
	}
	if e.refs > 0 {
		return fmt.Errorf("%w: %q has %d references", ErrPoseInUse, id, e.refs)
	}
	delete(l.entries, id)
	return nil
}

// RemoveOwner unregisters every unreferenced pose of owner
// Returns the number removed; referenced poses stay until released
func (l *Library) RemoveOwner(owner string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for id, e := range l.entries {
		if e.owner == owner && e.refs == 0 {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

// IDs returns the registered pose ids sorted
func (l *Library) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Load fetches ids from loader and registers them for owner
// Stops at the first failure; poses registered before it stay registered
func (l *Library) Load(ctx context.Context, loader Loader, owner string, ids ...string) error {
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := loader.LoadPose(ctx, id)
		if err != nil {
			return fmt.Errorf("load pose %q: %w", id, err)
		}
		if err := l.Register(owner, p); err != nil {
			return err
		}
	}
	return nil
}
