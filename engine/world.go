package engine

import (
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/rigkit/event"
	"github.com/lixenwraith/rigkit/status"
)

// Runtime owns the per-tick loop state: clock, timers, events, metrics and systems
// Every mutation of rig state happens inside Update, on one goroutine at a time
type Runtime struct {
	mu sync.RWMutex

	Clock     Clock
	Scheduler *Scheduler
	Events    *event.EventQueue
	Status    *status.Registry

	router  *event.Router
	systems []System
	frame   atomic.Int64

	updateMutex sync.Mutex
	statTicks   *atomic.Int64
}

// NewRuntime creates a runtime reading time from clock
func NewRuntime(clock Clock) *Runtime {
	queue := event.NewEventQueue()
	reg := status.NewRegistry()
	return &Runtime{
		Clock:     clock,
		Scheduler: NewScheduler(clock),
		Events:    queue,
		Status:    reg,
		router:    event.NewRouter(queue),
		statTicks: reg.Ints.Get(status.KeyTicks),
	}
}

// AddSystem adds a system and keeps the list sorted by priority
// Systems with equal priority keep insertion order
func (r *Runtime) AddSystem(system System) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.systems = append(r.systems, system)
	for i := len(r.systems) - 1; i > 0; i-- {
		if r.systems[i-1].Priority() <= r.systems[i].Priority() {
			break
		}
		r.systems[i-1], r.systems[i] = r.systems[i], r.systems[i-1]
	}
}

// Systems returns a copy of all registered systems
func (r *Runtime) Systems() []System {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]System, len(r.systems))
	copy(result, r.systems)
	return result
}

// RegisterHandler routes queued events to handler at the end of every tick
func (r *Runtime) RegisterHandler(handler event.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.router.Register(handler)
}

// Frame returns the current frame index
func (r *Runtime) Frame() int64 {
	return r.frame.Load()
}

// Emit queues an event stamped with the current frame
func (r *Runtime) Emit(t event.EventType, payload any) {
	r.Events.Emit(t, payload, r.frame.Load())
}

// RunSafe executes a function while holding the update lock
// Input goroutines use it to mutate rig state between ticks
func (r *Runtime) RunSafe(fn func()) {
	r.updateMutex.Lock()
	defer r.updateMutex.Unlock()
	fn()
}

// Update runs one tick
func (r *Runtime) Update() {
	r.RunSafe(r.UpdateLocked)
}

// UpdateLocked runs one tick assuming the caller holds the update lock
// Order: timers, systems by priority, event dispatch
func (r *Runtime) UpdateLocked() {
	r.frame.Add(1)
	r.statTicks.Add(1)

	r.Scheduler.Tick()

	for _, system := range r.Systems() {
		system.Update()
	}

	r.mu.RLock()
	router := r.router
	r.mu.RUnlock()
	router.DispatchAll()
}
