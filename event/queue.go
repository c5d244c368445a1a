package event

import (
	"sync"

	"github.com/lixenwraith/rigkit/parameter"
)

// EventQueue is a bounded FIFO ring for rig events
// Thread-Safety:
//   - Push: any goroutine
//   - Consume: single consumer (tick loop)
//
// Overflow: oldest events overwritten when full
type EventQueue struct {
	mu     sync.Mutex
	events [parameter.EventQueueSize]RigEvent
	head   uint64 // Read index
	tail   uint64 // Write index
}

func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push appends an event, dropping the oldest one on overflow
func (eq *EventQueue) Push(ev RigEvent) {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	eq.events[eq.tail&parameter.EventBufferMask] = ev
	eq.tail++
	if eq.tail-eq.head > parameter.EventQueueSize {
		eq.head = eq.tail - parameter.EventQueueSize
	}
}

// Emit is Push with the event fields spelled out
func (eq *EventQueue) Emit(t EventType, payload any, frame int64) {
	eq.Push(RigEvent{Type: t, Payload: payload, Frame: frame})
}

// Consume returns all pending events in FIFO order and empties the queue
func (eq *EventQueue) Consume() []RigEvent {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	n := eq.tail - eq.head
	if n == 0 {
		return nil
	}
	result := make([]RigEvent, 0, n)
	for i := eq.head; i < eq.tail; i++ {
		idx := i & parameter.EventBufferMask
		result = append(result, eq.events[idx])
		eq.events[idx] = RigEvent{}
	}
	eq.head = eq.tail
	return result
}

// Len returns the pending event count
func (eq *EventQueue) Len() int {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	return int(eq.tail - eq.head)
}
