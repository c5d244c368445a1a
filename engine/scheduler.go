package engine

import (
	"sort"
	"sync"
	"time"
)

// TimerHandle identifies a scheduled continuation
// The zero value is "no timer"; cancelling it or a fired handle is a safe no-op
type TimerHandle struct {
	id uint64
}

// Valid reports whether the handle was ever issued
func (h TimerHandle) Valid() bool {
	return h.id != 0
}

type timer struct {
	id     uint64
	due    time.Time
	period time.Duration // 0 = one-shot
	fire   func() bool   // Repeating timers stop when fire returns false
}

// Scheduler runs delayed and periodic continuations on the tick loop
// Timers are deadlines against the Clock, fired by Tick in (due, creation) order
// A timer cancelled before or during a Tick never fires afterwards
type Scheduler struct {
	mu     sync.Mutex
	clock  Clock
	nextID uint64
	timers map[uint64]*timer
}

// NewScheduler creates a scheduler reading time from clock
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{
		clock:  clock,
		timers: make(map[uint64]*timer),
	}
}

// Clock returns the scheduler's time source
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// After schedules fn once, d from now
func (s *Scheduler) After(d time.Duration, fn func()) TimerHandle {
	return s.add(d, 0, func() bool {
		fn()
		return false
	})
}

// Every schedules fn every period until it returns false or the handle is cancelled
func (s *Scheduler) Every(period time.Duration, fn func() bool) TimerHandle {
	if period <= 0 {
		period = time.Millisecond
	}
	return s.add(period, period, fn)
}

func (s *Scheduler) add(d, period time.Duration, fn func() bool) TimerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t := &timer{
		id:     s.nextID,
		due:    s.clock.Now().Add(d),
		period: period,
		fire:   fn,
	}
	s.timers[t.id] = t
	return TimerHandle{id: t.id}
}

// Cancel removes a pending timer
// Returns false for zero, fired or already cancelled handles
func (s *Scheduler) Cancel(h TimerHandle) bool {
	if !h.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timers[h.id]; !ok {
		return false
	}
	delete(s.timers, h.id)
	return true
}

// Reschedule cancels *h and stores a fresh one-shot timer in its place
func (s *Scheduler) Reschedule(h *TimerHandle, d time.Duration, fn func()) {
	s.Cancel(*h)
	*h = s.After(d, fn)
}

// Active reports whether h is still pending
func (s *Scheduler) Active(h TimerHandle) bool {
	if !h.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[h.id]
	return ok
}

// Pending returns the number of pending timers
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Tick fires every timer due at the current clock time
// Callbacks run without the lock held and may schedule or cancel freely
// Returns the number of callbacks invoked
func (s *Scheduler) Tick() int {
	now := s.clock.Now()

	s.mu.Lock()
	due := make([]*timer, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.due.After(now) {
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	if len(due) == 0 {
		return 0
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id < due[j].id
		}
		return due[i].due.Before(due[j].due)
	})

	fired := 0
	for _, t := range due {
		s.mu.Lock()
		if _, ok := s.timers[t.id]; !ok {
			// Cancelled by an earlier callback in this tick
			s.mu.Unlock()
			continue
		}
		if t.period == 0 {
			delete(s.timers, t.id)
		}
		s.mu.Unlock()

		keep := t.fire()
		fired++

		if t.period == 0 {
			continue
		}
		s.mu.Lock()
		if _, ok := s.timers[t.id]; ok {
			if keep {
				t.due = now.Add(t.period)
			} else {
				delete(s.timers, t.id)
			}
		}
		s.mu.Unlock()
	}
	return fired
}

// Clear drops every pending timer
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = make(map[uint64]*timer)
}
