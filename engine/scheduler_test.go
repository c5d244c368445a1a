package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() (*Scheduler, *MockTimeProvider) {
	clock := NewMockTimeProvider(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewScheduler(clock), clock
}

func TestSchedulerAfterFiresOnce(t *testing.T) {
	s, clock := newTestScheduler()
	fired := 0
	h := s.After(100*time.Millisecond, func() { fired++ })
	require.True(t, h.Valid())
	assert.True(t, s.Active(h))

	clock.Advance(99 * time.Millisecond)
	assert.Equal(t, 0, s.Tick())

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, s.Tick())
	assert.Equal(t, 1, fired)
	assert.False(t, s.Active(h))

	clock.Advance(time.Second)
	s.Tick()
	assert.Equal(t, 1, fired)
}

func TestSchedulerOrder(t *testing.T) {
	s, clock := newTestScheduler()
	var order []string
	s.After(20*time.Millisecond, func() { order = append(order, "late") })
	s.After(10*time.Millisecond, func() { order = append(order, "early") })
	s.After(10*time.Millisecond, func() { order = append(order, "early-second") })

	clock.Advance(50 * time.Millisecond)
	s.Tick()
	assert.Equal(t, []string{"early", "early-second", "late"}, order)
}

func TestSchedulerCancel(t *testing.T) {
	s, clock := newTestScheduler()
	fired := false
	h := s.After(10*time.Millisecond, func() { fired = true })

	assert.True(t, s.Cancel(h))
	assert.False(t, s.Cancel(h), "second cancel reports stale handle")
	assert.False(t, s.Cancel(TimerHandle{}), "zero handle")

	clock.Advance(time.Second)
	s.Tick()
	assert.False(t, fired)
}

func TestSchedulerCancelInsideCallback(t *testing.T) {
	s, clock := newTestScheduler()
	var victim TimerHandle
	victimFired := false

	s.After(10*time.Millisecond, func() { s.Cancel(victim) })
	victim = s.After(10*time.Millisecond, func() { victimFired = true })

	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, 1, s.Tick())
	assert.False(t, victimFired, "timer cancelled earlier in the same tick never fires")
}

func TestSchedulerEvery(t *testing.T) {
	s, clock := newTestScheduler()
	count := 0
	h := s.Every(100*time.Millisecond, func() bool {
		count++
		return count < 3
	})

	for range 5 {
		clock.Advance(100 * time.Millisecond)
		s.Tick()
	}
	assert.Equal(t, 3, count, "stops when the callback returns false")
	assert.False(t, s.Active(h))
}

func TestSchedulerEveryCancelSelf(t *testing.T) {
	s, clock := newTestScheduler()
	count := 0
	var h TimerHandle
	h = s.Every(10*time.Millisecond, func() bool {
		count++
		s.Cancel(h)
		return true
	})

	clock.Advance(10 * time.Millisecond)
	s.Tick()
	clock.Advance(10 * time.Millisecond)
	s.Tick()
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, s.Pending())
}

func TestSchedulerReschedule(t *testing.T) {
	s, clock := newTestScheduler()
	var h TimerHandle
	fired := ""

	s.Reschedule(&h, 10*time.Millisecond, func() { fired = "first" })
	first := h
	s.Reschedule(&h, 20*time.Millisecond, func() { fired = "second" })

	assert.False(t, s.Active(first))
	assert.Equal(t, 1, s.Pending())

	clock.Advance(20 * time.Millisecond)
	s.Tick()
	assert.Equal(t, "second", fired)
}

func TestSchedulerCallbackSchedules(t *testing.T) {
	s, clock := newTestScheduler()
	chained := false
	s.After(10*time.Millisecond, func() {
		s.After(0, func() { chained = true })
	})

	clock.Advance(10 * time.Millisecond)
	s.Tick()
	assert.False(t, chained, "timers created during a tick wait for the next one")
	s.Tick()
	assert.True(t, chained)

	s.After(time.Hour, func() {})
	s.Clear()
	assert.Equal(t, 0, s.Pending())
}
