package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSystem struct {
	updates atomic.Int64
}

func (s *countingSystem) Name() string  { return "counter" }
func (s *countingSystem) Priority() int { return 0 }
func (s *countingSystem) Update()       { s.updates.Add(1) }

func TestClockSchedulerTicks(t *testing.T) {
	rt := NewRuntime(NewTimeProvider())
	sys := &countingSystem{}
	rt.AddSystem(sys)

	cs := NewClockScheduler(rt, 2*time.Millisecond)
	var hooks atomic.Int64
	cs.OnTick(func() { hooks.Add(1) })

	cs.Start()
	cs.Start() // second start is a no-op
	assert.Eventually(t, func() bool { return sys.updates.Load() >= 5 }, time.Second, time.Millisecond)

	cs.Stop()
	cs.Stop() // idempotent
	after := sys.updates.Load()
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, after, sys.updates.Load(), "no ticks after Stop")
	assert.Equal(t, uint64(after), cs.TickCount())
	assert.Equal(t, after, hooks.Load())
}

func TestClockSchedulerStopBeforeStart(t *testing.T) {
	cs := NewClockScheduler(NewRuntime(NewTimeProvider()), 0)
	cs.Stop()
	cs.Start()
	assert.Equal(t, uint64(0), cs.TickCount())
}
