package engine

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/rigkit/core"
)

// ClockScheduler drives Runtime.Update on a fixed tick
// Handles drift correction without busy-wait
type ClockScheduler struct {
	runtime      *Runtime
	tickInterval time.Duration

	nextTickDeadline time.Time
	tickCount        atomic.Uint64

	// Optional hook after each tick, e.g. render signal
	afterTick func()

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewClockScheduler creates a scheduler ticking runtime every tickInterval
func NewClockScheduler(runtime *Runtime, tickInterval time.Duration) *ClockScheduler {
	if tickInterval <= 0 {
		tickInterval = time.Millisecond
	}
	return &ClockScheduler{
		runtime:      runtime,
		tickInterval: tickInterval,
		stopChan:     make(chan struct{}),
	}
}

// OnTick registers a callback run after every tick, must be called before Start()
func (cs *ClockScheduler) OnTick(fn func()) {
	cs.afterTick = fn
}

// TickCount returns the number of ticks processed
func (cs *ClockScheduler) TickCount() uint64 {
	return cs.tickCount.Load()
}

// Start begins the scheduler loop
func (cs *ClockScheduler) Start() {
	if cs.running.CompareAndSwap(false, true) {
		cs.wg.Add(1)
		core.Go(cs.schedulerLoop)
	}
}

// Stop halts the scheduler loop and waits for the in-flight tick
func (cs *ClockScheduler) Stop() {
	cs.stopOnce.Do(func() {
		close(cs.stopChan)
		if cs.running.CompareAndSwap(true, false) {
			cs.wg.Wait()
		}
	})
}

func (cs *ClockScheduler) schedulerLoop() {
	defer cs.wg.Done()

	cs.nextTickDeadline = time.Now().Add(cs.tickInterval)

	timer := time.NewTimer(cs.tickInterval)
	defer timer.Stop()

	for {
		select {
		case <-cs.stopChan:
			return
		case <-timer.C:
		}

		cs.runtime.Update()
		cs.tickCount.Add(1)
		if cs.afterTick != nil {
			cs.afterTick()
		}

		now := time.Now()
		cs.nextTickDeadline = cs.nextTickDeadline.Add(cs.tickInterval)
		if now.Sub(cs.nextTickDeadline) > cs.tickInterval*2 {
			log.Printf("[Engine] tick loop behind by %v, resyncing", now.Sub(cs.nextTickDeadline))
			cs.nextTickDeadline = now.Add(cs.tickInterval)
		}

		sleep := cs.nextTickDeadline.Sub(now)
		if sleep < 0 {
			sleep = 0
		}
		timer.Reset(sleep)
	}
}
