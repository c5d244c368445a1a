package audio

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/rigkit/event"
)

const sampleRate = beep.SampleRate(48000)

// Player receives cue streamers; *beep.Mixer satisfies it
type Player interface {
	Add(s ...beep.Streamer)
}

// CueManager plays rig event cues through a shared mixer
type CueManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	attached    Player // Replaces the speaker mixer when set
	volume      float64
	muted       bool
	initialized bool
	played      [cueTypeCount]int
}

// NewCueManager creates a manager at the given linear volume
func NewCueManager(volume float64) *CueManager {
	return &CueManager{mixer: &beep.Mixer{}, volume: volume}
}

// Initialize opens the speaker and starts the mixer; idempotent
func (cm *CueManager) Initialize() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(cm.mixer)
	cm.initialized = true
	return nil
}

// Attach routes cues to p without opening the speaker
func (cm *CueManager) Attach(p Player) {
	cm.mu.Lock()
	cm.attached = p
	cm.initialized = true
	cm.mu.Unlock()
}

// Cleanup clears pending cues and stops routing
func (cm *CueManager) Cleanup() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if !cm.initialized {
		return
	}
	if cm.attached == nil {
		speaker.Lock()
		cm.mixer.Clear()
		speaker.Unlock()
	}
	cm.attached = nil
	cm.initialized = false
}

// SetMuted suppresses cues without tearing down the speaker
func (cm *CueManager) SetMuted(muted bool) {
	cm.mu.Lock()
	cm.muted = muted
	cm.mu.Unlock()
}

// Play queues cue c; no-op before Initialize or while muted
func (cm *CueManager) Play(c CueType) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if !cm.initialized || cm.muted {
		return
	}
	s := CueStreamer(c, sampleRate, cm.volume)
	if s == nil {
		log.Printf("[Audio] unknown cue %d", c)
		return
	}
	if cm.attached != nil {
		cm.attached.Add(s)
	} else {
		speaker.Lock()
		cm.mixer.Add(s)
		speaker.Unlock()
	}
	cm.played[c]++
}

// Played returns how many times c was queued
func (cm *CueManager) Played(c CueType) int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if c < 0 || c >= cueTypeCount {
		return 0
	}
	return cm.played[c]
}

// CueHandler turns dispatched rig events into cues
type CueHandler struct {
	cues *CueManager
}

// NewCueHandler binds a handler to cm
func NewCueHandler(cm *CueManager) *CueHandler {
	return &CueHandler{cues: cm}
}

func (h *CueHandler) HandleEvent(ev event.RigEvent) {
	if c, ok := CueForEvent(ev.Type); ok {
		h.cues.Play(c)
	}
}

func (h *CueHandler) EventTypes() []event.EventType {
	return []event.EventType{
		event.EventPoseConditionsValidated,
		event.EventPoseConditionsEnded,
		event.EventConstraintApplied,
		event.EventConstraintEnded,
		event.EventWriterConflict,
	}
}
