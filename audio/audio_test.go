package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/rigkit/event"
)

// drain streams s to completion and returns the sample count
func drain(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

// TestOscillatorLength verifies the oscillator stops after its duration
func TestOscillatorLength(t *testing.T) {
	rate := beep.SampleRate(44100)
	for _, wave := range []WaveType{WaveSine, WaveSquare, WaveSaw, WaveNoise} {
		osc := NewOscillator(440, 100*time.Millisecond, wave, rate)
		if got, want := drain(osc), rate.N(100*time.Millisecond); got != want {
			t.Errorf("wave %d: streamed %d samples, want %d", wave, got, want)
		}
		if osc.Err() != nil {
			t.Errorf("wave %d: unexpected error %v", wave, osc.Err())
		}
	}
}

// TestOscillatorRange verifies samples stay within [-1, 1]
func TestOscillatorRange(t *testing.T) {
	rate := beep.SampleRate(44100)
	osc := NewOscillator(220, 50*time.Millisecond, WaveSaw, rate)

	samples := make([][2]float64, 200)
	n, ok := osc.Stream(samples)
	if !ok || n != 200 {
		t.Fatalf("Stream() = %d, %v; want 200, true", n, ok)
	}
	for i := 0; i < n; i++ {
		if samples[i][0] < -1 || samples[i][0] > 1 {
			t.Errorf("sample %d out of range: %f", i, samples[i][0])
		}
		if samples[i][0] != samples[i][1] {
			t.Errorf("sample %d channels differ", i)
		}
	}
}

// TestEnvelopeRamps verifies the envelope starts silent and attenuates the tail
func TestEnvelopeRamps(t *testing.T) {
	rate := beep.SampleRate(1000)
	osc := NewOscillator(0, 100*time.Millisecond, WaveSquare, rate) // Constant +1
	env := NewEnvelope(osc, 100*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, rate)

	samples := make([][2]float64, 100)
	n, _ := env.Stream(samples)
	if n != 100 {
		t.Fatalf("streamed %d samples, want 100", n)
	}
	if samples[0][0] != 0 {
		t.Errorf("first sample = %f, want 0", samples[0][0])
	}
	if samples[50][0] != 1 {
		t.Errorf("sustain sample = %f, want 1", samples[50][0])
	}
	if samples[99][0] >= samples[90][0] {
		t.Errorf("release not decreasing: %f >= %f", samples[99][0], samples[90][0])
	}
}

// TestCueStreamerLength verifies every cue streams its table duration
func TestCueStreamerLength(t *testing.T) {
	for c := CuePoseStart; c < cueTypeCount; c++ {
		s := CueStreamer(c, sampleRate, 0.5)
		if s == nil {
			t.Fatalf("cue %s: nil streamer", c)
		}
		if got, want := drain(s), sampleRate.N(CueDuration(c)); got != want {
			t.Errorf("cue %s: streamed %d samples, want %d", c, got, want)
		}
	}
	if CueStreamer(cueTypeCount, sampleRate, 1) != nil {
		t.Error("unknown cue should have no streamer")
	}
	if CueType(-1).String() != "unknown" {
		t.Error("negative cue should be unknown")
	}
}

type recordingPlayer struct {
	added int
}

func (p *recordingPlayer) Add(s ...beep.Streamer) { p.added += len(s) }

// TestCueHandler verifies events route to cues through an attached player
func TestCueHandler(t *testing.T) {
	cm := NewCueManager(0.5)
	h := NewCueHandler(cm)

	// Not initialized: dropped
	h.HandleEvent(event.RigEvent{Type: event.EventConstraintApplied})
	if cm.Played(CueConstraintApplied) != 0 {
		t.Fatal("cue played before initialization")
	}

	rec := &recordingPlayer{}
	cm.Attach(rec)
	h.HandleEvent(event.RigEvent{Type: event.EventConstraintApplied})
	h.HandleEvent(event.RigEvent{Type: event.EventPoseConditionsValidated})
	h.HandleEvent(event.RigEvent{Type: event.EventBoneResolveFailed})

	if rec.added != 2 {
		t.Errorf("player received %d streamers, want 2", rec.added)
	}
	if cm.Played(CueConstraintApplied) != 1 || cm.Played(CuePoseStart) != 1 {
		t.Error("played counters not updated")
	}

	cm.SetMuted(true)
	h.HandleEvent(event.RigEvent{Type: event.EventWriterConflict})
	if rec.added != 2 {
		t.Error("muted manager still played")
	}

	cm.Cleanup()
	cm.SetMuted(false)
	h.HandleEvent(event.RigEvent{Type: event.EventWriterConflict})
	if rec.added != 2 {
		t.Error("cleaned up manager still played")
	}
}

// TestCueHandlerRegisters verifies the handler plugs into the router
func TestCueHandlerRegisters(t *testing.T) {
	cm := NewCueManager(1)
	rec := &recordingPlayer{}
	cm.Attach(rec)

	q := event.NewEventQueue()
	r := event.NewRouter(q)
	r.Register(NewCueHandler(cm))

	q.Push(event.RigEvent{Type: event.EventPoseConditionsEnded})
	r.DispatchAll()

	if cm.Played(CuePoseEnd) != 1 {
		t.Errorf("pose end cue played %d times, want 1", cm.Played(CuePoseEnd))
	}
}
