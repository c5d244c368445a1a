package audio

import (
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/rigkit/event"
)

// CueType identifies a short notification sound
type CueType int

const (
	CuePoseStart         CueType = iota // Rising two-note chime
	CuePoseEnd                          // Falling two-note chime
	CueConstraintApplied                // Short high blip
	CueConstraintEnded                  // Short low blip
	CueConflict                         // Harsh buzz
	cueTypeCount
)

var cueNames = [cueTypeCount]string{
	CuePoseStart:         "pose_start",
	CuePoseEnd:           "pose_end",
	CueConstraintApplied: "constraint_applied",
	CueConstraintEnded:   "constraint_ended",
	CueConflict:          "conflict",
}

func (c CueType) String() string {
	if c < 0 || c >= cueTypeCount {
		return "unknown"
	}
	return cueNames[c]
}

// cueNotes is the note table per cue
var cueNotes = [cueTypeCount][]note{
	CuePoseStart:         {{523.25, 80 * time.Millisecond, WaveSine}, {783.99, 120 * time.Millisecond, WaveSine}},
	CuePoseEnd:           {{783.99, 80 * time.Millisecond, WaveSine}, {523.25, 120 * time.Millisecond, WaveSine}},
	CueConstraintApplied: {{1046.5, 40 * time.Millisecond, WaveSquare}},
	CueConstraintEnded:   {{392.0, 40 * time.Millisecond, WaveSquare}},
	CueConflict:          {{110.0, 150 * time.Millisecond, WaveSaw}},
}

// CueDuration is the total length of a cue
func CueDuration(c CueType) time.Duration {
	if c < 0 || c >= cueTypeCount {
		return 0
	}
	var d time.Duration
	for _, n := range cueNotes[c] {
		d += n.duration
	}
	return d
}

// CueStreamer builds a fresh streamer for c at volume (linear, 0..1); nil for unknown cues
func CueStreamer(c CueType, rate beep.SampleRate, volume float64) beep.Streamer {
	if c < 0 || c >= cueTypeCount {
		return nil
	}
	return newVolume(sequence(rate, cueNotes[c]...), volume)
}

// CueForEvent maps a rig event to its cue
func CueForEvent(t event.EventType) (CueType, bool) {
	switch t {
	case event.EventPoseConditionsValidated:
		return CuePoseStart, true
	case event.EventPoseConditionsEnded:
		return CuePoseEnd, true
	case event.EventConstraintApplied:
		return CueConstraintApplied, true
	case event.EventConstraintEnded:
		return CueConstraintEnded, true
	case event.EventWriterConflict:
		return CueConflict, true
	}
	return 0, false
}
