package parameter

import "time"

// System Execution Priorities (lower runs first)
const (
	PriorityFrame   = 10  // Clears per-frame writer claims
	PriorityTracker = 100 // Applied constraints and simulated trackers own their bones first
	PriorityPose    = 200 // Pose layer writes remaining bones
	PrioritySolve   = 900 // Forward kinematics after every writer ran
)

// Timing defaults, overridable through config
const (
	TickInterval            = 16 * time.Millisecond
	WatchPeriod             = 100 * time.Millisecond
	StartTransitionDuration = 300 * time.Millisecond
	EndTransitionDuration   = 300 * time.Millisecond
)

// Event queue sizing; size must be a power of two
const (
	EventQueueSize  = 256
	EventBufferMask = EventQueueSize - 1
)

// Logging
const (
	LogDir      = "logs"
	MaxLogBytes = 10 * 1024 * 1024
)

// Store
const (
	DefaultKeyPrefix = "rigkit"
)
