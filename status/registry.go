package status

import "sync/atomic"

// Metric keys shared by engine and systems
const (
	KeyTicks             = "engine.ticks"
	KeyConflicts         = "rig.conflicts"
	KeyTrackerErrors     = "tracker.errors"
	KeyPoseErrors        = "pose.errors"
	KeyConstraintApplied = "constraint.applied"
	KeyPosesPlaying      = "pose.playing"
	KeyPaused            = "rig.paused"
)

// Registry is the central metrics facade
// Systems cache pointers during init; Update loops write directly to atomics
type Registry struct {
	Bools *MetricMap[atomic.Bool]
	Ints  *MetricMap[atomic.Int64]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools: NewMetricMap[atomic.Bool](),
		Ints:  NewMetricMap[atomic.Int64](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count()
}

// Snapshot copies every integer metric in key order
func (r *Registry) Snapshot() map[string]int64 {
	out := make(map[string]int64, r.Ints.Count())
	r.Ints.Range(func(key string, ptr *atomic.Int64) {
		out[key] = ptr.Load()
	})
	return out
}
