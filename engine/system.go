package engine

// System is a per-tick unit of work
type System interface {
	Name() string
	Priority() int // Lower values run first
	Update()
}
