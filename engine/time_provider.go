package engine

import "time"

// Clock is the time source read by players, animators and the scheduler
type Clock interface {
	Now() time.Time
}

// TimeProvider reads the wall clock; readings carry the monotonic component
type TimeProvider struct{}

func NewTimeProvider() *TimeProvider {
	return &TimeProvider{}
}

func (*TimeProvider) Now() time.Time {
	return time.Now()
}

// Since returns the rig time elapsed on c since t
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}
