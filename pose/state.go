package pose

// State is the player lifecycle phase
type State uint8

const (
	StateIdle State = iota
	StatePlaying
	StateEnding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePlaying:
		return "Playing"
	case StateEnding:
		return "Ending"
	default:
		return "Unknown"
	}
}
