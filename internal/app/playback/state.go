// Package playback provides the slideshow playback controller: the advance
// schedule, the countdown and manual navigation.
package playback

// State represents the playback state.
type State int

const (
	StateStopped State = iota // No schedule armed (initial)
	StateRunning              // Advancing automatically
	StatePaused               // Schedule frozen, position and remaining time kept
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
