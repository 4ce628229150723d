package playback

import (
	"time"

	"github.com/osa030/slidebox/internal/domain/media"
)

// EventType represents a playback event type.
type EventType int

const (
	EventAdvanced        EventType = iota // Schedule moved to the next image
	EventNavigated                        // Manual next/previous
	EventStateChanged                     // Start, stop, pause or resume
	EventIntervalChanged                  // Interval updated
	EventPlaylistLoaded                   // Playlist replaced
	EventTick                             // Countdown changed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventAdvanced:
		return "advanced"
	case EventNavigated:
		return "navigated"
	case EventStateChanged:
		return "state_changed"
	case EventIntervalChanged:
		return "interval_changed"
	case EventPlaylistLoaded:
		return "playlist_loaded"
	case EventTick:
		return "tick"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type      EventType
	State     State
	Index     int
	Total     int
	Current   *media.ImageRef // nil when the playlist is empty
	Interval  time.Duration
	Remaining int // Whole seconds until the next advance
}

// Status is a point-in-time snapshot of the controller.
type Status struct {
	State     State
	Index     int
	Total     int
	Current   *media.ImageRef
	Interval  time.Duration
	Remaining int
	Presets   []time.Duration
}
