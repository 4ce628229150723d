// Package interval holds the active slide interval and its selectable presets.
package interval

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrInvalid is returned for non-positive intervals.
var ErrInvalid = errors.New("interval must be positive")

// Default is the interval used when none is configured.
const Default = 30 * time.Second

// MaxSeconds is the largest whole-second interval a time.Duration can hold.
const MaxSeconds = math.MaxInt64 / int64(time.Second)

// DefaultPresets returns the presets offered to presentation layers.
func DefaultPresets() []time.Duration {
	return []time.Duration{
		30 * time.Second,
		45 * time.Second,
		60 * time.Second,
		120 * time.Second,
		300 * time.Second,
		600 * time.Second,
	}
}

// Settings is the active interval plus the preset list.
// Not safe for concurrent use.
type Settings struct {
	current time.Duration
	presets []time.Duration
}

// NewSettings creates settings with the given interval and presets.
// A non-positive interval falls back to Default; empty presets fall back to DefaultPresets.
func NewSettings(current time.Duration, presets []time.Duration) *Settings {
	if current <= 0 {
		current = Default
	}
	filtered := make([]time.Duration, 0, len(presets))
	for _, p := range presets {
		if p > 0 {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		filtered = DefaultPresets()
	}
	slices.Sort(filtered)
	return &Settings{
		current: current,
		presets: slices.Compact(filtered),
	}
}

// Current returns the active interval.
func (s *Settings) Current() time.Duration {
	return s.current
}

// Set updates the active interval. Any positive value is accepted, presets or not.
func (s *Settings) Set(d time.Duration) error {
	if d <= 0 {
		return errors.Wrapf(ErrInvalid, "got %v", d)
	}
	s.current = d
	return nil
}

// Presets returns a copy of the presets in ascending order.
func (s *Settings) Presets() []time.Duration {
	return slices.Clone(s.presets)
}

// IsPreset reports whether d is one of the presets.
func (s *Settings) IsPreset(d time.Duration) bool {
	return slices.Contains(s.presets, d)
}

// Parse parses an interval given either as whole seconds ("45") or as a
// Go duration string ("45s", "2m").
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.Wrap(ErrInvalid, "empty interval")
	}

	var d time.Duration
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		if secs > MaxSeconds {
			return 0, errors.Wrapf(ErrInvalid, "%d seconds is too long", secs)
		}
		d = time.Duration(secs) * time.Second
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, errors.Wrapf(ErrInvalid, "%s seconds is out of range", s)
	} else {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to parse interval %q", s)
		}
		d = parsed
	}

	if d <= 0 {
		return 0, errors.Wrapf(ErrInvalid, "got %v", d)
	}
	return d, nil
}

// Seconds converts durations to whole seconds.
func Seconds(ds []time.Duration) []int {
	result := make([]int, len(ds))
	for i, d := range ds {
		result[i] = int(d / time.Second)
	}
	return result
}

// FromSeconds converts whole seconds to durations.
// Values above MaxSeconds saturate instead of wrapping.
func FromSeconds(secs []int) []time.Duration {
	result := make([]time.Duration, len(secs))
	for i, s := range secs {
		result[i] = FromSecond(s)
	}
	return result
}

// FromSecond converts whole seconds to a duration, saturating at MaxSeconds.
func FromSecond(s int) time.Duration {
	switch {
	case int64(s) > MaxSeconds:
		return time.Duration(MaxSeconds) * time.Second
	case int64(s) < -MaxSeconds:
		return -time.Duration(MaxSeconds) * time.Second
	default:
		return time.Duration(s) * time.Second
	}
}
