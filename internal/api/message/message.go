// Package message defines the status and event shapes exposed to presentation layers.
//
// The same shapes travel as google.protobuf.Struct over Connect and as JSON over SSE.
package message

import (
	"time"

	"github.com/osa030/slidebox/internal/app/notification"
	"github.com/osa030/slidebox/internal/app/playback"
	"github.com/osa030/slidebox/internal/domain/media"
)

// TypeSnapshot is the event type of the first message on a watch stream.
const TypeSnapshot = "snapshot"

// Image describes the image on screen.
type Image struct {
	ID       string `mapstructure:"id" json:"id"`
	Name     string `mapstructure:"name" json:"name"`
	MIMEType string `mapstructure:"mime_type" json:"mime_type"`
	Size     int64  `mapstructure:"size" json:"size"`
}

// Status is a controller snapshot.
type Status struct {
	State        string `mapstructure:"state" json:"state"`
	Index        int    `mapstructure:"index" json:"index"`
	Total        int    `mapstructure:"total" json:"total"`
	IntervalSec  int    `mapstructure:"interval_sec" json:"interval_sec"`
	RemainingSec int    `mapstructure:"remaining_sec" json:"remaining_sec"`
	PresetsSec   []int  `mapstructure:"presets_sec" json:"presets_sec"`
	Current      *Image `mapstructure:"current" json:"current"`
}

// Presets lists the selectable intervals.
type Presets struct {
	IntervalSec int   `mapstructure:"interval_sec" json:"interval_sec"`
	PresetsSec  []int `mapstructure:"presets_sec" json:"presets_sec"`
}

// Event is a single playback notification.
type Event struct {
	SequenceNo   uint64 `mapstructure:"sequence_no" json:"sequence_no"`
	Type         string `mapstructure:"type" json:"type"`
	State        string `mapstructure:"state" json:"state"`
	Index        int    `mapstructure:"index" json:"index"`
	Total        int    `mapstructure:"total" json:"total"`
	IntervalSec  int    `mapstructure:"interval_sec" json:"interval_sec"`
	RemainingSec int    `mapstructure:"remaining_sec" json:"remaining_sec"`
	Current      *Image `mapstructure:"current" json:"current"`
	At           string `mapstructure:"at" json:"at"`
}

// FromImage converts a media reference. It returns nil for nil.
func FromImage(img *media.ImageRef) *Image {
	if img == nil {
		return nil
	}
	return &Image{
		ID:       img.ID,
		Name:     img.Name,
		MIMEType: img.MIMEType,
		Size:     img.Size,
	}
}

// FromStatus converts a controller snapshot.
func FromStatus(s playback.Status) Status {
	presets := make([]int, 0, len(s.Presets))
	for _, p := range s.Presets {
		presets = append(presets, int(p/time.Second))
	}
	return Status{
		State:        s.State.String(),
		Index:        s.Index,
		Total:        s.Total,
		IntervalSec:  int(s.Interval / time.Second),
		RemainingSec: s.Remaining,
		PresetsSec:   presets,
		Current:      FromImage(s.Current),
	}
}

// FromNotification converts a delivered notification.
func FromNotification(n *notification.Notification) Event {
	ev := n.Event
	return Event{
		SequenceNo:   n.SequenceNo,
		Type:         ev.Type.String(),
		State:        ev.State.String(),
		Index:        ev.Index,
		Total:        ev.Total,
		IntervalSec:  int(ev.Interval / time.Second),
		RemainingSec: ev.Remaining,
		Current:      FromImage(ev.Current),
		At:           n.At.UTC().Format(time.RFC3339Nano),
	}
}

// Snapshot builds the first event of a watch stream from a status.
func Snapshot(seq uint64, s Status, at time.Time) Event {
	return Event{
		SequenceNo:   seq,
		Type:         TypeSnapshot,
		State:        s.State,
		Index:        s.Index,
		Total:        s.Total,
		IntervalSec:  s.IntervalSec,
		RemainingSec: s.RemainingSec,
		Current:      s.Current,
		At:           at.UTC().Format(time.RFC3339Nano),
	}
}

// Map returns the status as a structpb-compatible map.
func (s Status) Map() map[string]any {
	return map[string]any{
		"state":         s.State,
		"index":         s.Index,
		"total":         s.Total,
		"interval_sec":  s.IntervalSec,
		"remaining_sec": s.RemainingSec,
		"presets_sec":   ints(s.PresetsSec),
		"current":       s.Current.value(),
	}
}

// Map returns the presets as a structpb-compatible map.
func (p Presets) Map() map[string]any {
	return map[string]any{
		"interval_sec": p.IntervalSec,
		"presets_sec":  ints(p.PresetsSec),
	}
}

// Map returns the event as a structpb-compatible map.
func (e Event) Map() map[string]any {
	return map[string]any{
		"sequence_no":   e.SequenceNo,
		"type":          e.Type,
		"state":         e.State,
		"index":         e.Index,
		"total":         e.Total,
		"interval_sec":  e.IntervalSec,
		"remaining_sec": e.RemainingSec,
		"current":       e.Current.value(),
		"at":            e.At,
	}
}

func (i *Image) value() any {
	if i == nil {
		return nil
	}
	return map[string]any{
		"id":        i.ID,
		"name":      i.Name,
		"mime_type": i.MIMEType,
		"size":      i.Size,
	}
}

func ints(values []int) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
