package playback

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/slidebox/internal/app/interval"
	"github.com/osa030/slidebox/internal/domain/media"
	"github.com/osa030/slidebox/internal/domain/playlist"
)

// Errors
var (
	ErrNotRunning = errors.New("not running")
	ErrNotPaused  = errors.New("not paused")
)

const defaultEventBuffer = 64

// Config holds controller configuration.
type Config struct {
	Interval    time.Duration   // Initial interval (interval.Default if zero)
	Presets     []time.Duration // Selectable presets (interval.DefaultPresets if empty)
	Clock       Clock           // SystemClock if nil
	Display     Display         // No-op if nil
	EventBuffer int             // Event channel capacity
}

// Controller owns the playlist position, the advance schedule and the countdown.
// All mutations and timer callbacks are serialized by mu.
type Controller struct {
	mu sync.RWMutex

	playlist *playlist.Playlist
	settings *interval.Settings
	state    State

	// Schedule
	clock        Clock
	target       time.Time     // When the next advance fires (Running only)
	frozen       time.Duration // Remaining time kept while Paused
	advanceTimer Timer
	tickTimer    Timer
	generation   uint64 // Bumped on every re-arm; callbacks from older generations are dropped

	display Display

	// Events
	eventCh chan Event
	closed  bool

	// Context
	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a stopped controller with an empty playlist.
func NewController(config Config) *Controller {
	clock := config.Clock
	if clock == nil {
		clock = SystemClock
	}
	display := config.Display
	if display == nil {
		display = noopDisplay{}
	}
	buffer := config.EventBuffer
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		playlist: playlist.New(nil),
		settings: interval.NewSettings(config.Interval, config.Presets),
		state:    StateStopped,
		clock:    clock,
		display:  display,
		eventCh:  make(chan Event, buffer),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Events returns the event channel. It is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Start begins automatic advancing with a full interval.
// It is a no-op on an empty playlist. Calling it while running re-arms the schedule.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playlist.IsEmpty() {
		zlog.Debug().Msg("playback: start ignored, playlist is empty")
		return
	}

	c.startLocked()
	c.sendEventLocked(EventStateChanged)
}

// Stop cancels the schedule and resets the countdown to the full interval.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	c.stopLocked()
	if prev != StateStopped {
		c.sendEventLocked(EventStateChanged)
	}
}

// Pause freezes the schedule, keeping the position and the remaining time.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		return ErrNotRunning
	}

	remaining := c.target.Sub(c.clock.Now())
	if remaining <= 0 {
		remaining = c.settings.Current()
	}
	c.cancelTimersLocked()
	c.frozen = remaining
	c.target = time.Time{}
	c.state = StatePaused

	zlog.Debug().Msgf("playback: paused: index=%d remaining=%v", c.playlist.Index(), remaining)
	c.sendEventLocked(EventStateChanged)
	return nil
}

// Resume continues a paused slideshow. The first advance fires after the
// time that was remaining when paused, then every full interval.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePaused {
		return ErrNotPaused
	}

	first := c.frozen
	if first <= 0 {
		first = c.settings.Current()
	}
	c.frozen = 0
	c.state = StateRunning
	c.armLocked(c.clock.Now().Add(first))

	zlog.Debug().Msgf("playback: resumed: index=%d first_advance_in=%v", c.playlist.Index(), first)
	c.sendEventLocked(EventStateChanged)
	return nil
}

// SetInterval changes the advance period. While running the schedule is
// restarted so the new period applies from now with no carryover.
func (c *Controller) SetInterval(d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.settings.Set(d); err != nil {
		return err
	}

	c.restartLocked()
	zlog.Debug().Msgf("playback: interval set: interval=%v state=%s", d, c.state)
	c.sendEventLocked(EventIntervalChanged)
	return nil
}

// Load replaces the playlist and resets the position to the first image.
// A running schedule restarts so the first image gets a full interval;
// loading an empty set stops playback.
func (c *Controller) Load(images []media.ImageRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.playlist.Load(images)

	if c.playlist.IsEmpty() && c.state != StateStopped {
		c.stopLocked()
	} else {
		c.restartLocked()
	}

	zlog.Debug().Msgf("playback: playlist loaded: images=%d state=%s", c.playlist.Len(), c.state)
	c.sendEventLocked(EventPlaylistLoaded)
}

// GetState returns the current playback state.
func (c *Controller) GetState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Current returns the current image. ok is false when the playlist is empty.
func (c *Controller) Current() (media.ImageRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playlist.Current()
}

// Find returns the playlist image with the given ID.
func (c *Controller) Find(id string) (media.ImageRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playlist.Find(id)
}

// Index returns the current playlist position.
func (c *Controller) Index() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playlist.Index()
}

// Len returns the number of images in the playlist.
func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playlist.Len()
}

// Interval returns the active interval.
func (c *Controller) Interval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings.Current()
}

// Presets returns the selectable interval presets.
func (c *Controller) Presets() []time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings.Presets()
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ev := c.eventLocked(EventStateChanged)
	return Status{
		State:     ev.State,
		Index:     ev.Index,
		Total:     ev.Total,
		Current:   ev.Current,
		Interval:  ev.Interval,
		Remaining: ev.Remaining,
		Presets:   c.settings.Presets(),
	}
}

// Close stops playback and closes the event channel.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.stopLocked()
	c.closed = true
	c.cancel()
	close(c.eventCh)
}

// startLocked arms a fresh schedule at the full interval.
// Must be called with lock held.
func (c *Controller) startLocked() {
	if c.closed || c.playlist.IsEmpty() {
		return
	}
	c.cancelTimersLocked()
	c.frozen = 0
	c.state = StateRunning
	c.armLocked(c.clock.Now().Add(c.settings.Current()))
}

// stopLocked cancels every timer and returns to Stopped.
// Must be called with lock held.
func (c *Controller) stopLocked() {
	c.cancelTimersLocked()
	c.target = time.Time{}
	c.frozen = 0
	c.state = StateStopped
}

// armLocked schedules the next advance at target together with the countdown tick.
// Must be called with lock held and with no timers armed.
func (c *Controller) armLocked(target time.Time) {
	c.generation++
	gen := c.generation
	c.target = target

	c.advanceTimer = c.clock.AfterFunc(target.Sub(c.clock.Now()), func() {
		c.onAdvanceFired(gen)
	})
	c.scheduleTickLocked(gen)
}

// cancelTimersLocked stops both timers and invalidates callbacks already in flight.
// Must be called with lock held.
func (c *Controller) cancelTimersLocked() {
	if c.advanceTimer != nil {
		c.advanceTimer.Stop()
		c.advanceTimer = nil
	}
	if c.tickTimer != nil {
		c.tickTimer.Stop()
		c.tickTimer = nil
	}
	c.generation++
}

// activeTimersLocked returns how many timers are armed.
func (c *Controller) activeTimersLocked() int {
	n := 0
	if c.advanceTimer != nil {
		n++
	}
	if c.tickTimer != nil {
		n++
	}
	return n
}

// onAdvanceFired is called by the advance timer.
func (c *Controller) onAdvanceFired(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state != StateRunning {
		return
	}
	c.advanceTimer = nil
	c.cancelTimersLocked()

	// Anchor the next firing to the previous target so late callbacks do not accumulate drift.
	now := c.clock.Now()
	next := c.target.Add(c.settings.Current())
	if !next.After(now) {
		next = now.Add(c.settings.Current())
	}

	if c.playlist.IsEmpty() {
		zlog.Debug().Msg("playback: advance skipped, playlist is empty")
		c.armLocked(next)
		return
	}

	c.playlist.Next()
	c.armLocked(next)
	c.sendEventLocked(EventAdvanced)
}

// eventLocked builds an event from the current state.
// Must be called with lock held (either RLock or Lock).
func (c *Controller) eventLocked(t EventType) Event {
	ev := Event{
		Type:      t,
		State:     c.state,
		Index:     c.playlist.Index(),
		Total:     c.playlist.Len(),
		Interval:  c.settings.Current(),
		Remaining: c.remainingLocked(),
	}
	if img, ok := c.playlist.Current(); ok {
		ev.Current = &img
	}
	return ev
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(t EventType) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- c.eventLocked(t):
	case <-c.ctx.Done():
	default:
		// Channel full, drop event
	}
}
