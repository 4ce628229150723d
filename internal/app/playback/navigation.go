package playback

import zlog "github.com/rs/zerolog/log"

// Next shows the next image and restarts the schedule so the viewer gets a
// full interval. No-op on an empty playlist.
func (c *Controller) Next() {
	c.navigate(true)
}

// Previous shows the previous image and restarts the schedule.
// No-op on an empty playlist.
func (c *Controller) Previous() {
	c.navigate(false)
}

// RestartTimer re-anchors the schedule to now.
func (c *Controller) RestartTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restartLocked()
}

func (c *Controller) navigate(forward bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playlist.IsEmpty() {
		return
	}

	if forward {
		c.playlist.Next()
	} else {
		c.playlist.Previous()
	}
	c.restartLocked()

	zlog.Debug().Msgf("playback: navigated: forward=%v index=%d", forward, c.playlist.Index())
	c.sendEventLocked(EventNavigated)
}

// restartLocked gives the current image a full interval. A running schedule
// is stopped and started again; a paused one has its frozen time reset.
// Stopped stays stopped.
// Must be called with lock held.
func (c *Controller) restartLocked() {
	switch c.state {
	case StateRunning:
		c.stopLocked()
		c.startLocked()
	case StatePaused:
		c.frozen = c.settings.Current()
	}
}
