package playback

import "time"

// Remaining returns the whole seconds left until the next advance.
// While stopped it is the full interval; while paused it is the frozen value.
func (c *Controller) Remaining() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.remainingLocked()
}

// remainingLocked derives the countdown from the advance target.
// Must be called with lock held (either RLock or Lock).
func (c *Controller) remainingLocked() int {
	full := ceilSeconds(c.settings.Current())

	switch c.state {
	case StateRunning:
		left := c.target.Sub(c.clock.Now())
		if left < 0 {
			// The advance is late; show a fresh cycle rather than a negative value.
			return full
		}
		return min(ceilSeconds(left), full)
	case StatePaused:
		return min(ceilSeconds(c.frozen), full)
	default:
		return full
	}
}

// scheduleTickLocked arms the next countdown tick on the next whole-second
// boundary before the advance target. The tick that would coincide with the
// advance is skipped; the advance resets the countdown itself.
// Must be called with lock held.
func (c *Controller) scheduleTickLocked(gen uint64) {
	remaining := c.target.Sub(c.clock.Now())
	wait := remaining % time.Second
	if wait <= 0 {
		wait = time.Second
	}
	if wait >= remaining {
		return
	}

	c.tickTimer = c.clock.AfterFunc(wait, func() {
		c.onTick(gen)
	})
}

// onTick is called by the countdown timer.
func (c *Controller) onTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state != StateRunning {
		return
	}
	c.tickTimer = nil
	c.sendEventLocked(EventTick)
	c.scheduleTickLocked(gen)
}
