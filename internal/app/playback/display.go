package playback

import zlog "github.com/rs/zerolog/log"

// Display is the surface the slideshow is shown on.
// Both calls are best effort; failures are logged and otherwise ignored.
type Display interface {
	EnterFullscreen() error
	ExitFullscreen() error
}

type noopDisplay struct{}

func (noopDisplay) EnterFullscreen() error { return nil }
func (noopDisplay) ExitFullscreen() error  { return nil }

// EnterFullscreen asks the display to go fullscreen.
func (c *Controller) EnterFullscreen() {
	if err := c.display.EnterFullscreen(); err != nil {
		zlog.Debug().Err(err).Msg("playback: enter fullscreen failed")
	}
}

// ExitFullscreen asks the display to leave fullscreen.
func (c *Controller) ExitFullscreen() {
	if err := c.display.ExitFullscreen(); err != nil {
		zlog.Debug().Err(err).Msg("playback: exit fullscreen failed")
	}
}
