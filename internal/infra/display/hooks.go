// Package display runs shell hooks for fullscreen toggling and lifecycle events.
package display

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Hooks is a display surface that toggles fullscreen by running shell commands,
// e.g. "xdotool key F11" or a kiosk browser's remote-control call.
type Hooks struct {
	enter   []string
	exit    []string
	timeout time.Duration
	stdout  io.Writer
	stderr  io.Writer
}

// NewHooks creates a hook display. A non-positive timeout means no timeout.
func NewHooks(enter, exit []string, timeout time.Duration) *Hooks {
	return &Hooks{
		enter:   enter,
		exit:    exit,
		timeout: timeout,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// EnterFullscreen runs the enter_fullscreen commands.
func (h *Hooks) EnterFullscreen() error {
	return h.run(h.enter, "enter_fullscreen")
}

// ExitFullscreen runs the exit_fullscreen commands.
func (h *Hooks) ExitFullscreen() error {
	return h.run(h.exit, "exit_fullscreen")
}

func (h *Hooks) run(commands []string, stage string) error {
	if len(commands) == 0 {
		return errors.Newf("no %s hook configured", stage)
	}

	var result error
	for _, command := range commands {
		if err := h.runOne(command); err != nil {
			result = errors.CombineErrors(result, errors.Wrapf(err, "%s hook %q", stage, command))
		}
	}
	return result
}

func (h *Hooks) runOne(command string) error {
	ctx := context.Background()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	zlog.Debug().Msgf("display: executing hook: %s", command)
	// Use sh -c to allow shell features like redirection or pipes
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = h.stdout
	cmd.Stderr = h.stderr
	// Do not wait on children still holding the output pipes after a kill
	cmd.WaitDelay = time.Second
	return cmd.Run()
}

// RunLifecycle runs server lifecycle hooks, logging failures.
func RunLifecycle(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	h := NewHooks(nil, nil, 0)
	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		if err := h.runOne(hook); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
