// Package session provides the session manager.
package session

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/slidebox/internal/app/filter"
	"github.com/osa030/slidebox/internal/app/notification"
	"github.com/osa030/slidebox/internal/app/playback"
	"github.com/osa030/slidebox/internal/domain/media"
	"github.com/osa030/slidebox/internal/infra/config"
	"github.com/osa030/slidebox/internal/infra/display"
	"github.com/osa030/slidebox/internal/infra/imagedir"
)

// ErrNoMediaDir is returned by LoadDir when no directory is given.
var ErrNoMediaDir = errors.New("no media dir")

// Options overrides collaborators, mainly for tests.
type Options struct {
	Clock   playback.Clock   // SystemClock if nil
	Display playback.Display // Config display hooks if nil
}

// Manager wires the media source, the playback controller and the notification fan-out.
type Manager struct {
	mu sync.Mutex

	// Configuration
	config *config.Config

	// Components
	playback     *playback.Controller
	notification *notification.Manager
	filterChain  *filter.Chain
	rescanner    *imagedir.Rescanner

	// Currently loaded directory
	dir string

	// Channels
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewManager creates a new session manager.
func NewManager(cfg *config.Config, opts Options) (*Manager, error) {
	ctx, cancel := context.WithCancel(context.Background())

	disp := opts.Display
	if disp == nil {
		disp = display.NewHooks(cfg.Display.EnterFullscreen, cfg.Display.ExitFullscreen, cfg.DisplayTimeout())
	}

	m := &Manager{
		config: cfg,
		playback: playback.NewController(playback.Config{
			Interval: cfg.Interval(),
			Presets:  cfg.Presets(),
			Clock:    opts.Clock,
			Display:  disp,
		}),
		notification: notification.NewManager(),
		filterChain:  filter.NewChain(),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}

	// Setup filters
	if err := m.setupFilters(); err != nil {
		cancel()
		return nil, errors.Wrap(err, "failed to setup filters")
	}

	return m, nil
}

// setupFilters builds the image filter chain from the enabled filters.
func (m *Manager) setupFilters() error {
	for name := range m.config.Filters {
		if _, ok := filter.New(name); !ok {
			return errors.Newf("unknown filter: %s", name)
		}
	}

	for _, name := range filter.Names() {
		if !m.config.IsFilterEnabled(name) {
			continue
		}
		f, _ := filter.New(name)
		if err := f.ValidateConfig(m.config.GetFilterSettings(name)); err != nil {
			return errors.Wrapf(err, "filter %s", name)
		}
		m.filterChain.Add(f)
		zlog.Info().Msgf("session: filter enabled: name=%s", name)
	}
	return nil
}

// Start loads the configured directory, optionally starts playback and
// begins forwarding controller events to subscribers.
func (m *Manager) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	go m.playbackLoop()

	var images []media.ImageRef
	if dir := m.config.Media.Dir; dir != "" {
		var err error
		images, _, err = m.load(dir)
		if err != nil {
			return errors.Wrap(err, "failed to load media dir")
		}
	} else {
		zlog.Info().Msg("session: no media dir configured, waiting for load")
	}

	if m.config.Slideshow.Autostart {
		if m.playback.Len() == 0 {
			zlog.Warn().Msg("session: autostart skipped, no images")
		} else {
			m.playback.Start()
			zlog.Info().Msgf("session: autostarted: images=%d interval=%v", m.playback.Len(), m.playback.Interval())
		}
	}

	if every := m.config.RescanInterval(); every > 0 && m.config.Media.Dir != "" {
		m.mu.Lock()
		m.rescanner = imagedir.NewRescanner(m.dir, m.config.Media.Recursive, every, images, func(images []media.ImageRef) {
			m.loadImages(images)
		})
		r := m.rescanner
		m.mu.Unlock()

		if err := r.Start(); err != nil {
			return errors.Wrap(err, "failed to start rescanner")
		}
	}

	return nil
}

// LoadDir scans dir and replaces the playlist. It returns the number of images shown.
func (m *Manager) LoadDir(dir string) (int, error) {
	if dir == "" {
		return 0, ErrNoMediaDir
	}
	images, shown, err := m.load(dir)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	r := m.rescanner
	m.mu.Unlock()
	if r != nil {
		r.Reset(dir, images)
	}
	return shown, nil
}

// load scans dir and hands the filtered result to the controller.
// It returns the unfiltered scan so the rescanner compares like with like.
func (m *Manager) load(dir string) ([]media.ImageRef, int, error) {
	images, err := imagedir.Scan(dir, m.config.Media.Recursive)
	if err != nil {
		return nil, 0, err
	}

	shown := m.loadImages(images)

	m.mu.Lock()
	m.dir = dir
	m.mu.Unlock()

	zlog.Info().Msgf("session: loaded media dir: dir=%s images=%d shown=%d", dir, len(images), shown)
	return images, shown, nil
}

// loadImages filters a scanned set and replaces the playlist. It returns the number shown.
func (m *Manager) loadImages(images []media.ImageRef) int {
	shown := m.filterChain.Apply(m.ctx, images)
	m.playback.Load(shown)
	return len(shown)
}

// Dir returns the directory the current playlist was loaded from.
func (m *Manager) Dir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dir
}

// Controller returns the playback controller.
func (m *Manager) Controller() *playback.Controller {
	return m.playback
}

// Notifications returns the notification manager.
func (m *Manager) Notifications() *notification.Manager {
	return m.notification
}

// Done returns a channel that is closed once the manager has shut down.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// playbackLoop forwards controller events until the controller or the manager closes.
func (m *Manager) playbackLoop() {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("session: playback loop panicked: %v", r)
			// Restart loop so subscribers keep receiving events
			zlog.Info().Msg("session: restarting playback loop")
			go m.playbackLoop()
		}
	}()

	events := m.playback.Events()
	for {
		select {
		case <-m.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			m.handlePlaybackEvent(event)
		}
	}
}

// handlePlaybackEvent logs an event and broadcasts it.
func (m *Manager) handlePlaybackEvent(event playback.Event) {
	if event.Type == playback.EventTick {
		zlog.Debug().Msgf("playback event: type=%s remaining=%d", event.Type, event.Remaining)
	} else {
		zlog.Info().Msgf("playback event: type=%s state=%s index=%d total=%d", event.Type, event.State, event.Index, event.Total)
	}
	m.notification.Publish(event)
}

// Close stops the rescanner, the controller and all subscriptions.
func (m *Manager) Close() {
	m.once.Do(func() {
		m.cancel()

		m.mu.Lock()
		r := m.rescanner
		m.mu.Unlock()
		if r != nil {
			r.Stop()
		}

		m.playback.Close()
		m.notification.Close()
		close(m.done)
	})
}
