package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/slidebox/internal/app/notification"
	"github.com/osa030/slidebox/internal/app/playback"
	"github.com/osa030/slidebox/internal/infra/config"
	"github.com/osa030/slidebox/internal/infra/imagedir"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type nopDisplay struct{}

func (nopDisplay) EnterFullscreen() error { return nil }
func (nopDisplay) ExitFullscreen() error  { return nil }

type eventRecorder struct {
	mu    sync.Mutex
	types []playback.EventType
}

func (r *eventRecorder) Send(n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, n.Event.Type)
	return nil
}

func (r *eventRecorder) has(t playback.EventType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.types {
		if got == t {
			return true
		}
	}
	return false
}

func imageDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), pngHeader, 0o600))
	}
	return dir
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Addr: ":0"},
		Admin:  config.AdminConfig{Token: "secret"},
		Slideshow: config.SlideshowConfig{
			IntervalSec: 30,
			PresetsSec:  []int{30, 60},
		},
		Media:   config.MediaConfig{Dir: dir},
		Display: config.DisplayConfig{TimeoutMs: 1000},
	}
}

func newTestManager(t *testing.T, cfg *config.Config) *Manager {
	t.Helper()
	m, err := NewManager(cfg, Options{Display: nopDisplay{}})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestManager_StartLoadsDir(t *testing.T) {
	dir := imageDir(t, "a.png", "b.png")
	m := newTestManager(t, testConfig(dir))

	require.NoError(t, m.Start(t.Context()))

	assert.Equal(t, 2, m.Controller().Len())
	assert.Equal(t, playback.StateStopped, m.Controller().GetState())
	assert.Equal(t, dir, m.Dir())
	assert.Equal(t, 30*time.Second, m.Controller().Interval())
	assert.Equal(t, []time.Duration{30 * time.Second, 60 * time.Second}, m.Controller().Presets())
}

func TestManager_Autostart(t *testing.T) {
	cfg := testConfig(imageDir(t, "a.png"))
	cfg.Slideshow.Autostart = true
	m := newTestManager(t, cfg)

	require.NoError(t, m.Start(t.Context()))
	assert.Equal(t, playback.StateRunning, m.Controller().GetState())
}

func TestManager_AutostartWithoutImages(t *testing.T) {
	cfg := testConfig(imageDir(t))
	cfg.Slideshow.Autostart = true
	m := newTestManager(t, cfg)

	require.NoError(t, m.Start(t.Context()))
	assert.Equal(t, playback.StateStopped, m.Controller().GetState())
}

func TestManager_StartWithoutDir(t *testing.T) {
	m := newTestManager(t, testConfig(""))

	require.NoError(t, m.Start(t.Context()))
	assert.Equal(t, 0, m.Controller().Len())
	assert.Empty(t, m.Dir())
}

func TestManager_StartMissingDir(t *testing.T) {
	m := newTestManager(t, testConfig(filepath.Join(t.TempDir(), "missing")))

	assert.Error(t, m.Start(t.Context()))
}

func TestManager_LoadDir(t *testing.T) {
	m := newTestManager(t, testConfig(imageDir(t, "a.png")))
	require.NoError(t, m.Start(t.Context()))

	rec := &eventRecorder{}
	m.Notifications().Subscribe(rec)

	other := imageDir(t, "x.png", "y.png", "z.png")
	n, err := m.LoadDir(other)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, m.Controller().Len())
	assert.Equal(t, other, m.Dir())

	assert.Eventually(t, func() bool {
		return rec.has(playback.EventPlaylistLoaded)
	}, time.Second, 10*time.Millisecond)

	_, err = m.LoadDir("")
	assert.ErrorIs(t, err, ErrNoMediaDir)

	_, err = m.LoadDir(filepath.Join(other, "missing"))
	assert.Error(t, err)
	assert.Equal(t, 3, m.Controller().Len(), "failed load keeps the playlist")
}

func TestManager_ForwardsControllerEvents(t *testing.T) {
	m := newTestManager(t, testConfig(imageDir(t, "a.png", "b.png")))
	require.NoError(t, m.Start(t.Context()))

	rec := &eventRecorder{}
	m.Notifications().Subscribe(rec)

	m.Controller().Start()
	m.Controller().Next()

	assert.Eventually(t, func() bool {
		return rec.has(playback.EventStateChanged) && rec.has(playback.EventNavigated)
	}, time.Second, 10*time.Millisecond)
}

func TestManager_Rescan(t *testing.T) {
	dir := imageDir(t, "a.png")
	cfg := testConfig(dir)
	cfg.Media.RescanIntervalSec = 1
	m := newTestManager(t, cfg)
	require.NoError(t, m.Start(t.Context()))
	require.Equal(t, 1, m.Controller().Len())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), pngHeader, 0o600))

	assert.Eventually(t, func() bool {
		return m.Controller().Len() == 2
	}, 5*time.Second, 50*time.Millisecond)
}

func TestManager_Close(t *testing.T) {
	m, err := NewManager(testConfig(imageDir(t, "a.png")), Options{Display: nopDisplay{}})
	require.NoError(t, err)
	require.NoError(t, m.Start(t.Context()))
	m.Controller().Start()

	m.Close()
	m.Close()

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel should be closed")
	}
	assert.Equal(t, playback.StateStopped, m.Controller().GetState())
	assert.Equal(t, 0, m.Notifications().SubscriberCount())
}

func TestManager_Filters(t *testing.T) {
	dir := imageDir(t, "a.png", "a_thumb.png", "b.png")
	cfg := testConfig(dir)
	cfg.Filters = map[string]config.FilterConfig{
		"name_pattern_filter": {
			Enabled:  true,
			Settings: map[string]any{"exclude": []any{"*_thumb.*"}},
		},
		"size_limit_filter": {Enabled: false},
	}
	m := newTestManager(t, cfg)
	require.NoError(t, m.Start(t.Context()))

	assert.Equal(t, 2, m.Controller().Len())
	for _, name := range []string{"a.png", "b.png"} {
		_, found := m.Controller().Find(imagedir.ImageID(filepath.Join(dir, name)))
		assert.True(t, found, name)
	}
	_, found := m.Controller().Find(imagedir.ImageID(filepath.Join(dir, "a_thumb.png")))
	assert.False(t, found)

	n, err := m.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewManager_InvalidFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters map[string]config.FilterConfig
	}{
		{
			name:    "unknown filter",
			filters: map[string]config.FilterConfig{"nope_filter": {Enabled: true}},
		},
		{
			name: "invalid settings",
			filters: map[string]config.FilterConfig{
				"size_limit_filter": {Enabled: true, Settings: map[string]any{"min_bytes": 10, "max_bytes": 5}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("")
			cfg.Filters = tt.filters

			_, err := NewManager(cfg, Options{Display: nopDisplay{}})
			assert.Error(t, err)
		})
	}
}
