package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate_RequiredFields(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{Addr: ":8080"},
			Admin:  AdminConfig{Token: "test-admin-token"},
			Slideshow: SlideshowConfig{
				IntervalSec: 30,
				PresetsSec:  []int{30, 60},
			},
			Display: DisplayConfig{TimeoutMs: 1000},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing admin token",
			mutate:  func(c *Config) { c.Admin.Token = "" },
			wantErr: true,
			errMsg:  "Token",
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Slideshow.IntervalSec = 0 },
			wantErr: true,
			errMsg:  "IntervalSec",
		},
		{
			name:    "negative preset",
			mutate:  func(c *Config) { c.Slideshow.PresetsSec = []int{30, -1} },
			wantErr: true,
			errMsg:  "PresetsSec",
		},
		{
			name:    "no presets",
			mutate:  func(c *Config) { c.Slideshow.PresetsSec = nil },
			wantErr: true,
			errMsg:  "PresetsSec",
		},
		{
			name:    "interval too long for a duration",
			mutate:  func(c *Config) { c.Slideshow.IntervalSec = 18446744074 },
			wantErr: true,
			errMsg:  "IntervalSec",
		},
		{
			name:    "preset too long for a duration",
			mutate:  func(c *Config) { c.Slideshow.PresetsSec = []int{30, 9300000000} },
			wantErr: true,
			errMsg:  "PresetsSec",
		},
		{
			name:    "longest representable interval",
			mutate:  func(c *Config) { c.Slideshow.IntervalSec = 9223372036 },
			wantErr: false,
		},
		{
			name:    "negative rescan interval",
			mutate:  func(c *Config) { c.Media.RescanIntervalSec = -5 },
			wantErr: true,
			errMsg:  "RescanIntervalSec",
		},
		{
			name:    "display timeout too large",
			mutate:  func(c *Config) { c.Display.TimeoutMs = 120000 },
			wantErr: true,
			errMsg:  "TimeoutMs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err, "expected validation to fail")
				assert.Contains(t, err.Error(), tt.errMsg,
					"error message should mention the problematic field")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")
	t.Setenv("SLIDEBOX_MEDIA_DIR", "")

	cfg, err := Parse([]byte("admin:\n  token: secret\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Interval())
	assert.Equal(t, []int{30, 45, 60, 120, 300, 600}, cfg.Slideshow.PresetsSec)
	assert.Len(t, cfg.Presets(), 6)
	assert.False(t, cfg.Slideshow.Autostart)
	assert.Equal(t, time.Duration(0), cfg.RescanInterval())
	assert.Equal(t, 5*time.Second, cfg.DisplayTimeout())
	assert.False(t, cfg.Events.SSEDisabled)
}

func TestParse_FileValues(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")
	t.Setenv("SLIDEBOX_MEDIA_DIR", "")

	data := []byte(`
server:
  addr: "127.0.0.1:9000"
admin:
  token: secret
slideshow:
  interval_sec: 45
  presets_sec: [10, 45]
  autostart: true
media:
  dir: /srv/photos
  recursive: true
  rescan_interval_sec: 600
display:
  enter_fullscreen: ["xdotool key F11"]
  timeout_ms: 2000
events:
  sse_disabled: true
  cors_origins: ["http://localhost:3000"]
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 45*time.Second, cfg.Interval())
	assert.Equal(t, []time.Duration{10 * time.Second, 45 * time.Second}, cfg.Presets())
	assert.True(t, cfg.Slideshow.Autostart)
	assert.Equal(t, "/srv/photos", cfg.Media.Dir)
	assert.True(t, cfg.Media.Recursive)
	assert.Equal(t, 10*time.Minute, cfg.RescanInterval())
	assert.Equal(t, []string{"xdotool key F11"}, cfg.Display.EnterFullscreen)
	assert.Equal(t, 2*time.Second, cfg.DisplayTimeout())
	assert.True(t, cfg.Events.SSEDisabled)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Events.CORSOrigins)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "from-env")
	t.Setenv("SLIDEBOX_MEDIA_DIR", "/env/photos")

	cfg, err := Parse([]byte("admin:\n  token: from-file\nmedia:\n  dir: /file/photos\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Admin.Token)
	assert.Equal(t, "/env/photos", cfg.Media.Dir)
}

func TestParse_Errors(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")

	_, err := Parse([]byte("admin: [unclosed"))
	assert.Error(t, err)

	_, err = Parse([]byte("slideshow:\n  interval_sec: 30\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Token")
}

func TestLoad(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")

	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("admin:\n  token: secret\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Admin.Token)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Filters(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")
	t.Setenv("SLIDEBOX_MEDIA_DIR", "")

	data := []byte(`
admin:
  token: secret
filters:
  size_limit_filter:
    enabled: true
    settings:
      min_bytes: 1024
  name_pattern_filter:
    enabled: false
    settings:
      exclude: ["*_thumb.*"]
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.True(t, cfg.IsFilterEnabled("size_limit_filter"))
	assert.False(t, cfg.IsFilterEnabled("name_pattern_filter"))
	assert.False(t, cfg.IsFilterEnabled("unknown_filter"))

	assert.Equal(t, 1024, cfg.GetFilterSettings("size_limit_filter")["min_bytes"])
	assert.Equal(t, []any{"*_thumb.*"}, cfg.GetFilterSettings("name_pattern_filter")["exclude"])
	assert.Nil(t, cfg.GetFilterSettings("unknown_filter"))
}
