// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/slidebox/internal/app/interval"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig            `yaml:"server"`
	Admin     AdminConfig             `yaml:"admin"`
	Slideshow SlideshowConfig         `yaml:"slideshow"`
	Media     MediaConfig             `yaml:"media"`
	Display   DisplayConfig           `yaml:"display"`
	Events    EventsConfig            `yaml:"events"`
	Filters   map[string]FilterConfig `yaml:"filters"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8080" validate:"required"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// AdminConfig represents control API authentication.
type AdminConfig struct {
	Token string `yaml:"token" validate:"required"`
}

// SlideshowConfig represents playback configuration.
type SlideshowConfig struct {
	IntervalSec int   `yaml:"interval_sec" default:"30" validate:"gt=0,lte=9223372036"`
	PresetsSec  []int `yaml:"presets_sec" default:"[30,45,60,120,300,600]" validate:"min=1,dive,gt=0,lte=9223372036"`
	Autostart   bool  `yaml:"autostart"`
}

// MediaConfig represents the image source configuration.
type MediaConfig struct {
	Dir               string `yaml:"dir"`
	Recursive         bool   `yaml:"recursive"`
	RescanIntervalSec int    `yaml:"rescan_interval_sec" validate:"gte=0"`
}

// DisplayConfig represents fullscreen hook commands.
type DisplayConfig struct {
	EnterFullscreen []string `yaml:"enter_fullscreen"`
	ExitFullscreen  []string `yaml:"exit_fullscreen"`
	TimeoutMs       int      `yaml:"timeout_ms" default:"5000" validate:"gt=0,lte=60000"`
}

// EventsConfig represents the browser event stream configuration.
type EventsConfig struct {
	SSEDisabled bool     `yaml:"sse_disabled"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses, defaults and validates configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		c.Admin.Token = v
	}
	if v := os.Getenv("SLIDEBOX_MEDIA_DIR"); v != "" {
		c.Media.Dir = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// Interval returns the configured slide interval.
func (c *Config) Interval() time.Duration {
	return interval.FromSecond(c.Slideshow.IntervalSec)
}

// Presets returns the configured interval presets.
func (c *Config) Presets() []time.Duration {
	return interval.FromSeconds(c.Slideshow.PresetsSec)
}

// RescanInterval returns the media rescan period, zero when disabled.
func (c *Config) RescanInterval() time.Duration {
	return time.Duration(c.Media.RescanIntervalSec) * time.Second
}

// DisplayTimeout returns the timeout for a single fullscreen hook command.
func (c *Config) DisplayTimeout() time.Duration {
	return time.Duration(c.Display.TimeoutMs) * time.Millisecond
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// GetFilterSettings returns the settings for a filter.
func (c *Config) GetFilterSettings(filterName string) map[string]any {
	if f, ok := c.Filters[filterName]; ok {
		return f.Settings
	}
	return nil
}
