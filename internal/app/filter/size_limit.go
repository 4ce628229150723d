package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/slidebox/internal/domain/media"
)

// SizeLimitConfig represents the configuration for SizeLimitFilter.
type SizeLimitConfig struct {
	MinBytes int64 `yaml:"min_bytes" mapstructure:"min_bytes" default:"1" validate:"gte=1"`
	MaxBytes int64 `yaml:"max_bytes" mapstructure:"max_bytes" validate:"gte=0"`
}

// SizeLimitFilter checks if the image file size is within allowed limits.
type SizeLimitFilter struct {
	config *SizeLimitConfig
}

// NewSizeLimitFilter creates a new size limit filter.
func NewSizeLimitFilter() *SizeLimitFilter {
	return &SizeLimitFilter{}
}

func (f *SizeLimitFilter) Name() string {
	return "size_limit_filter"
}

func (f *SizeLimitFilter) Description() string {
	return "Checks if the image file size is within allowed limits"
}

func (f *SizeLimitFilter) ReturnCodes() []string {
	return []string{"size_limit_exceeded"}
}

func (f *SizeLimitFilter) ValidateConfig(settings map[string]any) error {
	var config SizeLimitConfig

	// Decode map[string]any to struct using mapstructure
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &config,
		TagName: "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	// Set defaults
	if err := defaults.Set(&config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	// Validate using validator
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	// min_bytes cannot be greater than max_bytes (0 means no limit)
	if config.MaxBytes > 0 && config.MinBytes > config.MaxBytes {
		return errors.New("min_bytes cannot be greater than max_bytes")
	}
	f.config = &config
	zlog.Info().Msgf("size limit filter config: %+v", config)
	return nil
}

func (f *SizeLimitFilter) Check(ctx context.Context, img media.ImageRef) Result {
	// If config is not set, accept all images
	if f.config == nil {
		return Accept()
	}

	if img.Size < f.config.MinBytes {
		return Reject("size_limit_exceeded")
	}
	if f.config.MaxBytes > 0 && img.Size > f.config.MaxBytes {
		return Reject("size_limit_exceeded")
	}
	return Accept()
}

func init() {
	Register("size_limit_filter", func() Filter {
		return NewSizeLimitFilter()
	})
}
