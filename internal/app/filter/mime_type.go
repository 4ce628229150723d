package filter

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/slidebox/internal/domain/media"
)

// MimeTypeConfig represents the configuration for MimeTypeFilter.
type MimeTypeConfig struct {
	Allowed []string `yaml:"allowed" mapstructure:"allowed" validate:"min=1,dive,startswith=image/"`
}

// MimeTypeFilter keeps only images of the configured MIME types.
type MimeTypeFilter struct {
	allowed []string
}

// NewMimeTypeFilter creates a new MimeTypeFilter with the given allowed types.
func NewMimeTypeFilter(allowed ...string) *MimeTypeFilter {
	return &MimeTypeFilter{allowed: allowed}
}

func (f *MimeTypeFilter) Name() string {
	return "mime_type_filter"
}

func (f *MimeTypeFilter) Description() string {
	return "Checks if the image type is in the allowed list"
}

func (f *MimeTypeFilter) ReturnCodes() []string {
	return []string{"mime_type_not_allowed"}
}

func (f *MimeTypeFilter) ValidateConfig(settings map[string]any) error {
	var config MimeTypeConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	f.allowed = config.Allowed
	return nil
}

func (f *MimeTypeFilter) Check(ctx context.Context, img media.ImageRef) Result {
	if len(f.allowed) == 0 {
		return Accept()
	}

	if !slices.Contains(f.allowed, img.MIMEType) {
		return Reject("mime_type_not_allowed")
	}
	return Accept()
}

func init() {
	Register("mime_type_filter", func() Filter {
		return NewMimeTypeFilter()
	})
}
