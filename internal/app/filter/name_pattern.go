package filter

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/slidebox/internal/domain/media"
)

// NamePatternConfig represents the configuration for NamePatternFilter.
type NamePatternConfig struct {
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
}

// NamePatternFilter rejects images whose file name matches an exclude glob.
type NamePatternFilter struct {
	exclude []string
}

// NewNamePatternFilter creates a new name pattern filter.
func NewNamePatternFilter() *NamePatternFilter {
	return &NamePatternFilter{}
}

func (f *NamePatternFilter) Name() string {
	return "name_pattern_filter"
}

func (f *NamePatternFilter) Description() string {
	return "Rejects images whose file name matches an exclude pattern"
}

func (f *NamePatternFilter) ReturnCodes() []string {
	return []string{"name_excluded"}
}

func (f *NamePatternFilter) ValidateConfig(settings map[string]any) error {
	var config NamePatternConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	for _, pattern := range config.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return errors.Wrapf(err, "invalid pattern %q", pattern)
		}
	}

	f.exclude = config.Exclude
	return nil
}

func (f *NamePatternFilter) Check(ctx context.Context, img media.ImageRef) Result {
	for _, pattern := range f.exclude {
		// Patterns are validated in ValidateConfig
		if ok, _ := filepath.Match(pattern, img.Name); ok {
			return Reject("name_excluded")
		}
	}
	return Accept()
}

func init() {
	Register("name_pattern_filter", func() Filter {
		return NewNamePatternFilter()
	})
}
