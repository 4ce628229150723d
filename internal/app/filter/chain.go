package filter

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/slidebox/internal/domain/media"
)

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the image.
func (c *Chain) Execute(ctx context.Context, img media.ImageRef) Result {
	for _, f := range c.filters {
		result := f.Check(ctx, img)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Apply returns the accepted images, keeping their order.
func (c *Chain) Apply(ctx context.Context, images []media.ImageRef) []media.ImageRef {
	if len(c.filters) == 0 {
		return images
	}

	accepted := make([]media.ImageRef, 0, len(images))
	for _, img := range images {
		result := c.Execute(ctx, img)
		if !result.Accepted {
			zlog.Debug().Msgf("filter: image rejected: name=%s code=%s", img.Name, result.Code)
			continue
		}
		accepted = append(accepted, img)
	}
	if rejected := len(images) - len(accepted); rejected > 0 {
		zlog.Info().Msgf("filter: rejected %d of %d images", rejected, len(images))
	}
	return accepted
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
