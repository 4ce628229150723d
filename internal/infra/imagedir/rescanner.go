package imagedir

import (
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-co-op/gocron"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/slidebox/internal/domain/media"
)

// Rescanner periodically rescans a directory and reports when the image set changes.
type Rescanner struct {
	dir       string
	recursive bool
	every     time.Duration
	onChange  func([]media.ImageRef)

	mu        sync.Mutex
	last      []string
	scheduler *gocron.Scheduler
}

// NewRescanner creates a rescanner. initial is the image set already loaded.
func NewRescanner(dir string, recursive bool, every time.Duration, initial []media.ImageRef, onChange func([]media.ImageRef)) *Rescanner {
	return &Rescanner{
		dir:       dir,
		recursive: recursive,
		every:     every,
		onChange:  onChange,
		last:      media.Paths(initial),
	}
}

// Start schedules the rescan job. The first run happens one period from now.
func (r *Rescanner) Start() error {
	if r.every <= 0 {
		return errors.Newf("invalid rescan interval: %v", r.every)
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if _, err := s.Every(r.every).WaitForSchedule().Do(func() {
		if _, err := r.Check(); err != nil {
			zlog.Warn().Msgf("imagedir: rescan failed: err=%v", err)
		}
	}); err != nil {
		return errors.Wrap(err, "failed to schedule rescan")
	}
	s.StartAsync()

	r.mu.Lock()
	r.scheduler = s
	r.mu.Unlock()

	zlog.Info().Msgf("imagedir: rescanning every %v", r.every)
	return nil
}

// Check rescans once and calls onChange if the set of paths differs from the last one.
func (r *Rescanner) Check() (bool, error) {
	r.mu.Lock()
	dir := r.dir
	r.mu.Unlock()

	images, err := Scan(dir, r.recursive)
	if err != nil {
		return false, err
	}

	paths := media.Paths(images)

	r.mu.Lock()
	changed := !slices.Equal(paths, r.last)
	if changed {
		r.last = paths
	}
	r.mu.Unlock()

	if changed {
		zlog.Info().Msgf("imagedir: image set changed: dir=%s images=%d", dir, len(images))
		r.onChange(images)
	}
	return changed, nil
}

// Reset replaces the remembered image set, e.g. after a manual load.
func (r *Rescanner) Reset(dir string, images []media.ImageRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dir = dir
	r.last = media.Paths(images)
}

// Stop stops the rescan job.
func (r *Rescanner) Stop() {
	r.mu.Lock()
	s := r.scheduler
	r.scheduler = nil
	r.mu.Unlock()

	if s != nil {
		s.Stop()
	}
}
