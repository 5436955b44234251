package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// Sweeper periodically deletes expired entries from stores that support it.
// Reads already ignore stale entries; the sweep only reclaims space.
type Sweeper struct {
	purger    Purger
	maxAge    time.Duration
	now       Clock
	scheduler *gocron.Scheduler
	logger    *logrus.Logger
}

// NewSweeper returns nil when store cannot purge (e.g. Redis, which expires keys itself).
func NewSweeper(store Store, maxAge time.Duration, logger *logrus.Logger) *Sweeper {
	purger, ok := store.(Purger)
	if !ok {
		return nil
	}
	return &Sweeper{
		purger:    purger,
		maxAge:    maxAge,
		now:       time.Now,
		scheduler: gocron.NewScheduler(time.UTC),
		logger:    logger,
	}
}

// Start schedules a sweep every interval.
func (s *Sweeper) Start(interval time.Duration) error {
	_, err := s.scheduler.Every(interval).Do(func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.logger.WithError(err).Warn("Cache sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cache sweep: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Sweep purges entries older than maxAge once.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	removed, err := s.purger.PurgeBefore(ctx, s.now().Add(-s.maxAge))
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		s.logger.WithField("removed", removed).Info("Purged expired cache entries")
	}
	return removed, nil
}

// Stop stops the scheduler
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}
