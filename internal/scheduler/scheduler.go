package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Refresher records fresh weather history for saved cities.
type Refresher interface {
	RefreshFavorites(ctx context.Context) (int, error)
}

// Scheduler periodically refreshes weather history for favorite cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler. An interval <= 0 disables it.
func New(interval time.Duration, refresher Refresher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		interval:  interval,
		timeout:   2 * time.Minute,
		logger:    logger.Named("scheduler"),
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("refresh interval not set; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("favorites refresh scheduled", zap.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) run() {
	s.logger.Debug("running favorites refresh job")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	saved, err := s.refresher.RefreshFavorites(ctx)
	if err != nil {
		s.logger.Error("favorites refresh failed", zap.Int("saved", saved), zap.Error(err))
		return
	}
	s.logger.Info("favorites refresh completed", zap.Int("saved", saved))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
