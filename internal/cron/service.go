package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/velocimech/velocimech-backend/pkg/logger"
	"github.com/velocimech/velocimech-backend/pkg/metrics"
)

// Payment holds expire on the order of an hour, so the sweep must run well
// inside that.
const defaultInterval = 5 * time.Minute

// ServiceParams configure the worker loop.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs the registered jobs on a fixed cadence, one instance at a
// time across the fleet.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

// NewService builds the cron worker service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run executes cycles until the context ends. The first cycle fires
// immediately so a restart never waits a full interval to sweep holds.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.runCycle(ctx); err != nil {
		s.logg.Error(ctx, "cron.cycle_failed", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron.worker_stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				s.logg.Error(ctx, "cron.cycle_failed", err)
			}
		}
	}
}

// RunOnce executes a single locked cycle so an external scheduler can
// drive the jobs instead of the interval loop.
func (s *Service) RunOnce(ctx context.Context) error {
	return s.runCycle(ctx)
}

func (s *Service) runCycle(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "cron.cycle_skipped_lock_held")
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "cron.lock_release_failed", relErr)
		}
	}()

	var errs []error
	for _, job := range s.registry.Jobs() {
		if err := s.runJob(ctx, job); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", job.Name(), err))
		}
	}
	return multierr.Combine(errs...)
}

// runJob isolates job failures: one broken job never blocks the rest of the
// cycle.
func (s *Service) runJob(ctx context.Context, job Job) error {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.metrics.ObserveDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "cron.job_failed", err)
		s.metrics.IncFailure(job.Name())
		return err
	}
	s.logg.Info(jobCtx, "cron.job_completed")
	s.metrics.IncSuccess(job.Name())
	return nil
}
