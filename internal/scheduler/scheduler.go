// Package scheduler re-runs a job on a fixed interval without letting two runs
// overlap.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

type Scheduler struct {
	interval time.Duration
	job      Job
	logger   *slog.Logger
	inFlight *semaphore.Weighted
	wg       sync.WaitGroup
	ticks    func(d time.Duration) (<-chan time.Time, func())
}

func New(interval time.Duration, job Job, logger *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("scheduler: interval must be positive")
	}
	if job == nil {
		return nil, errors.New("scheduler: job must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		interval: interval,
		job:      job,
		logger:   logger,
		inFlight: semaphore.NewWeighted(1),
		ticks: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}, nil
}

// Run triggers the job immediately and then on every tick until ctx is done.
// It waits for an in-flight run before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	ticks, stop := s.ticks(s.interval)
	defer stop()
	defer s.wg.Wait()

	s.Trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticks:
			s.Trigger(ctx)
		}
	}
}

// Trigger starts the job in the background unless a previous run is still in
// flight, in which case the trigger is skipped. It reports whether a run started.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	if !s.inFlight.TryAcquire(1) {
		s.logger.Warn("previous run still in flight, skipping trigger")
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Release(1)

		start := time.Now()
		s.logger.Info("scheduled run starting")
		if err := s.job(ctx); err != nil {
			s.logger.Error("scheduled run failed", slog.Any("err", err), slog.Duration("duration", time.Since(start)))
			return
		}
		s.logger.Info("scheduled run finished", slog.Duration("duration", time.Since(start)))
	}()
	return true
}

// Wait blocks until the in-flight run, if any, has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
