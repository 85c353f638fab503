package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/storeops/stocksync/pkg/reconcile"
	"github.com/storeops/stocksync/pkg/runlock"
)

// lockTTL bounds how long a crashed run can block the schedule. Runs over
// large catalogs take tens of minutes at the platform rate limit.
const lockTTL = 2 * time.Hour

// Scheduler fires reconciliation runs on a cron schedule, serialized across
// processes by a Redis lease.
type Scheduler struct {
	engine *reconcile.Engine
	lock   *runlock.Lock
	spec   string
	opts   reconcile.RunOptions
	logger *slog.Logger
	cron   *cron.Cron
}

func NewScheduler(logger *slog.Logger, engine *reconcile.Engine, lock *runlock.Lock, spec string, opts reconcile.RunOptions) *Scheduler {
	return &Scheduler{
		engine: engine,
		lock:   lock,
		spec:   spec,
		opts:   opts,
		logger: logger.With("module", "scheduler"),
	}
}

// Start registers the schedule and blocks until a shutdown signal arrives.
func (s *Scheduler) Start(ctx context.Context) error {
	sCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.cron = cron.New()

	_, err := s.cron.AddFunc(s.spec, func() {
		s.fire(sCtx)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Starting scheduler", "schedule", s.spec,
		"dry_run", s.opts.DryRun)
	s.cron.Start()

	s.handleSignals(sCtx, cancel)

	<-sCtx.Done()
	s.logger.Info("Scheduler context cancelled, stopping...")

	// Let an in-flight run finish before exiting.
	<-s.cron.Stop().Done()

	return nil
}

// fire executes one scheduled run under the cross-process lock. A run still
// in flight elsewhere makes this tick a no-op.
func (s *Scheduler) fire(ctx context.Context) {
	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to acquire run lock", "error", err)

		return
	}

	if !acquired {
		s.logger.InfoContext(ctx, "Another run is in progress, skipping this tick")

		return
	}

	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.logger.WarnContext(ctx, "Failed to release run lock", "error", err)
		}
	}()

	result, err := s.engine.Run(ctx, s.opts)
	if err != nil {
		s.logger.ErrorContext(ctx, "Scheduled run failed", "error", err)

		return
	}

	if result.Aborted {
		s.logger.WarnContext(ctx, "Scheduled run blocked by safety gate",
			"run_id", result.RunID, "reason", result.AbortReason)
	}
}

func (s *Scheduler) handleSignals(ctx context.Context, cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-signals:
			s.logger.Info("Received signal, shutting down gracefully...", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
}
