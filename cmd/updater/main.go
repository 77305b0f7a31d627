// Command updater runs the artifact refresh at start and then on every
// scheduler interval until interrupted.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"portfolio-feed/internal/app"
	"portfolio-feed/internal/config"
	"portfolio-feed/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.Log)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise", "err", err)
		os.Exit(1)
	}
	client, err := a.XAPIClient(ctx)
	if err != nil {
		logger.Error("failed to create X API client", "err", err)
		os.Exit(1)
	}
	svc, err := a.RefreshService(client)
	if err != nil {
		logger.Error("failed to create refresh service", "err", err)
		os.Exit(1)
	}

	sched, err := scheduler.New(cfg.Scheduler.Interval, func(ctx context.Context) error {
		_, err := svc.Run(ctx)
		return err
	}, logger)
	if err != nil {
		logger.Error("failed to create scheduler", "err", err)
		os.Exit(1)
	}

	logger.Info("updater started", "interval", cfg.Scheduler.Interval.String())
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler stopped", "err", err)
		os.Exit(1)
	}
	logger.Info("updater stopped")
}
