// Command fetch refreshes every tracked account's artifacts once and exits.
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
	"portfolio-feed/internal/domain"
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

	report, err := svc.Run(ctx)
	if err != nil {
		logger.Error("refresh failed", "err", err, "run_id", report.RunID)
		os.Exit(1)
	}
	logger.Info("refresh complete",
		"run_id", report.RunID,
		"fetched", report.Count(domain.OutcomeFetched),
		"placeholder", report.Count(domain.OutcomePlaceholder),
		"skipped", report.Count(domain.OutcomeSkipped),
		"failed", report.Count(domain.OutcomeFailed),
	)
}
