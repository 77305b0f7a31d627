// Command proxy serves the cached live timeline, the admin stub and the
// artifact-backed widget over HTTP.
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
	"portfolio-feed/internal/server"
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
	timeline, err := a.TimelineService(client)
	if err != nil {
		logger.Error("failed to create timeline service", "err", err)
		os.Exit(1)
	}
	renderer, err := a.Renderer()
	if err != nil {
		logger.Error("failed to create renderer", "err", err)
		os.Exit(1)
	}

	deps := server.Deps{
		Timeline:   timeline,
		Widgets:    renderer,
		DataDir:    cfg.Fetch.OutputDir,
		AdminToken: cfg.Server.AdminToken,
	}
	if a.Runs != nil {
		deps.Runs = a.Runs
	}
	if cfg.Server.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN is not set; admin refresh will reject every request")
	}

	srv, err := server.New(deps, cfg.Server, cfg.CORS, logger)
	if err != nil {
		logger.Error("failed to create server", "err", err)
		os.Exit(1)
	}
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
