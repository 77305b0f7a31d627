// Command lambda serves the timeline proxy from AWS Lambda behind API Gateway.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"portfolio-feed/handler"
	"portfolio-feed/internal/app"
	"portfolio-feed/internal/config"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.Log)

	// ---- Clients ----
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

	// ---- Handler ----
	timeline, err := a.TimelineService(client)
	if err != nil {
		logger.Error("failed to create timeline service", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewHandler(timeline, cfg.Server.AdminToken, cfg.CORS.AllowedOrigins, logger)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
