// Package app wires configuration into the concrete components each command needs.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"portfolio-feed/internal/artifact"
	"portfolio-feed/internal/cache"
	"portfolio-feed/internal/config"
	"portfolio-feed/internal/domain"
	"portfolio-feed/internal/integrations/paramstore"
	"portfolio-feed/internal/integrations/xapi"
	"portfolio-feed/internal/render"
	"portfolio-feed/internal/repository"
	"portfolio-feed/internal/usecase"
)

// ErrMissingCredential is returned when neither TWITTER_BEARER nor the
// parameter store supplies a bearer token.
var ErrMissingCredential = errors.New("app: TWITTER_BEARER is not set and PARAM_PREFIX is empty")

// App holds the configuration and the optional AWS-backed clients.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	// Params is nil unless PARAM_PREFIX is set.
	Params paramstore.Getter
	// Runs is nil unless RUN_TABLE is set.
	Runs *repository.Client
}

// New loads AWS clients only when the configuration asks for them, so local
// runs with a plain TWITTER_BEARER never touch AWS.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}
	if !cfg.AWS.Enabled() {
		return a, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.AWS.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("app: load AWS config: %w", err)
	}

	if cfg.AWS.ParamPrefix != "" {
		params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return nil, fmt.Errorf("app: create SSM client: %w", err)
		}
		a.Params = params
	}
	if cfg.AWS.RunTable != "" {
		runs, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.AWS.RunTable)
		if err != nil {
			return nil, fmt.Errorf("app: create run log client: %w", err)
		}
		a.Runs = runs
	}
	return a, nil
}

// Bearer returns the X API credential: TWITTER_BEARER first, then the
// parameter store.
func (a *App) Bearer(ctx context.Context) (string, error) {
	if b := strings.TrimSpace(a.Config.XAPI.Bearer); b != "" {
		return b, nil
	}
	if a.Config.AWS.ParamPrefix == "" || a.Params == nil {
		return "", ErrMissingCredential
	}
	token, err := paramstore.BearerToken(ctx, a.Params, a.Config.AWS.ParamPrefix)
	if err != nil {
		return "", fmt.Errorf("app: bearer token: %w", err)
	}
	a.Logger.InfoContext(ctx, "bearer token loaded from parameter store")
	return token, nil
}

// XAPIClient builds the failover client with the resolved credential.
func (a *App) XAPIClient(ctx context.Context) (*xapi.Client, error) {
	bearer, err := a.Bearer(ctx)
	if err != nil {
		return nil, err
	}
	return xapi.NewClient(bearer,
		xapi.WithHosts(a.Config.XAPI.Hosts()...),
		xapi.WithHTTPClient(&http.Client{Timeout: a.Config.XAPI.Timeout}),
		xapi.WithRateLimitDelay(a.Config.XAPI.RateLimitDelay),
		xapi.WithLogger(a.Logger),
	)
}

func (a *App) Store() (*artifact.Store, error) {
	return artifact.NewStore(a.Config.Fetch.OutputDir)
}

// RefreshService assembles the artifact pipeline. The run log is attached
// only when RUN_TABLE is configured.
func (a *App) RefreshService(client usecase.AccountClient) (*usecase.RefreshService, error) {
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	opts := []usecase.RefreshOption{usecase.WithLogger(a.Logger)}
	if a.Runs != nil {
		opts = append(opts, usecase.WithRecorder(a.Runs))
	}
	return usecase.NewRefreshService(client, store, artifact.NewGate(time.Now), usecase.RefreshConfig{
		Accounts:         a.Config.Fetch.Accounts(),
		PostsThreshold:   a.Config.Fetch.PostsThreshold,
		ProfileThreshold: a.Config.Fetch.ProfileThreshold,
		PlaceholderText:  a.Config.Fetch.PlaceholderText,
	}, opts...)
}

// TimelineService builds the proxy service with a fresh TTL cache.
func (a *App) TimelineService(client usecase.TimelineClient) (*usecase.TimelineService, error) {
	c := cache.NewTTL[domain.Timeline](a.Config.Server.CacheTTL, time.Now)
	return usecase.NewTimelineService(client, c, a.Logger)
}

func (a *App) Renderer() (*render.Renderer, error) {
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	loc, err := a.Config.Render.Location()
	if err != nil {
		return nil, fmt.Errorf("app: render location: %w", err)
	}
	return render.New(store, render.Options{Location: loc, FallbackImage: a.Config.Render.FallbackImage})
}
