// Package server exposes the live timeline proxy, the admin refresh stub and
// the artifact-backed widget over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"portfolio-feed/internal/config"
	"portfolio-feed/internal/domain"
)

type TimelineService interface {
	Timeline(ctx context.Context, handle string) (domain.Timeline, error)
}

type WidgetRenderer interface {
	Widget(w io.Writer, handle string) error
}

// RunLog is satisfied by *repository.Client.
type RunLog interface {
	RecentResults(ctx context.Context, handle string, limit int) ([]domain.AccountResult, error)
}

// Deps are the collaborators behind the routes. Widgets, Runs and DataDir are
// optional; their routes answer 404 when unset.
type Deps struct {
	Timeline   TimelineService
	Widgets    WidgetRenderer
	Runs       RunLog
	DataDir    string
	AdminToken string
}

type Server struct {
	deps   Deps
	cfg    config.ServerConfig
	cors   config.CORSConfig
	logger *slog.Logger
	mux    *http.ServeMux
}

func New(deps Deps, cfg config.ServerConfig, cors config.CORSConfig, logger *slog.Logger) (*Server, error) {
	if deps.Timeline == nil {
		return nil, errors.New("server: timeline service must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{deps: deps, cfg: cfg, cors: cors, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the routed mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		Recovery(s.logger),
		RequestID,
		Logger(s.logger),
		CORS(s.cors),
	)(s.mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("proxy listening", slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: listen: %w", err)
	}
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
