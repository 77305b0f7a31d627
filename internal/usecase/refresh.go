package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio-feed/internal/domain"
)

const (
	// PlaceholderID marks the synthetic post written when a fetch fails.
	PlaceholderID = "placeholder-1"
	// DefaultPlaceholderText is shown in place of posts that could not be fetched.
	DefaultPlaceholderText = "(Temporary) Posts could not be loaded because of API limits. Please check back later."
)

type AccountClient interface {
	LookupUser(ctx context.Context, handle string) (domain.User, error)
	ResolveID(ctx context.Context, handle string) (string, error)
	RecentPosts(ctx context.Context, userID string) ([]domain.Post, error)
}

type ArtifactWriter interface {
	PostsPath(handle string) string
	ProfilePath(handle string) string
	WritePosts(a domain.PostArtifact) error
	WriteProfile(a domain.ProfileArtifact) error
}

type StalenessGate interface {
	Due(path string, threshold time.Duration) bool
}

type RunRecorder interface {
	SaveRun(ctx context.Context, report domain.RunReport) error
}

type RefreshConfig struct {
	Accounts         []string
	PostsThreshold   time.Duration
	ProfileThreshold time.Duration
	PlaceholderText  string
}

// RefreshService walks the tracked accounts one after another and refreshes
// their post and profile artifacts when due.
type RefreshService struct {
	client   AccountClient
	store    ArtifactWriter
	gate     StalenessGate
	cfg      RefreshConfig
	recorder RunRecorder
	logger   *slog.Logger
	now      func() time.Time
}

type RefreshOption func(*RefreshService)

func WithRecorder(r RunRecorder) RefreshOption {
	return func(s *RefreshService) {
		s.recorder = r
	}
}

func WithLogger(l *slog.Logger) RefreshOption {
	return func(s *RefreshService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) RefreshOption {
	return func(s *RefreshService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewRefreshService(client AccountClient, store ArtifactWriter, gate StalenessGate, cfg RefreshConfig, opts ...RefreshOption) (*RefreshService, error) {
	if client == nil {
		return nil, errors.New("usecase: account client must not be nil")
	}
	if store == nil {
		return nil, errors.New("usecase: artifact store must not be nil")
	}
	if gate == nil {
		return nil, errors.New("usecase: staleness gate must not be nil")
	}
	accounts := make([]string, 0, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		if a = strings.TrimPrefix(strings.TrimSpace(a), "@"); a != "" {
			accounts = append(accounts, a)
		}
	}
	if len(accounts) == 0 {
		return nil, errors.New("usecase: at least one account is required")
	}
	cfg.Accounts = accounts
	if strings.TrimSpace(cfg.PlaceholderText) == "" {
		cfg.PlaceholderText = DefaultPlaceholderText
	}

	s := &RefreshService{
		client: client,
		store:  store,
		gate:   gate,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run refreshes every account in order. Fetch failures are absorbed into the
// report; an artifact write failure or cancellation aborts the run and is
// returned together with the partial report.
func (s *RefreshService) Run(ctx context.Context) (domain.RunReport, error) {
	report := domain.RunReport{RunID: newRunID(), StartedAt: s.now().UTC()}
	logger := s.logger.With(slog.String("run_id", report.RunID))

	for _, handle := range s.cfg.Accounts {
		if err := ctx.Err(); err != nil {
			return s.finish(ctx, logger, report), err
		}

		res, err := s.refreshPosts(ctx, logger, handle)
		report.Results = append(report.Results, s.stamp(res, report.RunID))
		if err != nil {
			return s.finish(ctx, logger, report), err
		}

		res, err = s.refreshProfile(ctx, logger, handle)
		report.Results = append(report.Results, s.stamp(res, report.RunID))
		if err != nil {
			return s.finish(ctx, logger, report), err
		}
	}

	report = s.finish(ctx, logger, report)
	logger.Info("refresh run done",
		slog.Int("fetched", report.Count(domain.OutcomeFetched)),
		slog.Int("placeholder", report.Count(domain.OutcomePlaceholder)),
		slog.Int("skipped", report.Count(domain.OutcomeSkipped)),
		slog.Int("failed", report.Count(domain.OutcomeFailed)),
	)
	return report, nil
}

func (s *RefreshService) refreshPosts(ctx context.Context, logger *slog.Logger, handle string) (domain.AccountResult, error) {
	res := domain.AccountResult{Handle: handle, Kind: domain.KindPosts}
	logger = logger.With(slog.String("handle", handle), slog.String("kind", string(domain.KindPosts)))

	if !s.gate.Due(s.store.PostsPath(handle), s.cfg.PostsThreshold) {
		logger.Info("posts not due, skipping", slog.Duration("threshold", s.cfg.PostsThreshold))
		res.Outcome = domain.OutcomeSkipped
		return res, nil
	}

	logger.Info("fetching posts")
	posts, fetchErr := s.fetchPosts(ctx, handle)
	if fetchErr != nil && ctx.Err() != nil {
		return failed(res, fetchErr), ctx.Err()
	}

	artifact := domain.PostArtifact{FetchedAt: s.now().UTC(), Username: handle, Data: posts}
	res.Outcome = domain.OutcomeFetched
	if fetchErr != nil {
		logger.Error("fetch posts failed, writing placeholder", slog.Any("err", fetchErr))
		artifact.Data = []domain.Post{{
			ID:        PlaceholderID,
			Text:      s.cfg.PlaceholderText,
			CreatedAt: artifact.FetchedAt.Format(time.RFC3339),
		}}
		res = failed(res, fetchErr)
		res.Outcome = domain.OutcomePlaceholder
	}

	if err := s.store.WritePosts(artifact); err != nil {
		return failed(res, err), newError(ErrorInternal, "artifact_write_error", fmt.Errorf("write posts for @%s: %w", handle, err))
	}
	res.Count = len(artifact.Data)
	logger.Info("posts saved", slog.String("outcome", string(res.Outcome)), slog.Int("count", res.Count))
	return res, nil
}

func (s *RefreshService) fetchPosts(ctx context.Context, handle string) ([]domain.Post, error) {
	id, err := s.client.ResolveID(ctx, handle)
	if err != nil {
		return nil, err
	}
	return s.client.RecentPosts(ctx, id)
}

func (s *RefreshService) refreshProfile(ctx context.Context, logger *slog.Logger, handle string) (domain.AccountResult, error) {
	res := domain.AccountResult{Handle: handle, Kind: domain.KindProfile}
	logger = logger.With(slog.String("handle", handle), slog.String("kind", string(domain.KindProfile)))

	if !s.gate.Due(s.store.ProfilePath(handle), s.cfg.ProfileThreshold) {
		logger.Info("profile not due, skipping", slog.Duration("threshold", s.cfg.ProfileThreshold))
		res.Outcome = domain.OutcomeSkipped
		return res, nil
	}

	logger.Info("fetching profile")
	user, err := s.client.LookupUser(ctx, handle)
	if err != nil {
		if ctx.Err() != nil {
			return failed(res, err), ctx.Err()
		}
		res = failed(res, err)
		res.Outcome = domain.OutcomeFailed
		if res.RateLimited {
			logger.Warn("profile fetch rate limited, keeping previous artifact", slog.Bool("rate_limited", true), slog.Any("err", err))
		} else {
			logger.Error("profile fetch failed, keeping previous artifact", slog.Bool("rate_limited", false), slog.Any("err", err))
		}
		return res, nil
	}

	artifact := domain.ProfileArtifact{
		FetchedAt:       s.now().UTC(),
		Username:        handle,
		Name:            user.Name,
		ProfileImageURL: user.ProfileImageURL,
	}
	if err := s.store.WriteProfile(artifact); err != nil {
		return failed(res, err), newError(ErrorInternal, "artifact_write_error", fmt.Errorf("write profile for @%s: %w", handle, err))
	}
	res.Outcome = domain.OutcomeFetched
	res.Count = 1
	logger.Info("profile saved")
	return res, nil
}

func (s *RefreshService) stamp(res domain.AccountResult, runID string) domain.AccountResult {
	res.RunID = runID
	res.RecordedAt = s.now().UTC()
	return res
}

func (s *RefreshService) finish(ctx context.Context, logger *slog.Logger, report domain.RunReport) domain.RunReport {
	report.FinishedAt = s.now().UTC()
	if s.recorder == nil {
		return report
	}
	if err := s.recorder.SaveRun(context.WithoutCancel(ctx), report); err != nil {
		logger.Warn("record run failed", slog.Any("err", err))
	}
	return report
}

func failed(res domain.AccountResult, err error) domain.AccountResult {
	res.Outcome = domain.OutcomeFailed
	res.Error = err.Error()
	res.RateLimited = classify(string(res.Kind), err).Code == ErrorRateLimited
	return res
}

var newRunID = func() string {
	return uuid.NewString()
}
