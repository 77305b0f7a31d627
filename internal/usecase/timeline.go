package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"portfolio-feed/internal/domain"
)

// DefaultTimelineItems is how many posts the proxy returns and caches.
const DefaultTimelineItems = 3

type TimelineClient interface {
	ResolveID(ctx context.Context, handle string) (string, error)
	RecentPosts(ctx context.Context, userID string) ([]domain.Post, error)
}

// TimelineCache is satisfied by *cache.TTL[domain.Timeline].
type TimelineCache interface {
	Get(key string) (domain.Timeline, bool)
	Set(key string, value domain.Timeline)
}

// TimelineService serves live timelines through a per-handle cache.
type TimelineService struct {
	client   TimelineClient
	cache    TimelineCache
	maxItems int
	logger   *slog.Logger
	group    singleflight.Group
}

func NewTimelineService(client TimelineClient, cache TimelineCache, logger *slog.Logger) (*TimelineService, error) {
	if client == nil {
		return nil, errors.New("usecase: timeline client must not be nil")
	}
	if cache == nil {
		return nil, errors.New("usecase: timeline cache must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TimelineService{client: client, cache: cache, maxItems: DefaultTimelineItems, logger: logger}, nil
}

// Timeline returns at most three recent posts for handle. Concurrent misses
// for the same handle share a single upstream round trip.
func (s *TimelineService) Timeline(ctx context.Context, handle string) (domain.Timeline, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return domain.Timeline{}, newError(ErrorNotFound, "empty_handle", nil)
	}
	key := "u:" + handle
	if tl, ok := s.cache.Get(key); ok {
		return tl, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		id, err := s.client.ResolveID(ctx, handle)
		if err != nil {
			return nil, classify("resolve", err)
		}
		posts, err := s.client.RecentPosts(ctx, id)
		if err != nil {
			return nil, classify("timeline", err)
		}
		if len(posts) > s.maxItems {
			posts = posts[:s.maxItems]
		}
		if posts == nil {
			posts = []domain.Post{}
		}
		tl := domain.Timeline{Data: posts}
		s.cache.Set(key, tl)
		return tl, nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "timeline fetch failed", slog.String("handle", handle), slog.Any("err", err))
		return domain.Timeline{}, err
	}
	return v.(domain.Timeline), nil
}

// CheckAdminToken guards the refresh stub. An unset secret rejects everything.
func CheckAdminToken(configured, provided string) error {
	if configured == "" || subtle.ConstantTimeCompare([]byte(configured), []byte(provided)) != 1 {
		return newError(ErrorUnauthorized, "admin_token_mismatch", nil)
	}
	return nil
}
