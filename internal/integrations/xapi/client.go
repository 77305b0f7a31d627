package xapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	userAgent             = "portfolio-feed/1.0"
	defaultRateLimitDelay = 10 * time.Second
)

// DefaultHosts are tried in order; both serve the same v2 API.
var DefaultHosts = []string{"https://api.twitter.com", "https://api.x.com"}

// HTTPStatusError captures the last non-2xx upstream response once every host
// has been tried.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("xapi: unexpected status %d on %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// IsRateLimited reports whether err carries a 429 from the API.
func IsRateLimited(err error) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests
}

// Client calls the X v2 API with bearer auth and host failover.
type Client struct {
	hosts          []string
	bearer         string
	httpClient     *http.Client
	rateLimitDelay time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
	logger         *slog.Logger
}

type Option func(*Client)

func WithHosts(hosts ...string) Option {
	return func(c *Client) {
		cleaned := make([]string, 0, len(hosts))
		for _, h := range hosts {
			if h = strings.TrimRight(strings.TrimSpace(h), "/"); h != "" {
				cleaned = append(cleaned, h)
			}
		}
		if len(cleaned) > 0 {
			c.hosts = cleaned
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithRateLimitDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.rateLimitDelay = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client authenticated with the given bearer token.
func NewClient(bearer string, opts ...Option) (*Client, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, errors.New("xapi: bearer token must not be empty")
	}
	c := &Client{
		hosts:          append([]string(nil), DefaultHosts...),
		bearer:         bearer,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		rateLimitDelay: defaultRateLimitDelay,
		sleep:          sleepWithContext,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// get issues GET path against each host in turn and returns the first 2xx
// body. A 429 waits rateLimitDelay and retries the same host once before
// moving on. Non-JSON bodies are wrapped as {"raw": text}.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	var lastErr error
	for _, host := range c.hosts {
		url := host + path
		body, status, err := c.do(ctx, url)
		if err == nil && status == http.StatusTooManyRequests {
			c.logger.WarnContext(ctx, "rate limited, waiting before retry",
				slog.String("url", url), slog.Duration("delay", c.rateLimitDelay))
			if err := c.sleep(ctx, c.rateLimitDelay); err != nil {
				return nil, fmt.Errorf("xapi: rate limit wait: %w", err)
			}
			body, status, err = c.do(ctx, url)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("xapi: request failed: %w", err)
			}
			lastErr = fmt.Errorf("xapi: request failed on %s: %w", url, err)
			continue
		}
		if status >= 200 && status < 300 {
			return normalizeBody(body), nil
		}
		lastErr = &HTTPStatusError{StatusCode: status, URL: url, Body: string(normalizeBody(body))}
	}
	if lastErr == nil {
		lastErr = errors.New("xapi: no hosts configured")
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer)
	req.Header.Set("User-Agent", userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = res.Body.Close() }()

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("read response body: %w", err)
	}
	return buf, res.StatusCode, nil
}

func normalizeBody(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": string(body)})
	return wrapped
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
