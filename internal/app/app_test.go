package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-feed/internal/config"
	"portfolio-feed/internal/domain"
)

type fakeParams struct {
	values map[string]string
	err    error
}

func (f fakeParams) GetParameter(_ context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[name]
	if !ok {
		return "", errors.New("parameter not found")
	}
	return v, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		XAPI: config.XAPIConfig{
			HostsRaw:       "https://api.twitter.com,https://api.x.com",
			Timeout:        time.Second,
			RateLimitDelay: time.Second,
		},
		Fetch: config.FetchConfig{
			AccountsRaw:      "alice,bob",
			OutputDir:        t.TempDir(),
			PostsThreshold:   10 * time.Minute,
			ProfileThreshold: 24 * time.Hour,
		},
		Server: config.ServerConfig{Port: 3000, CacheTTL: time.Hour},
		Render: config.RenderConfig{Timezone: "UTC"},
	}
}

func TestNew_WithoutAWSSkipsClients(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	require.Nil(t, a.Params)
	require.Nil(t, a.Runs)
}

func TestBearer(t *testing.T) {
	t.Run("env wins", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.XAPI.Bearer = " env-token "
		cfg.AWS.ParamPrefix = "/portfolio"
		a := &App{Config: cfg, Logger: nopLogger(), Params: fakeParams{err: errors.New("must not be called")}}

		got, err := a.Bearer(context.Background())
		require.NoError(t, err)
		require.Equal(t, "env-token", got)
	})

	t.Run("parameter store fallback", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.AWS.ParamPrefix = "/portfolio"
		a := &App{Config: cfg, Logger: nopLogger(), Params: fakeParams{values: map[string]string{
			"/portfolio/x-bearer-token": `{"token":"ssm-token"}`,
		}}}

		got, err := a.Bearer(context.Background())
		require.NoError(t, err)
		require.Equal(t, "ssm-token", got)
	})

	t.Run("missing", func(t *testing.T) {
		a := &App{Config: testConfig(t), Logger: nopLogger()}
		_, err := a.Bearer(context.Background())
		require.ErrorIs(t, err, ErrMissingCredential)
	})

	t.Run("parameter store error", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.AWS.ParamPrefix = "/portfolio"
		a := &App{Config: cfg, Logger: nopLogger(), Params: fakeParams{err: errors.New("access denied")}}

		_, err := a.Bearer(context.Background())
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrMissingCredential)
	})
}

func TestXAPIClient_RequiresCredential(t *testing.T) {
	a := &App{Config: testConfig(t), Logger: nopLogger()}
	_, err := a.XAPIClient(context.Background())
	require.ErrorIs(t, err, ErrMissingCredential)

	a.Config.XAPI.Bearer = "token"
	client, err := a.XAPIClient(context.Background())
	require.NoError(t, err)
	require.NotNil(t, client)
}

type noopAccounts struct{}

func (noopAccounts) LookupUser(context.Context, string) (domain.User, error) {
	return domain.User{}, errors.New("unused")
}
func (noopAccounts) ResolveID(context.Context, string) (string, error) {
	return "", errors.New("unused")
}
func (noopAccounts) RecentPosts(context.Context, string) ([]domain.Post, error) {
	return nil, errors.New("unused")
}

func TestComponents(t *testing.T) {
	a := &App{Config: testConfig(t), Logger: nopLogger()}

	svc, err := a.RefreshService(noopAccounts{})
	require.NoError(t, err)
	require.NotNil(t, svc)

	tl, err := a.TimelineService(noopAccounts{})
	require.NoError(t, err)
	require.NotNil(t, tl)

	r, err := a.Renderer()
	require.NoError(t, err)
	require.NotNil(t, r)
}
