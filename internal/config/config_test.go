package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// chdirEmpty moves into a directory without config.yaml so the fallback path is absent.
func chdirEmpty(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	origDir, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	require.NoError(t, os.Chdir(t.TempDir()))
}

const validYAML = `
x_api:
  bearer: "yaml-bearer"
  hosts: "https://primary.example,https://secondary.example"
  timeout: "5s"
  rate_limit_delay: "2s"

fetch:
  accounts: "alice, @bob"
  output_dir: "/srv/site"
  posts_threshold: "5m"
  profile_threshold: "12h"

server:
  port: 8081
  admin_token: "s3cret"
  cache_ttl: "5m"

scheduler:
  interval: "30m"

render:
  timezone: "UTC"

log:
  level: "debug"
  format: "text"
`

func TestLoad_Defaults(t *testing.T) {
	chdirEmpty(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, []string{"https://api.twitter.com", "https://api.x.com"}, cfg.XAPI.Hosts())
	require.Equal(t, 10*time.Second, cfg.XAPI.Timeout)
	require.Equal(t, 10*time.Second, cfg.XAPI.RateLimitDelay)
	require.Equal(t, []string{"ilife_nara", "ion_mugi"}, cfg.Fetch.Accounts())
	require.Equal(t, ".", cfg.Fetch.OutputDir)
	require.Equal(t, 10*time.Minute, cfg.Fetch.PostsThreshold)
	require.Equal(t, 24*time.Hour, cfg.Fetch.ProfileThreshold)
	require.Equal(t, 3000, cfg.Server.Port)
	require.Equal(t, time.Hour, cfg.Server.CacheTTL)
	require.Equal(t, 15*time.Minute, cfg.Scheduler.Interval)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "*", cfg.CORS.AllowedOrigins)
	require.False(t, cfg.AWS.Enabled())
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "yaml-bearer", cfg.XAPI.Bearer)
	require.Equal(t, []string{"https://primary.example", "https://secondary.example"}, cfg.XAPI.Hosts())
	require.Equal(t, 5*time.Second, cfg.XAPI.Timeout)
	require.Equal(t, []string{"alice", "bob"}, cfg.Fetch.Accounts())
	require.Equal(t, "/srv/site", cfg.Fetch.OutputDir)
	require.Equal(t, 5*time.Minute, cfg.Fetch.PostsThreshold)
	require.Equal(t, 12*time.Hour, cfg.Fetch.ProfileThreshold)
	require.Equal(t, 8081, cfg.Server.Port)
	require.Equal(t, "s3cret", cfg.Server.AdminToken)
	require.Equal(t, 30*time.Minute, cfg.Scheduler.Interval)
	require.Equal(t, "debug", cfg.Log.Level)

	loc, err := cfg.Render.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "9000")
	t.Setenv("TWITTER_BEARER", "env-bearer")
	t.Setenv("FETCH_ACCOUNTS", "carol")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "env-bearer", cfg.XAPI.Bearer)
	require.Equal(t, []string{"carol"}, cfg.Fetch.Accounts())
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_AWSEnabled(t *testing.T) {
	chdirEmpty(t)
	t.Setenv("PARAM_PREFIX", "/portfolio")
	t.Setenv("RUN_TABLE", "runs")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.AWS.Enabled())
	require.Equal(t, "/portfolio", cfg.AWS.ParamPrefix)
	require.Equal(t, "runs", cfg.AWS.RunTable)
}

func validConfig() Config {
	return Config{
		XAPI: XAPIConfig{
			HostsRaw:       "https://api.twitter.com,https://api.x.com",
			Timeout:        10 * time.Second,
			RateLimitDelay: 10 * time.Second,
		},
		Fetch: FetchConfig{
			AccountsRaw:      "alice",
			OutputDir:        ".",
			PostsThreshold:   10 * time.Minute,
			ProfileThreshold: 24 * time.Hour,
		},
		Server:    ServerConfig{Port: 3000, CacheTTL: time.Hour},
		Scheduler: SchedulerConfig{Interval: 15 * time.Minute},
		Render:    RenderConfig{Timezone: "UTC"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no hosts", func(c *Config) { c.XAPI.HostsRaw = " , " }},
		{"relative host", func(c *Config) { c.XAPI.HostsRaw = "api.x.com" }},
		{"zero timeout", func(c *Config) { c.XAPI.Timeout = 0 }},
		{"negative rate limit delay", func(c *Config) { c.XAPI.RateLimitDelay = -time.Second }},
		{"no accounts", func(c *Config) { c.Fetch.AccountsRaw = "@" }},
		{"empty output dir", func(c *Config) { c.Fetch.OutputDir = "" }},
		{"zero posts threshold", func(c *Config) { c.Fetch.PostsThreshold = 0 }},
		{"zero profile threshold", func(c *Config) { c.Fetch.ProfileThreshold = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"zero cache ttl", func(c *Config) { c.Server.CacheTTL = 0 }},
		{"zero interval", func(c *Config) { c.Scheduler.Interval = 0 }},
		{"unknown timezone", func(c *Config) { c.Render.Timezone = "Mars/Olympus" }},
	}

	base := validConfig()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
