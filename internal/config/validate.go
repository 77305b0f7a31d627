package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks the loaded configuration. Load calls it automatically.
// The bearer credential is not checked here because it may come from SSM.
func (c *Config) Validate() error {
	hosts := c.XAPI.Hosts()
	if len(hosts) == 0 {
		return fmt.Errorf("x_api.hosts must list at least one base URL")
	}
	for _, h := range hosts {
		u, err := url.Parse(h)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("x_api.hosts: invalid base URL %q", h)
		}
	}
	if c.XAPI.Timeout <= 0 {
		return fmt.Errorf("x_api.timeout must be > 0 (got %s)", c.XAPI.Timeout)
	}
	if c.XAPI.RateLimitDelay < 0 {
		return fmt.Errorf("x_api.rate_limit_delay must be >= 0 (got %s)", c.XAPI.RateLimitDelay)
	}

	if len(c.Fetch.Accounts()) == 0 {
		return fmt.Errorf("fetch.accounts must list at least one handle")
	}
	if c.Fetch.OutputDir == "" {
		return fmt.Errorf("fetch.output_dir must not be empty")
	}
	if err := positive("fetch.posts_threshold", c.Fetch.PostsThreshold); err != nil {
		return err
	}
	if err := positive("fetch.profile_threshold", c.Fetch.ProfileThreshold); err != nil {
		return err
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}
	if err := positive("server.cache_ttl", c.Server.CacheTTL); err != nil {
		return err
	}
	if err := positive("scheduler.interval", c.Scheduler.Interval); err != nil {
		return err
	}

	if _, err := c.Render.Location(); err != nil {
		return fmt.Errorf("render.timezone: %w", err)
	}

	return nil
}

// Location resolves the configured time zone for card timestamps.
func (c RenderConfig) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

func positive(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be > 0 (got %s)", name, d)
	}
	return nil
}
