package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	XAPI      XAPIConfig      `yaml:"x_api"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	AWS       AWSConfig       `yaml:"aws"`
	Render    RenderConfig    `yaml:"render"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
}

// XAPIConfig holds settings for the upstream post API.
type XAPIConfig struct {
	Bearer         string        `yaml:"bearer"           env:"TWITTER_BEARER"`
	HostsRaw       string        `yaml:"hosts"            env:"X_API_HOSTS"            env-default:"https://api.twitter.com,https://api.x.com"`
	Timeout        time.Duration `yaml:"timeout"          env:"X_API_TIMEOUT"          env-default:"10s"`
	RateLimitDelay time.Duration `yaml:"rate_limit_delay" env:"X_API_RATE_LIMIT_DELAY" env-default:"10s"`
}

// Hosts returns the configured base URLs in failover order.
func (c XAPIConfig) Hosts() []string {
	return splitList(c.HostsRaw)
}

// FetchConfig controls the artifact refresh pipeline.
type FetchConfig struct {
	AccountsRaw      string        `yaml:"accounts"          env:"FETCH_ACCOUNTS"          env-default:"ilife_nara,ion_mugi"`
	OutputDir        string        `yaml:"output_dir"        env:"FETCH_OUTPUT_DIR"        env-default:"."`
	PostsThreshold   time.Duration `yaml:"posts_threshold"   env:"FETCH_POSTS_THRESHOLD"   env-default:"10m"`
	ProfileThreshold time.Duration `yaml:"profile_threshold" env:"FETCH_PROFILE_THRESHOLD" env-default:"24h"`
	PlaceholderText  string        `yaml:"placeholder_text"  env:"FETCH_PLACEHOLDER_TEXT"`
}

// Accounts returns the tracked handles with any leading @ removed.
func (c FetchConfig) Accounts() []string {
	raw := splitList(c.AccountsRaw)
	out := make([]string, 0, len(raw))
	for _, h := range raw {
		h = strings.TrimPrefix(h, "@")
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

// ServerConfig holds proxy HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"PORT"                    env-default:"3000"`
	AdminToken      string        `yaml:"admin_token"      env:"ADMIN_TOKEN"`
	CacheTTL        time.Duration `yaml:"cache_ttl"        env:"PROXY_CACHE_TTL"         env-default:"1h"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// SchedulerConfig holds updater settings.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"15m"`
}

// AWSConfig holds the optional AWS-backed integrations. Empty values disable them.
type AWSConfig struct {
	Region      string `yaml:"region"       env:"AWS_REGION"`
	ParamPrefix string `yaml:"param_prefix" env:"PARAM_PREFIX"`
	RunTable    string `yaml:"run_table"    env:"RUN_TABLE"`
}

// Enabled reports whether any AWS integration is configured.
func (c AWSConfig) Enabled() bool {
	return c.ParamPrefix != "" || c.RunTable != ""
}

// RenderConfig holds widget rendering settings.
type RenderConfig struct {
	Timezone      string `yaml:"timezone"       env:"RENDER_TIMEZONE"       env-default:"Local"`
	FallbackImage string `yaml:"fallback_image" env:"RENDER_FALLBACK_IMAGE" env-default:"/images/default-avatar.png"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	AllowedMethods string `yaml:"allowed_methods" env:"CORS_ALLOWED_METHODS" env-default:"GET,POST,OPTIONS"`
	AllowedHeaders string `yaml:"allowed_headers" env:"CORS_ALLOWED_HEADERS" env-default:"Content-Type,X-Admin-Token,X-Request-Id"`
	MaxAge         int    `yaml:"max_age"         env:"CORS_MAX_AGE"         env-default:"86400"`
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
