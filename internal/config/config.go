package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP API
	ListenAddr     string `envconfig:"LISTEN_ADDR" default:":8090"`
	RateLimitRPS   int    `envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst int    `envconfig:"RATE_LIMIT_BURST" default:"200"`
	CORSOrigins    string `envconfig:"CORS_ORIGINS"` // comma-separated; empty allows all
	TLSCert        string `envconfig:"TLS_CERT"`
	TLSKey         string `envconfig:"TLS_KEY"`

	// Local persistence. ":memory:" keeps everything in process.
	DBPath string `envconfig:"DB_PATH" default:"mission-control.db"`

	// Memory and agents REST collaborator (optional, empty disables)
	UpstreamURL     string        `envconfig:"UPSTREAM_URL"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`
	UpstreamRetries int           `envconfig:"UPSTREAM_RETRIES" default:"3"`
	AgentFilesTTL   time.Duration `envconfig:"AGENT_FILES_TTL" default:"1m"`

	// Boards
	ActivityRetention int    `envconfig:"ACTIVITY_RETENTION" default:"500"`
	ViewCacheSize     int    `envconfig:"VIEW_CACHE_SIZE" default:"64"`
	SeedFile          string `envconfig:"SEED_FILE"`

	// Notifications
	SlackWebhookURL string `envconfig:"SLACK_WEBHOOK_URL"`
	NotifyHistory   int    `envconfig:"NOTIFY_HISTORY" default:"100"`
}

// Development reports whether the service runs in development mode.
func (c *Config) Development() bool {
	return strings.EqualFold(c.Environment, "development")
}

// CORSOriginList returns the parsed list of allowed origins, or nil when
// any origin is allowed.
func (c *Config) CORSOriginList() []string {
	if c.CORSOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, o := range parts {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// UpstreamEnabled returns true if the memory/agents collaborator is configured.
func (c *Config) UpstreamEnabled() bool {
	return c.UpstreamURL != ""
}

// SlackEnabled returns true if failure notifications go to a Slack webhook.
func (c *Config) SlackEnabled() bool {
	return c.SlackWebhookURL != ""
}

// TLSEnabled returns true if both halves of the key pair are set.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// Validate rejects combinations envconfig cannot express.
func (c *Config) Validate() error {
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return fmt.Errorf("TLS_CERT and TLS_KEY must be set together")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.UpstreamRetries < 1 {
		return fmt.Errorf("UPSTREAM_RETRIES must be at least 1, got %d", c.UpstreamRetries)
	}
	if c.ActivityRetention < 1 {
		return fmt.Errorf("ACTIVITY_RETENTION must be at least 1, got %d", c.ActivityRetention)
	}
	return nil
}

// Public is the subset of configuration safe to show to API clients.
type Public struct {
	Environment       string   `json:"environment"`
	UpstreamEnabled   bool     `json:"upstreamEnabled"`
	UpstreamURL       string   `json:"upstreamUrl,omitempty"`
	SlackEnabled      bool     `json:"slackEnabled"`
	ActivityRetention int      `json:"activityRetention"`
	ViewCacheSize     int      `json:"viewCacheSize"`
	CORSOrigins       []string `json:"corsOrigins,omitempty"`
	TLS               bool     `json:"tls"`
}

// Public returns the redacted view of c.
func (c *Config) Public() Public {
	return Public{
		Environment:       c.Environment,
		UpstreamEnabled:   c.UpstreamEnabled(),
		UpstreamURL:       c.UpstreamURL,
		SlackEnabled:      c.SlackEnabled(),
		ActivityRetention: c.ActivityRetention,
		ViewCacheSize:     c.ViewCacheSize,
		CORSOrigins:       c.CORSOriginList(),
		TLS:               c.TLSEnabled(),
	}
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadWithPrefix("")
}

// LoadWithPrefix reads configuration with a prefix.
func LoadWithPrefix(prefix string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config with prefix %s: %w", prefix, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
