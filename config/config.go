package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	// Server configuration
	Port        string `env:"PORT" env-default:"8090"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// Attendee API (upstream)
	AttendeeAPIBase    string        `env:"ATTENDEE_API_BASE"`
	AttendeeAPIEventID string        `env:"ATTENDEE_API_EVENT_ID"`
	AttendeeAPIToken   string        `env:"ATTENDEE_API_TOKEN"`
	UpstreamTimeout    time.Duration `env:"UPSTREAM_TIMEOUT" env-default:"8s"`
	LookupTimeout      time.Duration `env:"LOOKUP_TIMEOUT" env-default:"8s"`

	// Circuit breaker around the attendee API
	BreakerMaxRequests  uint32        `env:"BREAKER_MAX_REQUESTS" env-default:"20"`
	BreakerFailureRatio float64       `env:"BREAKER_FAILURE_RATIO" env-default:"0.6"`
	BreakerOpenTimeout  time.Duration `env:"BREAKER_OPEN_TIMEOUT" env-default:"30s"`

	// Redis configuration, empty disables rate limiting
	RedisURL           string `env:"REDIS_URL"`
	RateLimitPerMinute int64  `env:"RATE_LIMIT_PER_MINUTE" env-default:"30"`

	// PubNub configuration, empty publish key disables transfer notifications
	PubNubPublishKey   string `env:"PUBNUB_PUBLISH_KEY"`
	PubNubSubscribeKey string `env:"PUBNUB_SUBSCRIBE_KEY"`
	PubNubSecretKey    string `env:"PUBNUB_SECRET_KEY"`
	PubNubUserID       string `env:"PUBNUB_USER_ID" env-default:"ticket-lookup"`
	TransferChannel    string `env:"TRANSFER_CHANNEL" env-default:"ticket-transfers"`

	// Monitoring
	EnableMetrics bool `env:"ENABLE_METRICS" env-default:"true"`
}

// LoadConfig reads the configuration from the environment. Missing upstream
// settings are logged but never fatal: lookups fail at request time instead.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		slog.Error("config: falling back to defaults", "error", err)
	}
	if missing := cfg.MissingUpstream(); len(missing) > 0 {
		slog.Error("config: attendee api not configured, lookups will fail", "missing", strings.Join(missing, ","))
	}
	return cfg
}

// Load reads the configuration from the environment and reports parse errors.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return cfg, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

// MissingUpstream lists the required attendee API variables that are unset.
func (c *Config) MissingUpstream() []string {
	var missing []string
	if strings.TrimSpace(c.AttendeeAPIBase) == "" {
		missing = append(missing, "ATTENDEE_API_BASE")
	}
	if strings.TrimSpace(c.AttendeeAPIEventID) == "" {
		missing = append(missing, "ATTENDEE_API_EVENT_ID")
	}
	return missing
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
