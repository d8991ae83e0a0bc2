package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/communitybridge/cinco-client/internal/poller"
	"github.com/communitybridge/cinco-client/internal/request"
)

// Prefix of every environment variable read by New.
const Prefix = "CINCO"

// Config holds the configuration for the CINCO client.
// Environment variables are automatically parsed from CINCO_ prefix
type Config struct {
	// API root; normalized to end with "/". Required, checked by ResolveDefaults.
	APIURL      string        `envconfig:"API_URL"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// Async job polling
	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"500ms"`
	PollMultiplier  float64       `envconfig:"POLL_MULTIPLIER" default:"1"`
	PollMaxInterval time.Duration `envconfig:"POLL_MAX_INTERVAL" default:"5s"`
	PollJitter      float64       `envconfig:"POLL_JITTER" default:"0"`
	PollMaxAttempts int           `envconfig:"POLL_MAX_ATTEMPTS" default:"240"`
	PollTimeout     time.Duration `envconfig:"POLL_TIMEOUT" default:"2m"`

	// Integration credential for auth/trusted/cas/{lfId}
	TrustedUser     string `envconfig:"TRUSTED_USER"`
	TrustedPassword string `envconfig:"TRUSTED_PASSWORD"`

	// Request queue
	QueueShards    int           `envconfig:"QUEUE_SHARDS" default:"4"`
	QueueSize      int           `envconfig:"QUEUE_SIZE" default:"128"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`

	Debug bool `envconfig:"DEBUG" default:"false"`
}

// New creates a new Config by parsing environment variables
// Environment variables should be prefixed with CINCO_
// Example: CINCO_API_URL, CINCO_POLL_INTERVAL
func New() (*Config, error) {
	cfg, err := Load("")
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("api_url", cfg.APIURL).
		Dur("http_timeout", cfg.HTTPTimeout).
		Dur("poll_interval", cfg.PollInterval).
		Int("poll_max_attempts", cfg.PollMaxAttempts).
		Dur("poll_timeout", cfg.PollTimeout).
		Bool("trusted_credentials_present", cfg.HasTrustedCredentials()).
		Int("queue_shards", cfg.QueueShards).
		Msg("Configuration loaded")

	return &cfg, nil
}

// Load reads every CINCO_ setting without logging. A non-empty apiURL
// replaces CINCO_API_URL; one of the two must be set.
func Load(apiURL string) (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewForTesting returns a valid config pointing at apiURL with fast polling.
func NewForTesting(apiURL string) *Config {
	cfg := &Config{
		APIURL:          apiURL,
		HTTPTimeout:     5 * time.Second,
		PollInterval:    5 * time.Millisecond,
		PollMultiplier:  1,
		PollMaxInterval: 50 * time.Millisecond,
		PollMaxAttempts: 100,
		PollTimeout:     5 * time.Second,
		QueueShards:     2,
		QueueSize:       16,
		EnqueueTimeout:  50 * time.Millisecond,
	}
	if err := cfg.ResolveDefaults(); err != nil {
		panic(err)
	}
	return cfg
}

// ResolveDefaults normalizes APIURL and validates the poll policy.
func (c *Config) ResolveDefaults() error {
	root, err := request.ParseRoot(c.APIURL)
	if err != nil {
		return err
	}
	c.APIURL = root.String()

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}
	if err := c.PollPolicy().Validate(); err != nil {
		return err
	}
	if (c.TrustedUser == "") != (c.TrustedPassword == "") {
		return fmt.Errorf("TRUSTED_USER and TRUSTED_PASSWORD must be set together")
	}
	return nil
}

// PollPolicy returns the poll settings as a poller.Policy.
func (c *Config) PollPolicy() poller.Policy {
	return poller.Policy{
		Interval:    c.PollInterval,
		Multiplier:  c.PollMultiplier,
		MaxInterval: c.PollMaxInterval,
		Jitter:      c.PollJitter,
		MaxAttempts: c.PollMaxAttempts,
		Timeout:     c.PollTimeout,
	}
}

// HasTrustedCredentials reports whether the integration credential is set.
func (c *Config) HasTrustedCredentials() bool {
	return c.TrustedUser != "" && c.TrustedPassword != ""
}
