// Package config loads crawler configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/caselawlab/courtcrawl/pkg/courtlistener"
)

// Default configuration values.
const (
	// DefaultDocketPageDelay is the minimum delay between docket listing
	// page requests. One second mirrors the politeness delay the API's
	// own documentation suggests for bulk clients.
	DefaultDocketPageDelay = 1 * time.Second

	// DefaultResourceDelay is the minimum delay between cluster/opinion
	// fetches. Resource fetches dominate a crawl, so they run at twice
	// the listing rate.
	DefaultResourceDelay = 500 * time.Millisecond

	// DefaultRequestTimeout bounds one request round trip.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultCacheTTL bounds how long cached resource bodies are served.
	DefaultCacheTTL = 1 * time.Hour

	// DefaultUserAgent identifies the crawler in HTTP requests.
	DefaultUserAgent = "courtcrawl/0.1.0 (+https://github.com/caselawlab/courtcrawl)"
)

// Common configuration errors. Both are fatal before any request.
var (
	// ErrMissingToken is returned when no API token is configured.
	ErrMissingToken = errors.New("api token is required (set token in config or COURTLISTENER_TOKEN)")

	// ErrInvalidBaseURL is returned for a malformed API base URL.
	ErrInvalidBaseURL = errors.New("invalid api base url")
)

// Duration wraps time.Duration with YAML support for values like "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full crawler configuration.
type Config struct {
	// API access
	BaseURL   string `yaml:"base_url"`
	Token     string `yaml:"token"`
	UserAgent string `yaml:"user_agent"`

	// Crawl scope
	Court     string `yaml:"court"`
	DocketCap int    `yaml:"docket_cap"` // 0 = unbounded

	// Pacing and transport
	DocketPageDelay Duration `yaml:"docket_page_delay"`
	ResourceDelay   Duration `yaml:"resource_delay"`
	RequestTimeout  Duration `yaml:"request_timeout"`
	Concurrency     int      `yaml:"concurrency"`

	// Optional Redis resource cache
	RedisAddr string   `yaml:"redis_addr"`
	CacheTTL  Duration `yaml:"cache_ttl"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`

	// Outputs
	CSVPath  string `yaml:"csv_path"`
	JSONPath string `yaml:"json_path"`
	TextDir  string `yaml:"text_dir"`
}

// Default returns the default configuration. The token must still be
// supplied by file, flag, or environment.
func Default() Config {
	return Config{
		BaseURL:         courtlistener.DefaultBaseURL,
		UserAgent:       DefaultUserAgent,
		DocketPageDelay: Duration(DefaultDocketPageDelay),
		ResourceDelay:   Duration(DefaultResourceDelay),
		RequestTimeout:  Duration(DefaultRequestTimeout),
		Concurrency:     1,
		CacheTTL:        Duration(DefaultCacheTTL),
		LogLevel:        "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then environment overrides. An empty path skips the file step.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Token = getEnv("COURTLISTENER_TOKEN", cfg.Token)
	cfg.BaseURL = getEnv("COURTLISTENER_BASE_URL", cfg.BaseURL)
	cfg.Court = getEnv("COURTLISTENER_COURT", cfg.Court)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)

	return cfg, nil
}

// Validate checks the fatal preconditions of a run.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}

	return nil
}

// getEnv returns the environment value for key, or fallback when unset.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
