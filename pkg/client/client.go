// Package client provides the authenticated CourtListener HTTP client with
// error classification, structured logging, and request metrics.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for API client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtlistener_requests_total",
		Help: "Total CourtListener requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "courtlistener_request_duration_seconds",
		Help:    "CourtListener request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtlistener_errors_total",
		Help: "Total CourtListener errors by class",
	}, []string{"class"})
)

// Client is the authenticated CourtListener HTTP client. It is the only
// shared transport in a crawl run and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Token is the CourtListener API token, sent as
	// "Authorization: Token <token>". Required.
	Token string

	// UserAgent identifies the crawler in requests.
	UserAgent string

	// Timeout bounds a single request round trip, worst-case stalls
	// included.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration for the given token.
func DefaultConfig(token string) Config {
	return Config{
		Token:     token,
		UserAgent: "courtcrawl/0.1.0 (+https://github.com/caselawlab/courtcrawl)",
		Timeout:   30 * time.Second,
	}
}

// New creates a new CourtListener client. A missing token is a
// configuration error and fails before any request is issued.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig(cfg.Token).UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "courtlistener-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// GetJSON issues a single authenticated GET to rawURL and decodes the JSON
// body into out. A network failure or non-2xx status is returned as an
// *APIError; the caller decides whether the node is skipped or the run
// aborts.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	endpoint := endpointLabel(rawURL)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+c.config.Token)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", rawURL).
		Msg("Executing CourtListener request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Warn().Err(err).Str("url", rawURL).Msg("HTTP request failed")
		return &APIError{
			URL:   rawURL,
			Class: ErrorClassNetwork,
			Err:   err,
		}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		class := Classify(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()

		c.logger.Warn().
			Str("url", rawURL).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("CourtListener request error")

		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		return &APIError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    resp.Status,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &APIError{
			URL:   rawURL,
			Class: ErrorClassDecode,
			Err:   err,
		}
	}

	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// endpointLabel maps a request URL to a low-cardinality metrics label:
// the resource collection ("dockets", "clusters", "opinions") or "other".
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "other"
	}
	for _, seg := range strings.Split(u.Path, "/") {
		switch seg {
		case "dockets", "clusters", "opinions":
			return seg
		}
	}
	return "other"
}
