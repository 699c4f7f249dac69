// Package client provides the NASA NeoWs browse client used to fetch pages of
// near-earth objects and map them to canonical orbital records.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/neo-orbit-api/pkg/logging"
	"github.com/Sternrassler/neo-orbit-api/pkg/metrics"
	"github.com/Sternrassler/neo-orbit-api/pkg/orbit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the NeoWs browse endpoint.
	DefaultBaseURL = "https://api.nasa.gov/neo/rest/v1/neo/browse"

	// DemoAPIKey is NASA's public rate-limited key, used when none is configured.
	DemoAPIKey = "DEMO_KEY"

	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 20 * time.Second

	// maxErrorBody caps how much of an error response is kept for the message.
	maxErrorBody = 512
)

// Prometheus metrics for NeoWs client operations.
var (
	neowsRequestsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "neows_requests_total",
		Help: "Total NeoWs browse requests by HTTP status",
	}, []string{"status"})

	neowsRequestDuration = promauto.With(metrics.Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "neows_request_duration_seconds",
		Help:    "NeoWs browse request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20},
	})

	neowsErrorsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "neows_errors_total",
		Help: "Total NeoWs errors by class",
	}, []string{"class"})
)

// Config holds the client configuration.
type Config struct {
	// BaseURL of the browse endpoint. Tests point it at a mock server.
	BaseURL string

	// APIKey sent as the api_key query parameter.
	APIKey string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per page request.
	Timeout time.Duration
}

// DefaultConfig returns the production configuration. An empty apiKey falls
// back to DemoAPIKey.
func DefaultConfig(apiKey string) Config {
	if apiKey == "" {
		apiKey = DemoAPIKey
	}
	return Config{
		BaseURL:   DefaultBaseURL,
		APIKey:    apiKey,
		UserAgent: "neo-orbit-api/0.1.0",
		Timeout:   DefaultTimeout,
	}
}

// Client fetches browse pages from NeoWs. It is safe for concurrent use and
// holds no per-request state.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// browseResponse is the subset of the browse payload we read.
type browseResponse struct {
	NearEarthObjects []orbit.BrowseObject `json:"near_earth_objects"`
}

// New creates a new NeoWs client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = DemoAPIKey
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("%w: user-agent is required", ErrInvalidConfig)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be > 0 (got %s)", ErrInvalidConfig, cfg.Timeout)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be an absolute http(s) URL", ErrInvalidConfig, cfg.BaseURL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		config:  cfg,
		logger:  logging.NewLogger("neows-client"),
	}, nil
}

// BrowsePage fetches one browse page and maps every object it contains.
// Failures are returned as *APIError; nothing is retried.
func (c *Client) BrowsePage(ctx context.Context, page, size int) ([]orbit.Record, error) {
	startTime := time.Now()
	defer func() {
		neowsRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(page, size), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Int("page", page).
		Int("size", size).
		Msg("Executing NeoWs browse request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		neowsRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, c.fail(&APIError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        redact(err),
		}, page)
	}
	defer resp.Body.Close()

	neowsRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := resp.Status
		if len(body) > 0 {
			msg = fmt.Sprintf("%s: %s", resp.Status, body)
		}
		return nil, c.fail(&APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    msg,
		}, page)
	}

	var payload browseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, c.fail(&APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "malformed browse payload",
			Err:        err,
		}, page)
	}

	records := make([]orbit.Record, 0, len(payload.NearEarthObjects))
	for _, obj := range payload.NearEarthObjects {
		records = append(records, orbit.FromBrowseObject(obj))
	}

	c.logger.Debug().
		Int("page", page).
		Int("items", len(records)).
		Dur("duration", time.Since(startTime)).
		Msg("NeoWs browse page fetched")

	return records, nil
}

// pageURL builds the browse URL for one page, preserving any query already
// present on the base URL.
func (c *Client) pageURL(page, size int) string {
	u := *c.baseURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("api_key", c.config.APIKey)
	u.RawQuery = q.Encode()
	return u.String()
}

// fail records and logs an upstream error.
func (c *Client) fail(apiErr *APIError, page int) error {
	neowsErrorsTotal.WithLabelValues(string(apiErr.ErrorClass)).Inc()
	c.logger.Warn().
		Int("page", page).
		Int("status", apiErr.StatusCode).
		Str("error_class", string(apiErr.ErrorClass)).
		Msg("NeoWs request error")
	return apiErr
}

// redact strips the request URL (which carries api_key) from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
