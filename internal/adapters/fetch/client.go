package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stoik/phishguard/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultUserAgent    = "phishguard/1.0"
	DefaultMaxBodyBytes = 5 << 20
)

// Config holds settings for the page fetcher
type Config struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// userAgentTransport stamps every outgoing request with a fixed User-Agent
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}

// Client implements ports.PageFetcher over net/http. Requests are sent
// once; a failed fetch is reported, never retried.
type Client struct {
	http         *http.Client
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewClient creates a new page fetcher. Zero config values fall back to the defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &userAgentTransport{
				base:      http.DefaultTransport,
				userAgent: cfg.UserAgent,
			},
		},
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       logger.Named("fetch"),
	}
}

// Fetch GETs rawURL and returns the response body as text.
// Any status at or above 400 is a failure.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("fetch: %w", domain.ErrEmptyInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("Fetched page",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &domain.FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return string(body), nil
}
