// Package scrape fetches web pages and extracts tables and paragraphs
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/models"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 2
	DefaultMaxBytes  = 20 << 20
)

// Client fetches pages over HTTP
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *rate.Limiter
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets requests per second
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithMaxBytes caps the size of a fetched body
func WithMaxBytes(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new scrape client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
		maxBytes:   DefaultMaxBytes,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig creates a client from the [clients.scrape] section
func NewClientFromConfig(cfg common.ScrapeConfig, logger *common.Logger) *Client {
	opts := []ClientOption{
		WithUserAgent(cfg.UserAgent),
		WithTimeout(cfg.GetTimeout()),
		WithRateLimit(cfg.RateLimit),
		WithMaxBytes(cfg.MaxBytes),
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return NewClient(opts...)
}

// ErrBodyTooLarge is returned when a response exceeds the configured size cap
var ErrBodyTooLarge = errors.New("response body too large")

// HTTPError is returned for non-2xx responses
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// FetchDocument downloads url and returns its body and content type
func (c *Client) FetchDocument(ctx context.Context, url string) (*models.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug().Str("url", url).Msg("Fetching page")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, url, c.maxBytes)
	}

	return &models.Document{
		URL:         url,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// FetchTables downloads url and parses every <table> on the page
func (c *Client) FetchTables(ctx context.Context, url string) ([]models.HTMLTable, error) {
	doc, err := c.FetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseTables(bytes.NewReader(doc.Body))
}

var (
	_ interfaces.TableFetcher    = (*Client)(nil)
	_ interfaces.DocumentFetcher = (*Client)(nil)
)
