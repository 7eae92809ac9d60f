// Package archon fetches recommended talent builds from Archon.gg pages
// and extracts the wowhead talent-calculator code embedded in them.
package archon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://www.archon.gg/wow/builds"
	defaultUserAgent = "archonup/1.0"

	// Archon pages can be slow to render server-side for cold builds.
	defaultTimeout = 180 * time.Second
)

// Client fetches Archon.gg build pages. All outbound requests pass through
// the shared rate limiter before hitting the network; concurrency bounding
// is the caller's concern.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom builds root URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimiter sets the shared request rate limiter. The same limiter
// instance must be passed to every client sharing a request budget.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "archon")
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a new Archon.gg client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchBuild fetches the page for a target and extracts its build code.
// The result is always a value; errors never propagate past this boundary.
func (c *Client) FetchBuild(ctx context.Context, target Target) Outcome {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return TransportError(fmt.Errorf("rate limiter: %w", err))
		}
	}

	url := c.baseURL + target.Path()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return TransportError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransportError(fmt.Errorf("fetch %s: %w", url, err))
	}
	defer resp.Body.Close()

	// Archon serves HTTP 500 for builds with insufficient data. That is
	// the expected "no data yet" signal, not a transport failure.
	if resp.StatusCode == http.StatusInternalServerError {
		if c.log != nil {
			c.log.Debug("no build data", "target", target.String())
		}
		return NotAvailable()
	}

	if resp.StatusCode != http.StatusOK {
		return TransportError(fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status))
	}

	code, err := extractBuildCode(resp.Body, target.Class, target.Spec)
	if err != nil {
		return TransportError(fmt.Errorf("parse %s: %w", url, err))
	}
	if code == "" {
		if c.log != nil {
			c.log.Debug("no talent link in page", "target", target.String())
		}
		return NotAvailable()
	}

	if c.log != nil {
		c.log.Debug("build fetched", "target", target.String(), "duration_ms", time.Since(start).Milliseconds())
	}
	return Found(code)
}
