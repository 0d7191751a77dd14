// Package signals fetches the external cost and trend scores blended into
// ranking. Fetches never fail outward: any transport error, non-2xx status,
// or malformed body degrades to the neutral default score.
package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Neutral is the score substituted when a signal cannot be fetched.
const Neutral = 5

// Default client settings.
const (
	DefaultTimeout           = 3 * time.Second
	DefaultRequestsPerSecond = 10
)

// Config holds the signal client configuration. Empty URLs disable the
// corresponding fetch and yield the neutral default.
type Config struct {
	CostURL           string
	TrendURL          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// Client fetches cost and trend scores with a bounded timeout and a shared
// outbound rate limit.
type Client struct {
	costURL    string
	trendURL   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a signal client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		costURL:    cfg.CostURL,
		trendURL:   cfg.TrendURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(math.Ceil(cfg.RequestsPerSecond))),
		logger:     cfg.Logger,
	}
}

type costResponse struct {
	Cost float64 `json:"cost"`
}

type trendResponse struct {
	Trend float64 `json:"trend"`
}

// CostScore returns the cost score for an idea, clamped to [1,10].
func (c *Client) CostScore(ctx context.Context, idea string) int {
	var resp costResponse
	if err := c.fetch(ctx, c.costURL, idea, &resp); err != nil {
		c.logger.Warn("cost signal unavailable, using neutral default", "idea", idea, "error", err)
		return Neutral
	}
	// Cheaper technologies score higher.
	return clampScore(math.Round(10 - resp.Cost/1000))
}

// TrendScore returns the trend score for an idea, clamped to [1,10].
func (c *Client) TrendScore(ctx context.Context, idea string) int {
	var resp trendResponse
	if err := c.fetch(ctx, c.trendURL, idea, &resp); err != nil {
		c.logger.Warn("trend signal unavailable, using neutral default", "idea", idea, "error", err)
		return Neutral
	}
	// Trend interest arrives on a 0-100 scale.
	return clampScore(math.Round(resp.Trend / 10))
}

func (c *Client) fetch(ctx context.Context, baseURL, idea string, out any) error {
	if baseURL == "" {
		return fmt.Errorf("no endpoint configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := baseURL
	if u, err := url.Parse(baseURL); err == nil {
		q := u.Query()
		q.Set("q", idea)
		u.RawQuery = q.Encode()
		reqURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func clampScore(v float64) int {
	return int(math.Min(10, math.Max(1, v)))
}
