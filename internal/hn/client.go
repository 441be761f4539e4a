package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pders01/hnsearch/internal/config"
	"github.com/pders01/hnsearch/internal/debuglog"
)

const (
	defaultUserAgent = "hnsearch/1.0 (https://github.com/pders01/hnsearch)"
	defaultTimeout   = 30 * time.Second
	maxBodySize      = 8 << 20
)

// Client performs search requests against the Algolia API.
type Client struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewClient builds a client from the api section of cfg. A nil cfg yields
// the package defaults with no rate limit.
func NewClient(cfg *config.Config) *Client {
	timeout := defaultTimeout
	userAgent := defaultUserAgent
	limiter := rate.NewLimiter(rate.Inf, 0)

	if cfg != nil {
		if cfg.API.HTTPTimeout > 0 {
			timeout = cfg.API.HTTPTimeout
		}
		if cfg.API.UserAgent != "" {
			userAgent = cfg.API.UserAgent
		}
		if cfg.API.RequestsPerSecond > 0 {
			burst := cfg.API.Burst
			if burst < 1 {
				burst = 1
			}
			limiter = rate.NewLimiter(rate.Limit(cfg.API.RequestsPerSecond), burst)
		}
	}

	return &Client{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		limiter:   limiter,
	}
}

// Fetch issues a single GET for url and decodes the search payload. Every
// failure is a *TransportError or a *DecodeError; nothing is retried.
func (c *Client) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	debuglog.WithFields(map[string]interface{}{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).String(),
	}).Debugf("GET %s", url)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	var page Page
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&page); err != nil {
		return nil, &DecodeError{URL: url, Err: err}
	}
	if page.Hits == nil {
		return nil, &DecodeError{URL: url, Err: fmt.Errorf("payload has no hits")}
	}

	return &page, nil
}
