// Package googlebooks is a client for the Google Books volumes API.
package googlebooks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://www.googleapis.com/books/v1/"

	defaultTimeout = 30 * time.Second

	defaultMaxResults = 10
	maxMaxResults     = 40
)

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string // Defaults to DefaultBaseURL
	Logger  *slog.Logger
}

// Client is a rate-limited Google Books API client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	apiKey  string
	baseURL string
}

// New creates a new Google Books client.
func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		// Google allows far more, but a scanner burst should not exhaust the daily quota
		limiter: rate.NewLimiter(rate.Limit(2), 5),
		logger:  logger,
		apiKey:  opts.APIKey,
		baseURL: baseURL,
	}
}

// HasCredentials reports whether an API key is configured.
func (c *Client) HasCredentials() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// doRequest executes a GET against path with rate limiting.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("google books request", "path", path, "q", query.Get("q"))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
