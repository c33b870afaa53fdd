// Package discogs is a client for the Discogs database API.
package discogs

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
	DefaultBaseURL = "https://api.discogs.com/"

	// UserAgent identifies the application; Discogs rejects requests without one.
	UserAgent = "Monomori/1.0.0 +https://github.com/wasabimayonnaise/monomori"

	defaultTimeout = 30 * time.Second

	defaultPerPage = 20
	maxPerPage     = 100
)

// Options configures a Client.
type Options struct {
	Key     string
	Secret  string
	BaseURL string // Defaults to DefaultBaseURL
	Logger  *slog.Logger
}

// Client is a rate-limited Discogs API client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	key     string
	secret  string
	baseURL string
}

// New creates a new Discogs client.
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
		// 60 authenticated requests per minute
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:  logger,
		key:     opts.Key,
		secret:  opts.Secret,
		baseURL: baseURL,
	}
}

// HasCredentials reports whether both consumer key and secret are set.
func (c *Client) HasCredentials() bool {
	return strings.TrimSpace(c.key) != "" && strings.TrimSpace(c.secret) != ""
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
	query.Set("key", c.key)
	query.Set("secret", c.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.discogs.v2.discogs+json")
	req.Header.Set("User-Agent", UserAgent)

	c.logger.Debug("discogs request", "path", path)

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
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
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
