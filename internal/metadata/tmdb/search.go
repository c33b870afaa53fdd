package tmdb

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"
)

// SearchMovies searches movies by title.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*SearchResult, error) {
	return c.search(ctx, "searchMovies", "search/movie", query, page)
}

// SearchTV searches TV shows by name.
func (c *Client) SearchTV(ctx context.Context, query string, page int) (*SearchResult, error) {
	return c.search(ctx, "searchTV", "search/tv", query, page)
}

// SearchMulti searches movies, shows and people at once. Each result
// carries its MediaType.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (*SearchResult, error) {
	return c.search(ctx, "searchMulti", "search/multi", query, page)
}

// GetMovie fetches a movie with credits.
func (c *Client) GetMovie(ctx context.Context, id int) (*Details, error) {
	return c.details(ctx, "getMovie", "movie/"+strconv.Itoa(id), MediaTypeMovie)
}

// GetTV fetches a TV show with credits.
func (c *Client) GetTV(ctx context.Context, id int) (*Details, error) {
	return c.details(ctx, "getTV", "tv/"+strconv.Itoa(id), MediaTypeTV)
}

func (c *Client) search(ctx context.Context, op, path, q string, page int) (*SearchResult, error) {
	query := url.Values{}
	query.Set("query", q)
	query.Set("page", strconv.Itoa(max(page, 1)))
	query.Set("include_adult", "false")

	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, wrapError(op, err)
	}

	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, wrapError(op, fmt.Errorf("parse response: %w", err))
	}
	if result.Results == nil {
		result.Results = []Title{}
	}

	c.logger.Debug("tmdb results", "op", op, "count", len(result.Results), "total", result.TotalResults)
	return &result, nil
}

func (c *Client) details(ctx context.Context, op, path, mediaType string) (*Details, error) {
	query := url.Values{}
	query.Set("append_to_response", "credits")

	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, wrapError(op, err)
	}

	var d Details
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, wrapError(op, fmt.Errorf("parse response: %w", err))
	}
	d.MediaType = mediaType
	return &d, nil
}
