package googlebooks

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SearchParams configures a volume search.
type SearchParams struct {
	Query      string
	MaxResults int // Default 10, capped at 40
	StartIndex int
}

// Search runs a free-text volume query.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	limit := params.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}
	if limit > maxMaxResults {
		limit = maxMaxResults
	}

	query := url.Values{}
	query.Set("q", params.Query)
	query.Set("maxResults", strconv.Itoa(limit))
	query.Set("startIndex", strconv.Itoa(max(params.StartIndex, 0)))

	return c.search(ctx, "search", query)
}

// SearchByISBN looks a book up by ISBN-10 or ISBN-13.
func (c *Client) SearchByISBN(ctx context.Context, isbn string) (*SearchResult, error) {
	query := url.Values{}
	query.Set("q", "isbn:"+normalizeISBN(isbn))
	return c.search(ctx, "searchByISBN", query)
}

// SearchByTitleAuthor narrows a search to a title and, when given, an author.
func (c *Client) SearchByTitleAuthor(ctx context.Context, title, author string) (*SearchResult, error) {
	q := "intitle:" + strings.TrimSpace(title)
	if a := strings.TrimSpace(author); a != "" {
		q += " inauthor:" + a
	}

	query := url.Values{}
	query.Set("q", q)
	query.Set("maxResults", strconv.Itoa(defaultMaxResults))
	return c.search(ctx, "searchByTitleAuthor", query)
}

// GetVolume fetches a single volume by id.
func (c *Client) GetVolume(ctx context.Context, id string) (*Volume, error) {
	if id == "" {
		return nil, wrapError("getVolume", ErrBadRequest)
	}

	body, err := c.doRequest(ctx, "volumes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, wrapError("getVolume", err)
	}

	var raw rawVolume
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrapError("getVolume", fmt.Errorf("parse response: %w", err))
	}

	v := raw.toVolume()
	return &v, nil
}

func (c *Client) search(ctx context.Context, op string, query url.Values) (*SearchResult, error) {
	body, err := c.doRequest(ctx, "volumes", query)
	if err != nil {
		return nil, wrapError(op, err)
	}

	var resp rawSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError(op, fmt.Errorf("parse response: %w", err))
	}

	result := &SearchResult{
		TotalItems: resp.TotalItems,
		Volumes:    make([]Volume, 0, len(resp.Items)),
	}
	for i := range resp.Items {
		result.Volumes = append(result.Volumes, resp.Items[i].toVolume())
	}

	c.logger.Debug("google books results", "op", op, "count", len(result.Volumes), "total", resp.TotalItems)
	return result, nil
}

// normalizeISBN strips the separators scanners and people add.
func normalizeISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(isbn))
}
