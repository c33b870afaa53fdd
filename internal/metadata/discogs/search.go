package discogs

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"
)

// SearchParams configures a database search.
type SearchParams struct {
	Query   string
	Type    string // Empty searches every type
	PerPage int    // Default 20, capped at 100
	Page    int
}

// Search runs a free-text database search.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	perPage := params.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	query := url.Values{}
	query.Set("q", params.Query)
	if params.Type != "" {
		query.Set("type", params.Type)
	}
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(max(params.Page, 1)))

	return c.search(ctx, "search", query)
}

// SearchByBarcode finds releases carrying a barcode.
func (c *Client) SearchByBarcode(ctx context.Context, barcode string) (*SearchResult, error) {
	query := url.Values{}
	query.Set("barcode", barcode)
	query.Set("type", TypeRelease)
	return c.search(ctx, "searchByBarcode", query)
}

// SearchByArtistRelease finds releases by artist and release title.
func (c *Client) SearchByArtistRelease(ctx context.Context, artist, release string) (*SearchResult, error) {
	query := url.Values{}
	query.Set("artist", artist)
	query.Set("release_title", release)
	query.Set("type", TypeRelease)
	query.Set("per_page", strconv.Itoa(defaultPerPage))
	return c.search(ctx, "searchByArtistRelease", query)
}

// GetRelease fetches a release.
func (c *Client) GetRelease(ctx context.Context, id int) (*Release, error) {
	return c.release(ctx, "getRelease", "releases/"+strconv.Itoa(id))
}

// GetMaster fetches a master release.
func (c *Client) GetMaster(ctx context.Context, id int) (*Release, error) {
	return c.release(ctx, "getMaster", "masters/"+strconv.Itoa(id))
}

func (c *Client) search(ctx context.Context, op string, query url.Values) (*SearchResult, error) {
	body, err := c.doRequest(ctx, "database/search", query)
	if err != nil {
		return nil, wrapError(op, err)
	}

	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, wrapError(op, fmt.Errorf("parse response: %w", err))
	}
	if result.Results == nil {
		result.Results = []SearchSummary{}
	}

	c.logger.Debug("discogs results", "op", op, "count", len(result.Results), "items", result.Pagination.Items)
	return &result, nil
}

func (c *Client) release(ctx context.Context, op, path string) (*Release, error) {
	body, err := c.doRequest(ctx, path, nil)
	if err != nil {
		return nil, wrapError(op, err)
	}

	var r Release
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, wrapError(op, fmt.Errorf("parse response: %w", err))
	}
	return &r, nil
}
