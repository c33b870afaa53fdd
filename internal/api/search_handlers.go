package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/monomori/monomori-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	if s.services.Search == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search the catalogue",
		Description: "Full-text search across every category with facets and highlights",
		Tags:        []string{"Search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID:   "reindex",
		Method:        http.MethodPost,
		Path:          "/api/v1/search/reindex",
		Summary:       "Rebuild search index",
		Description:   "Drops the full-text index and indexes every stored item again",
		Tags:          []string{"Search"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleReindex)
}

// === DTOs ===

// SearchInput contains search parameters.
type SearchInput struct {
	Query      string   `query:"q" doc:"Search text; empty matches everything"`
	Categories []string `query:"category" doc:"Categories to include, comma-separated"`
	Tags       []string `query:"tags" doc:"Items carrying any of these tags"`
	Genres     []string `query:"genres" doc:"Items in any of these genres"`
	Barcode    string   `query:"barcode" doc:"Exact barcode"`
	MinYear    int      `query:"minYear" minimum:"0" doc:"Earliest year"`
	MaxYear    int      `query:"maxYear" minimum:"0" doc:"Latest year"`
	Limit      int      `query:"limit" minimum:"0" maximum:"100" doc:"Page size (default 20)"`
	Offset     int      `query:"offset" minimum:"0" doc:"Results to skip"`
	Sort       string   `query:"sort" enum:"relevance,title,recent,year" default:"relevance" doc:"Sort field"`
	Order      string   `query:"order" enum:"asc,desc" default:"desc" doc:"Sort order"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Tags = input.Tags
	params.Genres = input.Genres
	params.Barcode = input.Barcode
	params.MinYear = input.MinYear
	params.MaxYear = input.MaxYear
	params.Offset = input.Offset
	if input.Limit > 0 {
		params.Limit = min(input.Limit, MaxListLimit)
	}
	if input.Sort != "" {
		params.SortBy = input.Sort
	}
	if input.Order != "" {
		params.SortOrder = input.Order
	}

	for _, raw := range input.Categories {
		category, err := parseCategory(raw)
		if err != nil {
			return nil, err
		}
		params.Categories = append(params.Categories, category)
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}

func (s *Server) handleReindex(ctx context.Context, _ *struct{}) (*struct{}, error) {
	if err := s.services.Search.ReindexAll(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

