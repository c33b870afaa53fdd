package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/monomori/monomori-server/internal/service"
)

func (s *Server) registerCoverRoutes() {
	if s.services.Covers == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "cacheCover",
		Method:      http.MethodPost,
		Path:        "/api/v1/collections/{category}/items/{id}/cover",
		Summary:     "Cache cover",
		Description: "Downloads the item's remote image into the local cover store and computes its BlurHash",
		Tags:        []string{"Covers"},
	}, s.handleCacheCover)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCover",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{category}/items/{id}/cover",
		Summary:     "Get cover",
		Description: "Returns the cached cover image of an item",
		Tags:        []string{"Covers"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Cover image",
				Content: map[string]*huma.MediaType{
					"image/jpeg": {},
					"image/png":  {},
					"image/webp": {},
				},
			},
		},
	}, s.handleGetCover)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteCover",
		Method:        http.MethodDelete,
		Path:          "/api/v1/collections/{category}/items/{id}/cover",
		Summary:       "Delete cover",
		Description:   "Drops the cached cover of an item",
		Tags:          []string{"Covers"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteCover)
}

// === DTOs ===

// CoverOutput wraps a cache result for Huma.
type CoverOutput struct {
	Body *service.CoverResult
}

// CoverImageInput selects a cover and carries the client's cached hash.
type CoverImageInput struct {
	Category    string `path:"category" doc:"Category"`
	ID          string `path:"id" doc:"Item ID"`
	IfNoneMatch string `header:"If-None-Match" doc:"ETag of the client's copy"`
}

// CoverImageOutput streams the image bytes. Status is 304 when the
// client's copy is current.
type CoverImageOutput struct {
	Status       int
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	ETag         string `header:"ETag"`
	Body         []byte
}

// === Handlers ===

func (s *Server) handleCacheCover(ctx context.Context, input *ItemInput) (*CoverOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Covers.CacheCover(ctx, category, input.ID)
	if err != nil {
		return nil, err
	}
	return &CoverOutput{Body: result}, nil
}

func (s *Server) handleGetCover(ctx context.Context, input *CoverImageInput) (*CoverImageOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	data, hash, err := s.services.Covers.GetCover(ctx, category, input.ID)
	if err != nil {
		return nil, err
	}

	etag := `"` + hash + `"`
	out := &CoverImageOutput{
		Status:       http.StatusOK,
		CacheControl: CacheCoverPrivate,
		ETag:         etag,
	}
	if input.IfNoneMatch == etag {
		out.Status = http.StatusNotModified
		return out, nil
	}

	out.ContentType = http.DetectContentType(data)
	out.Body = data
	return out, nil
}

func (s *Server) handleDeleteCover(ctx context.Context, input *ItemInput) (*struct{}, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	if err := s.services.Covers.DeleteCover(ctx, category, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
