package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/monomori/monomori-server/internal/domain"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns every category with its field schema, item count and view mode",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)
}

// === DTOs ===

// FieldResponse describes one category field.
type FieldResponse struct {
	Name     string   `json:"name" doc:"Attribute name"`
	Kind     string   `json:"kind" doc:"text, int, float, bool, time, list or enum"`
	Required bool     `json:"required,omitempty" doc:"Whether the field must be non-blank"`
	Values   []string `json:"values,omitempty" doc:"Accepted values of an enum field"`
}

// CategoryResponse describes a category.
type CategoryResponse struct {
	Category      string          `json:"category" doc:"Category name"`
	Slug          string          `json:"slug" doc:"URL form of the name"`
	TitleField    string          `json:"titleField" doc:"Field holding the display title"`
	Subcategories []string        `json:"subcategories,omitempty" doc:"Accepted subcategories; empty means free text"`
	Fields        []FieldResponse `json:"fields" doc:"Category fields"`
	SearchFields  []string        `json:"searchFields" doc:"Fields a collection search matches"`
	Count         int             `json:"count" doc:"Number of items"`
	ViewMode      string          `json:"viewMode" doc:"CARD or SPREADSHEET"`
}

// ListCategoriesOutput wraps the category list for Huma.
type ListCategoriesOutput struct {
	Body struct {
		Categories []CategoryResponse `json:"categories" doc:"Categories in display order"`
	}
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	counts, err := s.services.Catalog.Counts(ctx)
	if err != nil {
		return nil, err
	}

	modes := map[domain.Category]domain.ViewMode{}
	if s.services.Preferences != nil {
		if modes, err = s.services.Preferences.GetAllViewModes(ctx); err != nil {
			return nil, err
		}
	}

	schemas := s.services.Catalog.Schemas()
	out := &ListCategoriesOutput{}
	out.Body.Categories = make([]CategoryResponse, 0, len(schemas))
	for _, schema := range schemas {
		out.Body.Categories = append(out.Body.Categories, toCategoryResponse(schema, counts[schema.Category], modes[schema.Category]))
	}
	return out, nil
}

func toCategoryResponse(schema *domain.Schema, count int, mode domain.ViewMode) CategoryResponse {
	if mode == "" {
		mode = domain.DefaultViewMode
	}

	resp := CategoryResponse{
		Category:     string(schema.Category),
		Slug:         schema.Category.Slug(),
		TitleField:   schema.TitleField,
		Fields:       make([]FieldResponse, len(schema.Fields)),
		SearchFields: schema.SearchFields,
		Count:        count,
		ViewMode:     string(mode),
	}
	if schema.Subcategory != nil {
		resp.Subcategories = schema.Subcategory.Values
	}
	for i, f := range schema.Fields {
		resp.Fields[i] = FieldResponse{
			Name:     f.Name,
			Kind:     f.Kind.String(),
			Required: f.Required,
		}
		if f.Enum != nil {
			resp.Fields[i].Values = f.Enum.Values
		}
	}
	return resp
}
