package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/monomori/monomori-server/internal/errors"
)

func (s *Server) registerItemRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{category}/items",
		Summary:     "List items",
		Description: "Returns a category's items, newest first. q filters by the category's search fields; field and value select items whose field equals value.",
		Tags:        []string{"Collections"},
	}, s.handleListItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "countItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{category}/count",
		Summary:     "Count items",
		Description: "Returns the number of items in a category",
		Tags:        []string{"Collections"},
	}, s.handleCountItems)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createItem",
		Method:        http.MethodPost,
		Path:          "/api/v1/collections/{category}/items",
		Summary:       "Create item",
		Description:   "Creates an item with a server-assigned ID",
		Tags:          []string{"Collections"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "getItem",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{category}/items/{id}",
		Summary:     "Get item",
		Description: "Returns an item by ID",
		Tags:        []string{"Collections"},
	}, s.handleGetItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveItem",
		Method:      http.MethodPut,
		Path:        "/api/v1/collections/{category}/items/{id}",
		Summary:     "Save item",
		Description: "Inserts the item under the given ID, replacing any item already stored there",
		Tags:        []string{"Collections"},
	}, s.handleSaveItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateItem",
		Method:      http.MethodPatch,
		Path:        "/api/v1/collections/{category}/items/{id}",
		Summary:     "Update item",
		Description: "Merges the given fields into an existing item. A null attribute removes it.",
		Tags:        []string{"Collections"},
	}, s.handleUpdateItem)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteItem",
		Method:        http.MethodDelete,
		Path:          "/api/v1/collections/{category}/items/{id}",
		Summary:       "Delete item",
		Description:   "Deletes an item and its cached cover. Deleting a missing item succeeds.",
		Tags:          []string{"Collections"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearCollection",
		Method:      http.MethodDelete,
		Path:        "/api/v1/collections/{category}",
		Summary:     "Clear collection",
		Description: "Deletes every item of a category",
		Tags:        []string{"Collections"},
	}, s.handleClearCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "distinctValues",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{category}/values/{field}",
		Summary:     "Distinct values",
		Description: "Returns the sorted distinct values of a text, enum or list field, e.g. every comic series",
		Tags:        []string{"Collections"},
	}, s.handleDistinctValues)
}

// === DTOs ===

// CategoryInput selects a category from the path.
type CategoryInput struct {
	Category string `path:"category" doc:"Category, e.g. books or MOVIES_TV"`
}

// ListItemsInput contains parameters for listing items.
type ListItemsInput struct {
	Category string `path:"category" doc:"Category, e.g. books or MOVIES_TV"`
	Query    string `query:"q" doc:"Case-insensitive substring over the category's search fields"`
	Field    string `query:"field" doc:"Field to match exactly"`
	Value    string `query:"value" doc:"Value the field must equal"`
}

// ItemListResponse contains a list of items.
type ItemListResponse struct {
	Items []ItemResponse `json:"items" doc:"Items"`
	Total int            `json:"total" doc:"Number of items returned"`
}

// ItemListOutput wraps an item list for Huma.
type ItemListOutput struct {
	Body ItemListResponse
}

// CountOutput wraps an item count for Huma.
type CountOutput struct {
	Body struct {
		Count int `json:"count" doc:"Number of items"`
	}
}

// ItemInput selects an item.
type ItemInput struct {
	Category string `path:"category" doc:"Category"`
	ID       string `path:"id" doc:"Item ID"`
}

// CreateItemInput wraps the create request for Huma.
type CreateItemInput struct {
	Category string `path:"category" doc:"Category"`
	Body     ItemRequest
}

// WriteItemInput wraps a replace or update request for Huma.
type WriteItemInput struct {
	Category string `path:"category" doc:"Category"`
	ID       string `path:"id" doc:"Item ID"`
	Body     ItemRequest
}

// ItemOutput wraps one item for Huma.
type ItemOutput struct {
	Body ItemResponse
}

// ClearCollectionOutput reports how many items a bulk delete removed.
type ClearCollectionOutput struct {
	Body struct {
		Removed int64 `json:"removed" doc:"Number of items deleted"`
	}
}

// DistinctValuesInput selects a field.
type DistinctValuesInput struct {
	Category string `path:"category" doc:"Category"`
	Field    string `path:"field" doc:"Field name, or subcategory, barcode or tags"`
}

// DistinctValuesOutput wraps the value list for Huma.
type DistinctValuesOutput struct {
	Body struct {
		Values []string `json:"values" doc:"Distinct values in ascending order"`
	}
}

// === Handlers ===

func (s *Server) handleListItems(ctx context.Context, input *ListItemsInput) (*ItemListOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	if (input.Field == "") != (input.Value == "") {
		return nil, domainerrors.Validation("field and value must be given together")
	}

	var resp ItemListResponse
	if input.Field != "" {
		items, err := s.services.Catalog.FindBy(ctx, category, input.Field, input.Value)
		if err != nil {
			return nil, err
		}
		resp.Items = toItemResponses(items)
	} else {
		items, err := s.services.Catalog.List(ctx, category, input.Query)
		if err != nil {
			return nil, err
		}
		resp.Items = toItemResponses(items)
	}
	resp.Total = len(resp.Items)

	return &ItemListOutput{Body: resp}, nil
}

func (s *Server) handleCountItems(ctx context.Context, input *CategoryInput) (*CountOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	n, err := s.services.Catalog.Count(ctx, category)
	if err != nil {
		return nil, err
	}

	out := &CountOutput{}
	out.Body.Count = n
	return out, nil
}

func (s *Server) handleCreateItem(ctx context.Context, input *CreateItemInput) (*ItemOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	saved, err := s.services.Catalog.Create(ctx, category, input.Body.toItem(category))
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: toItemResponse(saved)}, nil
}

func (s *Server) handleGetItem(ctx context.Context, input *ItemInput) (*ItemOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	item, err := s.services.Catalog.Get(ctx, category, input.ID)
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: toItemResponse(*item)}, nil
}

func (s *Server) handleSaveItem(ctx context.Context, input *WriteItemInput) (*ItemOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	item := input.Body.toItem(category)
	item.ID = input.ID

	saved, err := s.services.Catalog.Save(ctx, category, item)
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: toItemResponse(saved)}, nil
}

func (s *Server) handleUpdateItem(ctx context.Context, input *WriteItemInput) (*ItemOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	existing, err := s.services.Catalog.Get(ctx, category, input.ID)
	if err != nil {
		return nil, err
	}

	updated, err := s.services.Catalog.Update(ctx, category, input.Body.mergeInto(*existing))
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: toItemResponse(updated)}, nil
}

func (s *Server) handleDeleteItem(ctx context.Context, input *ItemInput) (*struct{}, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	if err := s.services.Catalog.Delete(ctx, category, input.ID); err != nil {
		return nil, err
	}

	if s.services.Covers != nil {
		if err := s.services.Covers.DeleteCover(ctx, category, input.ID); err != nil {
			s.logger.Warn("failed to delete cover of deleted item",
				"category", category,
				"item_id", input.ID,
				"error", err,
			)
		}
	}
	return nil, nil
}

func (s *Server) handleClearCollection(ctx context.Context, input *CategoryInput) (*ClearCollectionOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	removed, err := s.services.Catalog.DeleteAll(ctx, category)
	if err != nil {
		return nil, err
	}

	if s.services.Covers != nil {
		if err := s.services.Covers.DeleteCategoryCovers(ctx, category); err != nil {
			s.logger.Warn("failed to delete covers of cleared collection", "category", category, "error", err)
		}
	}

	out := &ClearCollectionOutput{}
	out.Body.Removed = removed
	return out, nil
}

func (s *Server) handleDistinctValues(ctx context.Context, input *DistinctValuesInput) (*DistinctValuesOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	values, err := s.services.Catalog.Distinct(ctx, category, input.Field)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}

	out := &DistinctValuesOutput{}
	out.Body.Values = values
	return out, nil
}
