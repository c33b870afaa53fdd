package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/monomori/monomori-server/internal/domain"
)

func (s *Server) registerPreferenceRoutes() {
	if s.services.Preferences == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "listViewModes",
		Method:      http.MethodGet,
		Path:        "/api/v1/preferences/view-modes",
		Summary:     "List view modes",
		Description: "Returns the view mode of every category",
		Tags:        []string{"Preferences"},
	}, s.handleListViewModes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getViewMode",
		Method:      http.MethodGet,
		Path:        "/api/v1/preferences/view-modes/{category}",
		Summary:     "Get view mode",
		Description: "Returns a category's view mode; CARD until one is set",
		Tags:        []string{"Preferences"},
	}, s.handleGetViewMode)

	huma.Register(s.api, huma.Operation{
		OperationID: "setViewMode",
		Method:      http.MethodPut,
		Path:        "/api/v1/preferences/view-modes/{category}",
		Summary:     "Set view mode",
		Description: "Stores a category's view mode",
		Tags:        []string{"Preferences"},
	}, s.handleSetViewMode)
}

// === DTOs ===

// ViewModeResponse is one category's view mode.
type ViewModeResponse struct {
	Category string `json:"category" doc:"Category"`
	ViewMode string `json:"viewMode" doc:"CARD or SPREADSHEET"`
}

// ViewModeOutput wraps a view mode for Huma.
type ViewModeOutput struct {
	Body ViewModeResponse
}

// ViewModesOutput wraps every view mode for Huma.
type ViewModesOutput struct {
	Body struct {
		ViewModes map[string]string `json:"viewModes" doc:"View mode keyed by category"`
	}
}

// SetViewModeInput wraps the set request for Huma.
type SetViewModeInput struct {
	Category string `path:"category" doc:"Category"`
	Body     struct {
		ViewMode string `json:"viewMode" enum:"CARD,SPREADSHEET" doc:"View mode"`
	}
}

// === Handlers ===

func (s *Server) handleListViewModes(ctx context.Context, _ *struct{}) (*ViewModesOutput, error) {
	modes, err := s.services.Preferences.GetAllViewModes(ctx)
	if err != nil {
		return nil, err
	}

	out := &ViewModesOutput{}
	out.Body.ViewModes = make(map[string]string, len(modes))
	for category, mode := range modes {
		out.Body.ViewModes[string(category)] = string(mode)
	}
	return out, nil
}

func (s *Server) handleGetViewMode(ctx context.Context, input *CategoryInput) (*ViewModeOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	mode, err := s.services.Preferences.GetViewMode(ctx, category)
	if err != nil {
		return nil, err
	}
	return viewModeOutput(category, mode), nil
}

func (s *Server) handleSetViewMode(ctx context.Context, input *SetViewModeInput) (*ViewModeOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	mode := domain.ViewMode(input.Body.ViewMode)
	if err := s.services.Preferences.SetViewMode(ctx, category, mode); err != nil {
		return nil, err
	}
	return viewModeOutput(category, mode), nil
}

func viewModeOutput(category domain.Category, mode domain.ViewMode) *ViewModeOutput {
	return &ViewModeOutput{Body: ViewModeResponse{
		Category: string(category),
		ViewMode: string(mode),
	}}
}
