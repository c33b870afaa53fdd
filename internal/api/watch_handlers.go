package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/http/response"
	"github.com/monomori/monomori-server/internal/sse"
)

// CountUpdate is the payload of a "count" watch event.
type CountUpdate struct {
	Count int `json:"count"`
}

// registerWatchRoutes mounts live query streams. Each one sends the
// current result as soon as it opens and again after every change to the
// collection, as text/event-stream.
//
//	GET /api/v1/collections/{category}/watch?q=   event "items"
//	GET /api/v1/collections/{category}/items/{id}/watch   event "item", null once deleted
//	GET /api/v1/collections/{category}/count/watch   event "count"
func (s *Server) registerWatchRoutes() {
	s.router.Get("/api/v1/collections/{category}/watch", s.watchItems)
	s.router.Get("/api/v1/collections/{category}/items/{id}/watch", s.watchItem)
	s.router.Get("/api/v1/collections/{category}/count/watch", s.watchCount)
}

func (s *Server) watchItems(w http.ResponseWriter, r *http.Request) {
	category, err := parseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	updates, err := s.services.Catalog.WatchList(r.Context(), category, r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sse.ServeUpdates(w, r, "items", updates, func(items []domain.Item) any {
		return toItemResponses(items)
	}, s.logger)
}

func (s *Server) watchItem(w http.ResponseWriter, r *http.Request) {
	category, err := parseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	updates, err := s.services.Catalog.WatchItem(r.Context(), category, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sse.ServeUpdates(w, r, "item", updates, func(item *domain.Item) any {
		if item == nil {
			return nil
		}
		return toItemResponse(*item)
	}, s.logger)
}

func (s *Server) watchCount(w http.ResponseWriter, r *http.Request) {
	category, err := parseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	updates, err := s.services.Catalog.WatchCount(r.Context(), category)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sse.ServeUpdates(w, r, "count", updates, func(n int) any {
		return CountUpdate{Count: n}
	}, s.logger)
}

// writeError answers a plain handler the way huma operations answer:
// known errors keep their status and code, anything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if apiErr, ok := fromKnownError(err); ok {
		response.Coded(w, apiErr.status, apiErr.Code, apiErr.Message, apiErr.Details, s.logger)
		return
	}
	s.logger.Error("watch failed", "error", err)
	response.Error(w, http.StatusInternalServerError, "internal server error", s.logger)
}
