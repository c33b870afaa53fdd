package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/monomori/monomori-server/internal/domain"
	domainerrors "github.com/monomori/monomori-server/internal/errors"
	"github.com/monomori/monomori-server/internal/service"
)

// Lookups never persist anything: a client saves a result by posting it to
// the collection's items route.
func (s *Server) registerLookupRoutes() {
	if s.services.Books != nil {
		huma.Register(s.api, huma.Operation{
			OperationID: "lookupBooks",
			Method:      http.MethodGet,
			Path:        "/api/v1/lookup/books",
			Summary:     "Search books online",
			Description: "Searches the book database by free text, ISBN, or title and author",
			Tags:        []string{"Lookup"},
		}, s.handleLookupBooks)

		huma.Register(s.api, huma.Operation{
			OperationID: "lookupBook",
			Method:      http.MethodGet,
			Path:        "/api/v1/lookup/books/{id}",
			Summary:     "Get book details",
			Description: "Returns one volume from the book database",
			Tags:        []string{"Lookup"},
		}, s.handleLookupBook)
	}

	if s.services.Movies != nil {
		for _, op := range []struct {
			id, path, summary string
			search            func(context.Context, string, service.Page) []domain.Item
		}{
			{"lookupMovies", "/api/v1/lookup/movies", "Search movies online", s.services.Movies.SearchMovies},
			{"lookupTV", "/api/v1/lookup/tv", "Search TV shows online", s.services.Movies.SearchTV},
			{"lookupMulti", "/api/v1/lookup/multi", "Search movies and TV shows online", s.services.Movies.SearchMulti},
		} {
			huma.Register(s.api, huma.Operation{
				OperationID: op.id,
				Method:      http.MethodGet,
				Path:        op.path,
				Summary:     op.summary,
				Description: "Searches the movie database by free text",
				Tags:        []string{"Lookup"},
			}, s.textLookup(op.search))
		}

		huma.Register(s.api, huma.Operation{
			OperationID: "lookupMovie",
			Method:      http.MethodGet,
			Path:        "/api/v1/lookup/movies/{id}",
			Summary:     "Get movie details",
			Description: "Returns a movie with director, cast and runtime",
			Tags:        []string{"Lookup"},
		}, s.numericDetails(s.services.Movies.MovieDetails))

		huma.Register(s.api, huma.Operation{
			OperationID: "lookupShow",
			Method:      http.MethodGet,
			Path:        "/api/v1/lookup/tv/{id}",
			Summary:     "Get TV show details",
			Description: "Returns a TV show with cast and episode runtime",
			Tags:        []string{"Lookup"},
		}, s.numericDetails(s.services.Movies.TVDetails))
	}

	if s.services.Music != nil {
		huma.Register(s.api, huma.Operation{
			OperationID: "lookupMusic",
			Method:      http.MethodGet,
			Path:        "/api/v1/lookup/music",
			Summary:     "Search music online",
			Description: "Searches the music database by free text, barcode, or artist and release",
			Tags:        []string{"Lookup"},
		}, s.handleLookupMusic)

		huma.Register(s.api, huma.Operation{
			OperationID: "lookupRelease",
			Method:      http.MethodGet,
			Path:        "/api/v1/lookup/music/releases/{id}",
			Summary:     "Get release details",
			Description: "Returns a release with tracklist, label and format",
			Tags:        []string{"Lookup"},
		}, s.numericDetails(s.services.Music.ReleaseDetails))

		huma.Register(s.api, huma.Operation{
			OperationID: "lookupMaster",
			Method:      http.MethodGet,
			Path:        "/api/v1/lookup/music/masters/{id}",
			Summary:     "Get master release details",
			Description: "Returns the master release that groups a record's versions",
			Tags:        []string{"Lookup"},
		}, s.numericDetails(s.services.Music.MasterDetails))
	}
}

// === DTOs ===

// LookupResponse holds remote results mapped to unsaved items.
type LookupResponse struct {
	Available bool           `json:"available" doc:"False when the remote service has no credentials configured"`
	Items     []ItemResponse `json:"items" doc:"Results; empty when nothing matched or the service failed"`
}

// LookupOutput wraps lookup results for Huma.
type LookupOutput struct {
	Body LookupResponse
}

// PageInput selects a page of free-text lookup results.
type PageInput struct {
	Page     int `query:"page" minimum:"0" doc:"1-based page number (default 1)"`
	PageSize int `query:"pageSize" minimum:"0" maximum:"40" doc:"Results per page; movie lookups use a fixed page size"`
}

func (p PageInput) page() service.Page {
	return service.Page{Number: p.Page, Size: p.PageSize}
}

// TextLookupInput is a free-text lookup.
type TextLookupInput struct {
	PageInput
	Query string `query:"q" doc:"Search text"`
}

// BookLookupInput selects one of the book search modes. Paging applies to
// free-text searches only.
type BookLookupInput struct {
	PageInput
	Query  string `query:"q" doc:"Free text"`
	ISBN   string `query:"isbn" doc:"ISBN-10 or ISBN-13"`
	Title  string `query:"title" doc:"Title, combined with author"`
	Author string `query:"author" doc:"Author, combined with title"`
}

// MusicLookupInput selects one of the music search modes. Paging applies to
// free-text searches only.
type MusicLookupInput struct {
	PageInput
	Query   string `query:"q" doc:"Free text"`
	Barcode string `query:"barcode" doc:"UPC or EAN"`
	Artist  string `query:"artist" doc:"Artist, combined with release"`
	Release string `query:"release" doc:"Release title, combined with artist"`
}

// StringIDInput selects a remote record by string ID.
type StringIDInput struct {
	ID string `path:"id" doc:"Remote ID"`
}

// NumericIDInput selects a remote record by numeric ID.
type NumericIDInput struct {
	ID int `path:"id" minimum:"1" doc:"Remote ID"`
}

// === Handlers ===

func (s *Server) handleLookupBooks(ctx context.Context, input *BookLookupInput) (*LookupOutput, error) {
	books := s.services.Books

	var items []domain.Item
	switch {
	case strings.TrimSpace(input.ISBN) != "":
		items = books.SearchByISBN(ctx, input.ISBN)
	case strings.TrimSpace(input.Title) != "":
		items = books.SearchByTitleAuthor(ctx, input.Title, input.Author)
	case strings.TrimSpace(input.Query) != "":
		items = books.SearchOnline(ctx, input.Query, input.page())
	default:
		return nil, domainerrors.Validation("one of q, isbn or title is required")
	}

	return lookupOutput(books.Available(), items), nil
}

func (s *Server) handleLookupBook(ctx context.Context, input *StringIDInput) (*ItemOutput, error) {
	return detailOutput(s.services.Books.Details(ctx, input.ID), input.ID)
}

func (s *Server) handleLookupMusic(ctx context.Context, input *MusicLookupInput) (*LookupOutput, error) {
	music := s.services.Music

	var items []domain.Item
	switch {
	case strings.TrimSpace(input.Barcode) != "":
		items = music.SearchByBarcode(ctx, input.Barcode)
	case strings.TrimSpace(input.Artist) != "" || strings.TrimSpace(input.Release) != "":
		items = music.SearchByArtistRelease(ctx, input.Artist, input.Release)
	case strings.TrimSpace(input.Query) != "":
		items = music.SearchOnline(ctx, input.Query, input.page())
	default:
		return nil, domainerrors.Validation("one of q, barcode, artist or release is required")
	}

	return lookupOutput(music.Available(), items), nil
}

// textLookup adapts a free-text movie search to a handler.
func (s *Server) textLookup(search func(context.Context, string, service.Page) []domain.Item) func(context.Context, *TextLookupInput) (*LookupOutput, error) {
	return func(ctx context.Context, input *TextLookupInput) (*LookupOutput, error) {
		if strings.TrimSpace(input.Query) == "" {
			return nil, domainerrors.Validation("q is required")
		}
		return lookupOutput(s.services.Movies.Available(), search(ctx, input.Query, input.page())), nil
	}
}

// numericDetails adapts a detail fetch by numeric ID to a handler.
func (s *Server) numericDetails(fetch func(context.Context, int) *domain.Item) func(context.Context, *NumericIDInput) (*ItemOutput, error) {
	return func(ctx context.Context, input *NumericIDInput) (*ItemOutput, error) {
		return detailOutput(fetch(ctx, input.ID), input.ID)
	}
}

func lookupOutput(available bool, items []domain.Item) *LookupOutput {
	return &LookupOutput{Body: LookupResponse{
		Available: available,
		Items:     toItemResponses(items),
	}}
}

// detailOutput turns a nil detail result into not found. Remote failures
// and missing credentials also yield nil, so the message stays generic.
func detailOutput(item *domain.Item, id any) (*ItemOutput, error) {
	if item == nil {
		return nil, domainerrors.NotFoundf("no remote record %v", id)
	}
	return &ItemOutput{Body: toItemResponse(*item)}, nil
}
