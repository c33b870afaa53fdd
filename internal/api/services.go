package api

import "github.com/monomori/monomori-server/internal/service"

// Services groups the services the API server calls. Catalog is required;
// routes of any other nil service are not registered.
type Services struct {
	Catalog     *service.CatalogService
	Preferences *service.PreferenceService
	Books       *service.BookService
	Movies      *service.MovieService
	Music       *service.MusicService
	Search      *service.SearchService
	Covers      *service.CoverService
}
