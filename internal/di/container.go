// Package di assembles the monomori server from its providers.
package di

import (
	"github.com/samber/do/v2"

	"github.com/monomori/monomori-server/internal/config"
	"github.com/monomori/monomori-server/internal/di/providers"
	"github.com/monomori/monomori-server/internal/logger"
	"github.com/monomori/monomori-server/internal/media/images"
	"github.com/monomori/monomori-server/internal/service"
)

//nolint:gochecknoglobals // Provider groups
var (
	core = do.Package(
		do.Lazy(providers.ProvideConfig),
		do.Lazy(providers.ProvideLogger),
	)
	storage = do.Package(
		do.Lazy(providers.ProvideSSEManager),
		do.Lazy(providers.ProvideDatabase),
		do.Lazy(providers.ProvidePreferenceStore),
		do.Lazy(providers.ProvideCoverStorage),
		do.Lazy(providers.ProvideSearchIndex),
	)
	lookups = do.Package(
		do.Lazy(providers.ProvideGoogleBooksClient),
		do.Lazy(providers.ProvideTMDBClient),
		do.Lazy(providers.ProvideDiscogsClient),
		do.Lazy(providers.ProvideBookService),
		do.Lazy(providers.ProvideMovieService),
		do.Lazy(providers.ProvideMusicService),
	)
	services = do.Package(
		do.Lazy(providers.ProvideSearchService),
		do.Lazy(providers.ProvideCatalogService),
		do.Lazy(providers.ProvidePreferenceService),
		do.Lazy(providers.ProvideCoverService),
	)
	transport = do.Package(
		do.Lazy(providers.ProvideHTTPServer),
		do.Lazy(providers.ProvideMDNSService),
	)
)

// NewContainer registers every provider. Nothing is built until Bootstrap.
func NewContainer() *do.RootScope {
	return do.New(core, storage, lookups, services, transport)
}

// Bootstrap builds the services in dependency order and starts the
// listeners. The search service is wired into the database before the
// HTTP server exists, so every write reaches the index.
func Bootstrap(injector *do.RootScope) error {
	steps := []func(do.Injector) error{
		build[*config.Config],
		build[*logger.Logger],
		build[*providers.SSEManagerHandle],
		build[*providers.DatabaseHandle],
		build[*providers.PreferenceStoreHandle],
		build[*images.Storage],
		build[*providers.SearchIndexHandle],
		build[*service.SearchService],
		build[*service.CatalogService],
		build[*service.PreferenceService],
		build[*service.CoverService],
		build[*service.BookService],
		build[*service.MovieService],
		build[*service.MusicService],
		build[*providers.HTTPServerHandle],
		build[*providers.MDNSServiceHandle],
	}
	for _, step := range steps {
		if err := step(injector); err != nil {
			return err
		}
	}

	providers.StartSearchBackfill(injector)
	return nil
}

func build[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
