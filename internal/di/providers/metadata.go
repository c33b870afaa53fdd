package providers

import (
	"github.com/samber/do/v2"

	"github.com/monomori/monomori-server/internal/config"
	"github.com/monomori/monomori-server/internal/logger"
	"github.com/monomori/monomori-server/internal/metadata/discogs"
	"github.com/monomori/monomori-server/internal/metadata/googlebooks"
	"github.com/monomori/monomori-server/internal/metadata/tmdb"
	"github.com/monomori/monomori-server/internal/service"
)

// GoogleBooksClientHandle wraps the Google Books client with shutdown capability.
type GoogleBooksClientHandle struct {
	*googlebooks.Client
}

// Shutdown implements do.Shutdownable.
func (h *GoogleBooksClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideGoogleBooksClient provides the Google Books API client.
func ProvideGoogleBooksClient(i do.Injector) (*GoogleBooksClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := googlebooks.New(googlebooks.Options{
		APIKey: cfg.Metadata.GoogleBooksAPIKey,
		Logger: log.WithComponent("googlebooks").Logger,
	})
	logLookup(log, "Google Books", client.HasCredentials())

	return &GoogleBooksClientHandle{Client: client}, nil
}

// TMDBClientHandle wraps the TMDB client with shutdown capability.
type TMDBClientHandle struct {
	*tmdb.Client
}

// Shutdown implements do.Shutdownable.
func (h *TMDBClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideTMDBClient provides the TMDB API client.
func ProvideTMDBClient(i do.Injector) (*TMDBClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := tmdb.New(tmdb.Options{
		APIKey: cfg.Metadata.TMDBAPIKey,
		Logger: log.WithComponent("tmdb").Logger,
	})
	logLookup(log, "TMDB", client.HasCredentials())

	return &TMDBClientHandle{Client: client}, nil
}

// DiscogsClientHandle wraps the Discogs client with shutdown capability.
type DiscogsClientHandle struct {
	*discogs.Client
}

// Shutdown implements do.Shutdownable.
func (h *DiscogsClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideDiscogsClient provides the Discogs API client.
func ProvideDiscogsClient(i do.Injector) (*DiscogsClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := discogs.New(discogs.Options{
		Key:    cfg.Metadata.DiscogsKey,
		Secret: cfg.Metadata.DiscogsSecret,
		Logger: log.WithComponent("discogs").Logger,
	})
	logLookup(log, "Discogs", client.HasCredentials())

	return &DiscogsClientHandle{Client: client}, nil
}

// ProvideBookService provides book lookups.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	client := do.MustInvoke[*GoogleBooksClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewBookService(client.Client, log.Logger), nil
}

// ProvideMovieService provides movie and TV lookups.
func ProvideMovieService(i do.Injector) (*service.MovieService, error) {
	client := do.MustInvoke[*TMDBClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewMovieService(client.Client, log.Logger), nil
}

// ProvideMusicService provides music lookups.
func ProvideMusicService(i do.Injector) (*service.MusicService, error) {
	client := do.MustInvoke[*DiscogsClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewMusicService(client.Client, log.Logger), nil
}

func logLookup(log *logger.Logger, name string, configured bool) {
	if configured {
		log.Info("Lookup client initialized", "service", name)
		return
	}
	log.Warn("Lookup client has no credentials; lookups return nothing", "service", name)
}
