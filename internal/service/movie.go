package service

import (
	"cmp"
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/metadata/tmdb"
)

// castLimit is how many billed performers a mapped item keeps.
const castLimit = 5

// MovieService looks movies and shows up on TMDB and maps them to items.
// Like BookService it never fails; problems are logged and yield empty
// results.
type MovieService struct {
	client *tmdb.Client
	logger *slog.Logger
}

// NewMovieService creates a new movie lookup service.
func NewMovieService(client *tmdb.Client, logger *slog.Logger) *MovieService {
	return &MovieService{
		client: client,
		logger: logger,
	}
}

// Available reports whether an API key is configured.
func (s *MovieService) Available() bool {
	return s.client.HasCredentials()
}

// SearchMovies searches films. TMDB pages are a fixed 20 results, so only
// page.Number applies.
func (s *MovieService) SearchMovies(ctx context.Context, query string, page Page) []domain.Item {
	return s.search(ctx, "movie", query, page, tmdb.MediaTypeMovie, s.client.SearchMovies)
}

// SearchTV searches shows.
func (s *MovieService) SearchTV(ctx context.Context, query string, page Page) []domain.Item {
	return s.search(ctx, "tv", query, page, tmdb.MediaTypeTV, s.client.SearchTV)
}

// SearchMulti searches films and shows together. People in the results are
// dropped.
func (s *MovieService) SearchMulti(ctx context.Context, query string, page Page) []domain.Item {
	return s.search(ctx, "multi", query, page, "", s.client.SearchMulti)
}

// MovieDetails fetches a film with its credits.
func (s *MovieService) MovieDetails(ctx context.Context, id int) *domain.Item {
	return s.details(ctx, "movie", id, s.client.GetMovie)
}

// TVDetails fetches a show with its credits.
func (s *MovieService) TVDetails(ctx context.Context, id int) *domain.Item {
	return s.details(ctx, "tv", id, s.client.GetTV)
}

func (s *MovieService) search(
	ctx context.Context,
	kind, query string,
	page Page,
	mediaType string,
	fn func(context.Context, string, int) (*tmdb.SearchResult, error),
) []domain.Item {
	if !s.Available() || strings.TrimSpace(query) == "" {
		return []domain.Item{}
	}

	result, err := fn(ctx, query, page.number())
	if err != nil {
		s.logger.Warn("movie search failed", "kind", kind, "query", query, "error", err)
		return []domain.Item{}
	}

	items := make([]domain.Item, 0, len(result.Results))
	for i := range result.Results {
		t := &result.Results[i]
		if t.MediaType == "" {
			t.MediaType = mediaType
		}
		if t.MediaType != tmdb.MediaTypeMovie && t.MediaType != tmdb.MediaTypeTV {
			continue
		}
		if item, ok := mapSafely(s.logger, "tmdb", func() domain.Item { return MovieFromTitle(t) }); ok {
			items = append(items, item)
		}
	}
	return items
}

func (s *MovieService) details(
	ctx context.Context,
	kind string,
	id int,
	fn func(context.Context, int) (*tmdb.Details, error),
) *domain.Item {
	if !s.Available() || id <= 0 {
		return nil
	}

	d, err := fn(ctx, id)
	if err != nil {
		s.logger.Warn("movie details failed", "kind", kind, "id", id, "error", err)
		return nil
	}
	item, ok := mapSafely(s.logger, "tmdb", func() domain.Item { return MovieFromDetails(d) })
	if !ok {
		return nil
	}
	return &item
}

// MovieFromTitle maps a search hit to an unsaved movie item.
func MovieFromTitle(t *tmdb.Title) domain.Item {
	item := domain.NewItem(domain.CategoryMoviesTV)
	attrs := item.Attributes

	attrs.SetText("title", cmp.Or(t.Title, t.Name, "Unknown"))
	attrs.SetText("overview", t.Overview)
	setTMDBImages(&item, t.PosterPath, t.BackdropPath)
	setReleaseDate(attrs, "theatricalReleaseDate", cmp.Or(t.ReleaseDate, t.FirstAirDate))
	attrs.SetText("tmdbId", strconv.Itoa(t.ID))
	attrs.SetText("mediaType", t.MediaType)
	return item
}

// MovieFromDetails maps a full record to an unsaved movie item.
func MovieFromDetails(d *tmdb.Details) domain.Item {
	item := domain.NewItem(domain.CategoryMoviesTV)
	attrs := item.Attributes

	attrs.SetText("title", d.DisplayTitle())
	attrs.SetText("overview", d.Overview)
	setTMDBImages(&item, d.PosterPath, d.BackdropPath)
	setReleaseDate(attrs, "theatricalReleaseDate", cmp.Or(d.ReleaseDate, d.FirstAirDate))
	attrs.SetText("director", d.Director())
	attrs.SetList("cast", d.TopCast(castLimit))

	genres := d.GenreNames()
	attrs.SetList("genres", genres)
	if len(genres) > 0 {
		attrs.SetText("genre", genres[0])
	}

	attrs.SetPositiveInt("runtime", int64(d.RuntimeMinutes()))
	attrs.SetText("tmdbId", strconv.Itoa(d.ID))
	attrs.SetText("imdbId", d.IMDbID)
	attrs.SetText("mediaType", d.MediaType)
	return item
}

func setTMDBImages(item *domain.Item, posterPath, backdropPath string) {
	poster := tmdb.ImageURL(posterPath, tmdb.PosterSizeMedium)
	item.Attributes.SetText("posterImageUrl", poster)
	item.Attributes.SetText("backdropImageUrl", tmdb.ImageURL(backdropPath, tmdb.PosterSizeLarge))
	item.PrimaryImage = poster
}

func setReleaseDate(attrs domain.Attributes, name, raw string) {
	if raw == "" {
		return
	}
	if t, err := domain.ParseDate(raw); err == nil {
		attrs.SetTime(name, t)
	}
}
