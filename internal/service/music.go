package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/metadata/discogs"
)

// MusicService looks releases up on Discogs and maps them to items. It
// needs both the consumer key and secret; without them every lookup is
// empty.
type MusicService struct {
	client *discogs.Client
	logger *slog.Logger
}

// NewMusicService creates a new music lookup service.
func NewMusicService(client *discogs.Client, logger *slog.Logger) *MusicService {
	return &MusicService{
		client: client,
		logger: logger,
	}
}

// Available reports whether the key and secret are configured.
func (s *MusicService) Available() bool {
	return s.client.HasCredentials()
}

// SearchOnline runs a free-text release search.
func (s *MusicService) SearchOnline(ctx context.Context, query string, page Page) []domain.Item {
	if strings.TrimSpace(query) == "" {
		return []domain.Item{}
	}
	return s.search(ctx, "query", query, func() (*discogs.SearchResult, error) {
		return s.client.Search(ctx, discogs.SearchParams{
			Query:   query,
			Type:    discogs.TypeRelease,
			PerPage: page.Size,
			Page:    page.number(),
		})
	})
}

// SearchByBarcode finds releases carrying a barcode.
func (s *MusicService) SearchByBarcode(ctx context.Context, barcode string) []domain.Item {
	if strings.TrimSpace(barcode) == "" {
		return []domain.Item{}
	}
	return s.search(ctx, "barcode", barcode, func() (*discogs.SearchResult, error) {
		return s.client.SearchByBarcode(ctx, barcode)
	})
}

// SearchByArtistRelease finds releases by artist and title.
func (s *MusicService) SearchByArtistRelease(ctx context.Context, artist, release string) []domain.Item {
	if strings.TrimSpace(artist) == "" && strings.TrimSpace(release) == "" {
		return []domain.Item{}
	}
	return s.search(ctx, "artist", artist+" / "+release, func() (*discogs.SearchResult, error) {
		return s.client.SearchByArtistRelease(ctx, artist, release)
	})
}

// ReleaseDetails fetches a release with its tracklist.
func (s *MusicService) ReleaseDetails(ctx context.Context, id int) *domain.Item {
	return s.details(ctx, "release", id, s.client.GetRelease)
}

// MasterDetails fetches a master release.
func (s *MusicService) MasterDetails(ctx context.Context, id int) *domain.Item {
	return s.details(ctx, "master", id, s.client.GetMaster)
}

func (s *MusicService) search(ctx context.Context, kind, term string, fn func() (*discogs.SearchResult, error)) []domain.Item {
	if !s.Available() || ctx.Err() != nil {
		return []domain.Item{}
	}

	result, err := fn()
	if err != nil {
		s.logger.Warn("music search failed", "kind", kind, "term", term, "error", err)
		return []domain.Item{}
	}

	items := make([]domain.Item, 0, len(result.Results))
	for i := range result.Results {
		if item, ok := mapSafely(s.logger, "discogs", func() domain.Item { return MusicFromSummary(&result.Results[i]) }); ok {
			items = append(items, item)
		}
	}
	return items
}

func (s *MusicService) details(
	ctx context.Context,
	kind string,
	id int,
	fn func(context.Context, int) (*discogs.Release, error),
) *domain.Item {
	if !s.Available() || id <= 0 {
		return nil
	}

	r, err := fn(ctx, id)
	if err != nil {
		s.logger.Warn("music details failed", "kind", kind, "id", id, "error", err)
		return nil
	}
	item, ok := mapSafely(s.logger, "discogs", func() domain.Item { return MusicFromRelease(r) })
	if !ok {
		return nil
	}
	return &item
}

// MusicFromSummary maps a search hit to an unsaved music item. Discogs
// titles search hits as "Artist - Release".
func MusicFromSummary(r *discogs.SearchSummary) domain.Item {
	item := domain.NewItem(domain.CategoryMusic)
	attrs := item.Attributes

	artist, album, found := strings.Cut(r.Title, " - ")
	if !found {
		artist, album = "", r.Title
	}
	attrs.SetText("albumTitle", strings.TrimSpace(album))
	if artist = strings.TrimSpace(artist); artist != "" {
		attrs.SetList("artists", []string{artist})
	}

	attrs.SetText("label", first(r.Label))
	attrs.SetText("genre", first(r.Genre))
	attrs.SetList("genres", r.Genre)
	attrs.SetText("upc", first(r.Barcode))
	attrs.SetText("catalogNumber", r.CatNo)
	attrs.SetText("countryOfRelease", r.Country)
	attrs.SetText("formatDetails", strings.Join(r.Format, ", "))
	if year, err := strconv.Atoi(strings.TrimSpace(r.Year)); err == nil {
		attrs.SetPositiveInt("year", int64(year))
	}
	attrs.SetText("discogsId", strconv.Itoa(r.ID))

	cover := r.CoverURL()
	attrs.SetText("coverImageUrl", cover)
	item.PrimaryImage = cover
	item.Barcode = first(r.Barcode)
	item.Subcategory = musicSubcategory(r.Format...)
	return item
}

// MusicFromRelease maps a release or master to an unsaved music item.
func MusicFromRelease(r *discogs.Release) domain.Item {
	item := domain.NewItem(domain.CategoryMusic)
	attrs := item.Attributes

	attrs.SetText("albumTitle", r.Title)
	attrs.SetList("artists", r.ArtistNames())
	attrs.SetList("tracklist", r.TracklistLines())
	attrs.SetPositiveInt("trackCount", int64(len(r.Tracklist)))
	attrs.SetList("genres", r.Genres)
	attrs.SetText("genre", first(r.Genres))
	attrs.SetPositiveInt("year", int64(r.Year))
	attrs.SetText("countryOfRelease", r.Country)
	setReleaseDate(attrs, "releaseDate", r.Released)
	attrs.SetText("notes", r.Notes)

	if len(r.Labels) > 0 {
		attrs.SetText("label", r.Labels[0].Name)
		attrs.SetText("catalogNumber", r.Labels[0].CatNo)
	}
	if len(r.Formats) > 0 {
		attrs.SetText("formatDetails", r.Formats[0].Name)
		item.Subcategory = musicSubcategory(r.Formats[0].Name)
	}

	upc := r.Barcode()
	attrs.SetText("upc", upc)
	item.Barcode = upc

	cover := r.CoverURL()
	attrs.SetText("coverImageUrl", cover)
	item.PrimaryImage = cover

	attrs.SetText("discogsId", strconv.Itoa(r.ID))
	attrs.SetText("discogsUrl", r.URI)
	return item
}

// musicSubcategory picks the first Discogs format name that is also a
// music subcategory.
func musicSubcategory(formats ...string) string {
	for _, f := range formats {
		if sub := domain.MusicSubcategories.Parse(f); sub != "" {
			return sub
		}
	}
	return ""
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}
