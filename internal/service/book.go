package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/metadata"
	"github.com/monomori/monomori-server/internal/metadata/googlebooks"
)

// Google Books page sizes; the API rejects more than 40 results per request.
const (
	defaultBookPageSize = 10
	maxBookPageSize     = 40
)

// BookService looks books up on Google Books and maps volumes to items.
// Lookups never fail: a missing API key, a remote error or an unusable
// payload all yield an empty result and a log line.
type BookService struct {
	client *googlebooks.Client
	logger *slog.Logger
}

// NewBookService creates a new book lookup service.
func NewBookService(client *googlebooks.Client, logger *slog.Logger) *BookService {
	return &BookService{
		client: client,
		logger: logger,
	}
}

// Available reports whether an API key is configured.
func (s *BookService) Available() bool {
	return s.client.HasCredentials()
}

// SearchOnline runs a free-text search and returns unsaved book items.
func (s *BookService) SearchOnline(ctx context.Context, query string, page Page) []domain.Item {
	if !s.Available() || strings.TrimSpace(query) == "" {
		return []domain.Item{}
	}

	page.Size = min(page.Size, maxBookPageSize)
	result, err := s.client.Search(ctx, googlebooks.SearchParams{
		Query:      query,
		MaxResults: page.Size,
		StartIndex: page.offset(defaultBookPageSize),
	})
	if err != nil {
		s.logger.Warn("book search failed", "query", query, "error", err)
		return []domain.Item{}
	}
	return s.toItems(result)
}

// SearchByISBN finds editions carrying an ISBN.
func (s *BookService) SearchByISBN(ctx context.Context, isbn string) []domain.Item {
	if !s.Available() || strings.TrimSpace(isbn) == "" {
		return []domain.Item{}
	}

	result, err := s.client.SearchByISBN(ctx, isbn)
	if err != nil {
		s.logger.Warn("book isbn search failed", "isbn", isbn, "error", err)
		return []domain.Item{}
	}
	return s.toItems(result)
}

// SearchByTitleAuthor narrows a search to title and, when given, author.
func (s *BookService) SearchByTitleAuthor(ctx context.Context, title, author string) []domain.Item {
	if !s.Available() || strings.TrimSpace(title) == "" {
		return []domain.Item{}
	}

	result, err := s.client.SearchByTitleAuthor(ctx, title, author)
	if err != nil {
		s.logger.Warn("book title search failed", "title", title, "author", author, "error", err)
		return []domain.Item{}
	}
	return s.toItems(result)
}

// Details fetches one volume. Returns nil when the lookup is unavailable or
// fails.
func (s *BookService) Details(ctx context.Context, volumeID string) *domain.Item {
	if !s.Available() || strings.TrimSpace(volumeID) == "" {
		return nil
	}

	volume, err := s.client.GetVolume(ctx, volumeID)
	if err != nil {
		s.logger.Warn("book details failed", "volume_id", volumeID, "error", err)
		return nil
	}
	item, ok := mapSafely(s.logger, "googlebooks", func() domain.Item { return BookFromVolume(volume) })
	if !ok {
		return nil
	}
	return &item
}

func (s *BookService) toItems(result *googlebooks.SearchResult) []domain.Item {
	items := make([]domain.Item, 0, len(result.Volumes))
	for i := range result.Volumes {
		item, ok := mapSafely(s.logger, "googlebooks", func() domain.Item { return BookFromVolume(&result.Volumes[i]) })
		if ok {
			items = append(items, item)
		}
	}
	return items
}

// BookFromVolume maps a Google Books volume to an unsaved book item.
// Absent remote values stay absent on the item. Title and language are kept
// as the remote reports them; a parenthesised series suffix only feeds the
// series fields.
func BookFromVolume(v *googlebooks.Volume) domain.Item {
	item := domain.NewItem(domain.CategoryBooks)
	attrs := item.Attributes

	series := metadata.ParseSeries(v.Title)
	attrs.SetText("title", v.Title)
	attrs.SetList("authors", v.Authors)
	attrs.SetText("publisher", v.Publisher)
	attrs.SetText("isbn", v.ISBN())
	attrs.SetPositiveInt("pageCount", int64(v.PageCount))
	if len(v.Categories) > 0 {
		attrs.SetText("genre", v.Categories[0])
	}
	attrs.SetText("series", series.Series)
	attrs.SetPositiveInt("volumeNumber", int64(series.Volume))
	attrs.SetText("language", v.Language)
	if v.PublishedDate != "" {
		if t, err := domain.ParseDate(v.PublishedDate); err == nil {
			attrs.SetTime("releaseDate", t)
		}
	}

	description := htmlToMarkdown(v.Description)
	attrs.SetText("description", description)
	attrs.SetText("synopsis", description)

	cover := v.CoverURL()
	attrs.SetText("coverImageUrl", cover)
	item.PrimaryImage = cover
	item.Barcode = v.ISBN13

	return item
}
