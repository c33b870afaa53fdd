package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/errors"
	"github.com/monomori/monomori-server/internal/search"
	"github.com/monomori/monomori-server/internal/store/sqlite"
)

// SearchService provides full-text search across every category.
// It bridges the search index with the sqlite store: the store calls it as
// its SearchIndexer after each write, and ReindexAll rebuilds the index
// from the tables.
type SearchService struct {
	index  *search.SearchIndex
	db     *sqlite.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, db *sqlite.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		db:     db,
		logger: logger,
	}
}

// Search runs a cross-category query.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	for _, c := range params.Categories {
		if !c.Valid() {
			return nil, errors.Validationf("unknown category %q", c)
		}
	}
	if params.MinYear > 0 && params.MaxYear > 0 && params.MinYear > params.MaxYear {
		return nil, errors.Validation("minYear must not exceed maxYear")
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "search failed")
	}
	return result, nil
}

// IndexItem indexes a single item.
// Call this when an item is created or updated.
func (s *SearchService) IndexItem(_ context.Context, item *domain.Item) error {
	schema, ok := domain.SchemaFor(item.Category)
	if !ok {
		return fmt.Errorf("no schema for category %q", item.Category)
	}

	doc := search.ItemToSearchDocument(schema, *item)
	if err := s.index.IndexDocument(doc); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	s.logger.Debug("indexed item", "category", item.Category, "id", item.ID, "name", doc.Name)
	return nil
}

// DeleteItem removes an item from the index.
func (s *SearchService) DeleteItem(_ context.Context, category domain.Category, itemID string) error {
	return s.index.DeleteDocument(search.DocumentID(category, itemID))
}

// DeleteCategory removes every item of a category from the index.
func (s *SearchService) DeleteCategory(ctx context.Context, category domain.Category) error {
	n, err := s.index.DeleteCategory(ctx, category)
	if err != nil {
		return err
	}
	s.logger.Debug("removed category from index", "category", category, "count", n)
	return nil
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the entire search index from the category tables.
// This is a heavy operation - use sparingly.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	// Rebuild index (drops existing)
	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	for _, c := range s.db.Collections() {
		if err := ctx.Err(); err != nil {
			return err
		}

		items, err := c.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list %s: %w", c.Category(), err)
		}

		docs := make([]*search.SearchDocument, 0, len(items))
		for _, item := range items {
			docs = append(docs, search.ItemToSearchDocument(c.Schema(), item))
		}

		if len(docs) > 0 {
			if err := s.index.IndexDocuments(docs); err != nil {
				return fmt.Errorf("index %s: %w", c.Category(), err)
			}
		}
		s.logger.Info("indexed category", "category", c.Category(), "count", len(docs))
	}

	total, _ := s.index.DocumentCount()
	s.logger.Info("full reindex complete", "total_documents", total)

	return nil
}

// EnsureIndexed rebuilds the index when it is empty but the tables are
// not, which happens after a mapping change or a deleted index directory.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	indexed, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if indexed > 0 {
		return nil
	}

	counts, err := s.db.Counts(ctx)
	if err != nil {
		return fmt.Errorf("count items: %w", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return nil
	}

	s.logger.Info("search index is empty, rebuilding", "items", total)
	return s.ReindexAll(ctx)
}
