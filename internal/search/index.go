package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/monomori/monomori-server/internal/domain"
)

const (
	indexDirName = "search.bleve"

	// mappingVersion is stored inside the index. Bump it when buildIndexMapping
	// changes; an index written with another version is thrown away on open
	// and refilled by the reindex that follows startup.
	mappingVersion = "2"

	batchSize      = 500
	deletePageSize = 1000
)

//nolint:gochecknoglobals // Internal storage key
var versionKey = []byte("monomori.mapping_version")

// SearchIndex is the on-disk Bleve index of collection items. Methods are
// safe for concurrent use; Rebuild excludes everything else while it swaps
// the underlying index.
type SearchIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	logger *slog.Logger
}

// Options configures the search index.
type Options struct {
	// DataPath is the directory holding the index directory.
	DataPath string
	Logger   *slog.Logger
}

// NewSearchIndex opens the index under opts.DataPath, creating it when it
// is missing, unreadable, or built with an older mapping.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	path := filepath.Join(opts.DataPath, indexDirName)

	index, reason := openCurrent(path)
	if index != nil {
		logger.Info("search index opened", "path", path)
		return &SearchIndex{index: index, path: path, logger: logger}, nil
	}
	if reason != "" {
		logger.Info("recreating search index", "path", path, "reason", reason)
	}

	index, err := create(path)
	if err != nil {
		return nil, err
	}
	logger.Info("search index created", "path", path, "mapping_version", mappingVersion)
	return &SearchIndex{index: index, path: path, logger: logger}, nil
}

// openCurrent opens an existing index whose mapping version matches. It
// returns a nil index and a reason when the directory must be recreated;
// the reason is empty when there was nothing on disk.
func openCurrent(path string) (bleve.Index, string) {
	if _, err := os.Stat(path); err != nil {
		return nil, ""
	}
	index, err := bleve.Open(path)
	if err != nil {
		return nil, err.Error()
	}
	stored, err := index.GetInternal(versionKey)
	if err == nil && string(stored) == mappingVersion {
		return index, ""
	}
	_ = index.Close()
	if err != nil {
		return nil, err.Error()
	}
	return nil, fmt.Sprintf("mapping version %q, want %q", stored, mappingVersion)
}

// create replaces whatever is at path with an empty index.
func create(path string) (bleve.Index, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove search index: %w", err)
	}
	index, err := bleve.New(path, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	if err := index.SetInternal(versionKey, []byte(mappingVersion)); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("record mapping version: %w", err)
	}
	return index, nil
}

// Close releases the index files.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument adds or replaces one document.
func (s *SearchIndex) IndexDocument(doc *SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexDocuments adds or replaces docs, committing in batches.
func (s *SearchIndex) IndexDocuments(docs []*SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))
		batch := s.index.NewBatch()
		for _, doc := range docs[start:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit documents %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// DeleteDocument removes one document. Missing ids are not an error.
func (s *SearchIndex) DeleteDocument(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild discards every document and starts over with the current
// mapping. Searches and writes wait until it returns.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close search index: %w", err)
	}
	index, err := create(s.path)
	if err != nil {
		return err
	}
	s.index = index
	s.logger.Info("search index rebuilt", "path", s.path)
	return nil
}

// DeleteCategory removes every document of one collection and returns how
// many were removed.
func (s *SearchIndex) DeleteCategory(ctx context.Context, category domain.Category) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := bleve.NewTermQuery(string(category))
	q.SetField("category")

	removed := 0
	for {
		res, err := s.index.SearchInContext(ctx, bleve.NewSearchRequestOptions(q, deletePageSize, 0, false))
		if err != nil {
			return removed, fmt.Errorf("find %s documents: %w", category, err)
		}
		if len(res.Hits) == 0 {
			return removed, nil
		}
		batch := s.index.NewBatch()
		for _, hit := range res.Hits {
			batch.Delete(hit.ID)
		}
		if err := s.index.Batch(batch); err != nil {
			return removed, fmt.Errorf("delete %s documents: %w", category, err)
		}
		removed += len(res.Hits)
	}
}
