// Package sqlite is the local store access layer: one table per collection
// category in a single SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const indexQueueSize = 256

// indexJob is one queued search index update. A job without run is a
// barrier: done is closed once every earlier job has finished.
type indexJob struct {
	run     func(ctx context.Context, idx store.SearchIndexer) error
	indexer store.SearchIndexer
	attrs   []any
	done    chan struct{}
}

// Store is the SQLite database holding every collection.
type Store struct {
	db          *sql.DB
	logger      *slog.Logger
	collections map[domain.Category]*Collection

	// mu guards the write hooks below. They are swapped at startup and by
	// bulk loads while requests may be running.
	mu       sync.RWMutex
	feed     store.ChangeFeed
	indexer  store.SearchIndexer
	bulkMode bool
	closed   bool

	// Index updates run one at a time, in commit order, on one goroutine.
	jobs        chan indexJob
	indexerDone chan struct{}
}

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and creates missing tables.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite serialises writers; a few connections serve concurrent reads.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	s := &Store{
		db:          db,
		logger:      logger,
		feed:        store.NewNoopFeed(),
		indexer:     store.NewNoopSearchIndexer(),
		collections: make(map[domain.Category]*Collection),
		jobs:        make(chan indexJob, indexQueueSize),
		indexerDone: make(chan struct{}),
	}
	for _, schema := range domain.Schemas() {
		s.collections[schema.Category] = newCollection(s, schema)
	}
	go s.runIndexer()

	return s, nil
}

// Close finishes queued index updates and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.jobs)
	}
	s.mu.Unlock()

	<-s.indexerDone
	return s.db.Close()
}

// SetChangeFeed sets where write events go and where watch queries
// listen.
func (s *Store) SetChangeFeed(feed store.ChangeFeed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed = feed
}

// SetSearchIndexer sets the indexer told about every committed write.
func (s *Store) SetSearchIndexer(indexer store.SearchIndexer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexer = indexer
}

// SetBulkMode turns change events and index updates off or back on. Bulk
// loaders reindex once when they are done instead.
func (s *Store) SetBulkMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulkMode = enabled
}

// hooks returns the current feed and indexer, or nils in bulk mode.
func (s *Store) hooks() (store.ChangeFeed, store.SearchIndexer) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bulkMode {
		return nil, nil
	}
	return s.feed, s.indexer
}

func (s *Store) changeFeed() store.ChangeFeed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feed
}

// Collection returns the table of one category.
// Returns store.ErrInvalidInput for an unknown category.
func (s *Store) Collection(category domain.Category) (*Collection, error) {
	c, ok := s.collections[category]
	if !ok {
		return nil, store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown category %q", category))
	}
	return c, nil
}

// Collections returns every category table in display order.
func (s *Store) Collections() []*Collection {
	out := make([]*Collection, 0, len(s.collections))
	for _, c := range domain.Categories() {
		out = append(out, s.collections[c])
	}
	return out
}

// Counts returns the number of items in every category.
func (s *Store) Counts(ctx context.Context) (map[domain.Category]int, error) {
	counts := make(map[domain.Category]int, len(s.collections))
	for category, c := range s.collections {
		n, err := c.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", category, err)
		}
		counts[category] = n
	}
	return counts, nil
}

// emit publishes a write event.
func (s *Store) emit(event any) {
	if feed, _ := s.hooks(); feed != nil {
		feed.Emit(event)
	}
}

// index queues fn for the indexer worker. Jobs run in the order they are
// queued; failures are logged since the database write has committed.
func (s *Store) index(fn func(ctx context.Context, idx store.SearchIndexer) error, attrs ...any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bulkMode || s.closed || s.indexer == nil {
		return
	}
	s.jobs <- indexJob{run: fn, indexer: s.indexer, attrs: attrs}
}

// WaitIndexed blocks until every index update queued before the call has
// been applied, or ctx is done.
func (s *Store) WaitIndexed(ctx context.Context) error {
	done := make(chan struct{})
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil
	}
	s.jobs <- indexJob{done: done}
	s.mu.RUnlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) runIndexer() {
	defer close(s.indexerDone)
	for job := range s.jobs {
		if job.run == nil {
			close(job.done)
			continue
		}
		if err := job.run(context.Background(), job.indexer); err != nil && s.logger != nil {
			s.logger.Warn("search index update failed", append(job.attrs, "error", err)...)
		}
	}
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// toMillis converts a timestamp to the stored epoch-millisecond form.
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// fromMillis converts a stored epoch-millisecond value back to UTC time.
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
