// Package store holds the persistence contracts shared by the storage
// backends and the Badger-backed preference store.
package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/sse"
)

// EventEmitter receives change events. The SSE manager implements it;
// stores and services emit through it without knowing who listens.
type EventEmitter interface {
	Emit(event any)
}

// ChangeFeed is an EventEmitter that in-process watchers can subscribe
// to. Listen signals on the returned channel whenever an event of the
// category and types is emitted, until stop is called.
type ChangeFeed interface {
	EventEmitter
	Listen(category domain.Category, types ...sse.EventType) (<-chan struct{}, func(), error)
}

// SearchIndexer keeps a search index in step with saved items. Stores call
// it after commit, off the request path.
type SearchIndexer interface {
	IndexItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, category domain.Category, id string) error
	DeleteCategory(ctx context.Context, category domain.Category) error
}

type noopFeed struct{}

func (noopFeed) Emit(any) {}

func (noopFeed) Listen(domain.Category, ...sse.EventType) (<-chan struct{}, func(), error) {
	return make(chan struct{}), func() {}, nil
}

// NewNoopFeed returns a feed that drops events and never signals, for
// tools and tests that run without the SSE manager.
func NewNoopFeed() ChangeFeed { return noopFeed{} }

type noopIndexer struct{}

func (noopIndexer) IndexItem(context.Context, *domain.Item) error { return nil }
func (noopIndexer) DeleteItem(context.Context, domain.Category, string) error { return nil }
func (noopIndexer) DeleteCategory(context.Context, domain.Category) error { return nil }

// NewNoopSearchIndexer returns an indexer that does nothing.
func NewNoopSearchIndexer() SearchIndexer { return noopIndexer{} }

// Store is the Badger-backed key-value store for small settings such as
// per-category view preferences. Values are JSON encoded.
type Store struct {
	db      *badger.DB
	logger  *slog.Logger
	emitter EventEmitter
}

// New opens the store at path. A nil emitter drops change events.
func New(path string, logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithSyncWrites(true).
		WithCompactL0OnClose(true)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}
	if emitter == nil {
		emitter = NewNoopFeed()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("preference store opened", "path", path)
	return &Store{db: db, logger: logger, emitter: emitter}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// get decodes the value at key into dest. A missing key returns
// badger.ErrKeyNotFound.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}
