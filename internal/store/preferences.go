package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/sse"
)

// GetViewMode returns the stored view mode of a category.
// Returns domain.DefaultViewMode when nothing is stored or the stored name
// is not a known mode.
func (s *Store) GetViewMode(ctx context.Context, category domain.Category) (domain.ViewMode, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !category.Valid() {
		return "", ErrInvalidInput.WithMessage("unknown category")
	}

	var name string
	err := s.get(viewModeKey(category), &name)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.DefaultViewMode, nil
	}
	if err != nil {
		s.logger.Warn("unreadable view mode, using default",
			"category", category, "error", err)
		return domain.DefaultViewMode, nil
	}
	return domain.ParseViewMode(name), nil
}

// SetViewMode stores the view mode of a category and announces the change.
func (s *Store) SetViewMode(ctx context.Context, category domain.Category, mode domain.ViewMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !category.Valid() {
		return ErrInvalidInput.WithMessage("unknown category")
	}
	if !mode.Valid() {
		return ErrInvalidInput.WithMessage("unknown view mode")
	}

	if err := s.set(viewModeKey(category), string(mode)); err != nil {
		return fmt.Errorf("save view mode: %w", err)
	}

	s.emitter.Emit(sse.NewViewModeEvent(category, mode))
	return nil
}

// GetAllViewModes returns the view mode of every category in one read.
// Categories with nothing stored, or an unreadable value, get the default.
func (s *Store) GetAllViewModes(ctx context.Context) (map[domain.Category]domain.ViewMode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	modes := make(map[domain.Category]domain.ViewMode, len(domain.Categories()))
	for _, c := range domain.Categories() {
		modes[c] = domain.DefaultViewMode
	}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(viewModePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			category, ok := categoryFromViewModeKey(it.Item().Key())
			if !ok {
				continue
			}
			var name string
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &name)
			}); err != nil {
				continue
			}
			modes[category] = domain.ParseViewMode(name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read view modes: %w", err)
	}
	return modes, nil
}
