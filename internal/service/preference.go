package service

import (
	"context"
	"log/slog"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/errors"
	"github.com/monomori/monomori-server/internal/sse"
	"github.com/monomori/monomori-server/internal/store"
)

// PreferenceService manages per-category display preferences.
type PreferenceService struct {
	store  *store.Store
	feed   store.ChangeFeed
	logger *slog.Logger
}

// NewPreferenceService creates a new preference service. The feed must be
// the one the store emits to, or WatchViewMode never sees a change.
func NewPreferenceService(s *store.Store, feed store.ChangeFeed, logger *slog.Logger) *PreferenceService {
	if feed == nil {
		feed = store.NewNoopFeed()
	}
	return &PreferenceService{
		store:  s,
		feed:   feed,
		logger: logger,
	}
}

// GetViewMode returns the view mode of a category, CARD when unset.
func (s *PreferenceService) GetViewMode(ctx context.Context, category domain.Category) (domain.ViewMode, error) {
	mode, err := s.store.GetViewMode(ctx, category)
	if err != nil {
		return "", preferenceError(err)
	}
	return mode, nil
}

// SetViewMode saves the view mode of a category.
func (s *PreferenceService) SetViewMode(ctx context.Context, category domain.Category, mode domain.ViewMode) error {
	if err := s.store.SetViewMode(ctx, category, mode); err != nil {
		return preferenceError(err)
	}
	s.logger.Debug("view mode saved", "category", category, "mode", mode)
	return nil
}

// GetAllViewModes returns the view mode of every category.
func (s *PreferenceService) GetAllViewModes(ctx context.Context) (map[domain.Category]domain.ViewMode, error) {
	modes, err := s.store.GetAllViewModes(ctx)
	if err != nil {
		return nil, preferenceError(err)
	}
	return modes, nil
}

// WatchViewMode emits the current view mode of a category and again after
// every save, until ctx is done.
func (s *PreferenceService) WatchViewMode(ctx context.Context, category domain.Category) (<-chan domain.ViewMode, error) {
	changes, stop, err := s.feed.Listen(category, sse.EventViewModeChanged)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "change feed unavailable")
	}

	initial, err := s.GetViewMode(ctx, category)
	if err != nil {
		stop()
		return nil, err
	}

	out := make(chan domain.ViewMode, 1)
	out <- initial

	go func() {
		defer close(out)
		defer stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				mode, err := s.GetViewMode(ctx, category)
				if err != nil {
					if ctx.Err() == nil {
						s.logger.Warn("view mode watch query failed", "category", category, "error", err)
					}
					continue
				}
				select {
				case out <- mode:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func preferenceError(err error) error {
	if errors.Is(err, store.ErrInvalidInput) {
		return errors.Validation(err.Error())
	}
	return errors.Wrap(err, errors.CodeInternal, "preference store failed")
}
