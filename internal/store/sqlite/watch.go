package sqlite

import (
	"context"
	"errors"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/sse"
	"github.com/monomori/monomori-server/internal/store"
)

// WatchAll emits the ListAll result now and again after every write to the
// category. The channel closes when ctx is done.
func (c *Collection) WatchAll(ctx context.Context) (<-chan []domain.Item, error) {
	return watch(ctx, c, c.ListAll)
}

// WatchByID emits the item with the given id, or nil while it does not
// exist.
func (c *Collection) WatchByID(ctx context.Context, itemID string) (<-chan *domain.Item, error) {
	return watch(ctx, c, func(ctx context.Context) (*domain.Item, error) {
		item, err := c.Get(ctx, itemID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return item, err
	})
}

// WatchSearch emits the Search result for q.
func (c *Collection) WatchSearch(ctx context.Context, q string) (<-chan []domain.Item, error) {
	return watch(ctx, c, func(ctx context.Context) ([]domain.Item, error) {
		return c.Search(ctx, q)
	})
}

// WatchCount emits the item count.
func (c *Collection) WatchCount(ctx context.Context) (<-chan int, error) {
	return watch(ctx, c, c.Count)
}

// watch runs query once and again after each change notification for the
// collection's category. It listens before the first query so a write that
// lands in between still triggers a re-run. A failed re-run is logged and
// skipped; the previous result stays current.
func watch[T any](ctx context.Context, c *Collection, query func(context.Context) (T, error)) (<-chan T, error) {
	changes, stop, err := c.store.changeFeed().Listen(c.schema.Category, sse.ItemEventTypes...)
	if err != nil {
		return nil, err
	}

	initial, err := query(ctx)
	if err != nil {
		stop()
		return nil, err
	}

	out := make(chan T, 1)
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
				result, err := query(ctx)
				if err != nil {
					if ctx.Err() == nil && c.store.logger != nil {
						c.store.logger.Warn("watch query failed",
							"category", c.schema.Category, "error", err)
					}
					continue
				}
				select {
				case out <- result:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
