// Package service composes local storage and the remote lookup clients into
// the operations the API exposes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/errors"
	"github.com/monomori/monomori-server/internal/id"
	"github.com/monomori/monomori-server/internal/store"
	"github.com/monomori/monomori-server/internal/store/sqlite"
	"github.com/monomori/monomori-server/internal/validation"
)

// CatalogService is the local façade over the category tables.
type CatalogService struct {
	db        *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(db *sqlite.Store, validator *validation.Validator, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		db:        db,
		validator: validator,
		logger:    logger,
	}
}

// Schemas returns every category schema in display order.
func (s *CatalogService) Schemas() []*domain.Schema {
	return domain.Schemas()
}

// Counts returns the number of items per category.
func (s *CatalogService) Counts(ctx context.Context) (map[domain.Category]int, error) {
	counts, err := s.db.Counts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to count items")
	}
	return counts, nil
}

// List returns the items of a category, newest first. A non-empty query
// narrows the list to items whose search fields contain it.
func (s *CatalogService) List(ctx context.Context, category domain.Category, query string) ([]domain.Item, error) {
	c, err := s.collection(category)
	if err != nil {
		return nil, err
	}

	items, err := c.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, s.storeError(err, category, "list items")
	}
	return items, nil
}

// Get returns one item.
func (s *CatalogService) Get(ctx context.Context, category domain.Category, itemID string) (*domain.Item, error) {
	c, err := s.collection(category)
	if err != nil {
		return nil, err
	}

	item, err := c.Get(ctx, itemID)
	if err != nil {
		return nil, s.storeError(err, category, "get item")
	}
	return item, nil
}

// Count returns the number of items in a category.
func (s *CatalogService) Count(ctx context.Context, category domain.Category) (int, error) {
	c, err := s.collection(category)
	if err != nil {
		return 0, err
	}

	n, err := c.Count(ctx)
	if err != nil {
		return 0, s.storeError(err, category, "count items")
	}
	return n, nil
}

// Create stores a new item under a fresh id.
func (s *CatalogService) Create(ctx context.Context, category domain.Category, item domain.Item) (domain.Item, error) {
	item.ID = ""
	return s.Save(ctx, category, item)
}

// Save inserts an item or replaces the one with the same id.
func (s *CatalogService) Save(ctx context.Context, category domain.Category, item domain.Item) (domain.Item, error) {
	c, err := s.collection(category)
	if err != nil {
		return domain.Item{}, err
	}
	if item, err = s.prepare(c.Schema(), item); err != nil {
		return domain.Item{}, err
	}

	saved, err := c.InsertOrReplace(ctx, item)
	if err != nil {
		return domain.Item{}, s.storeError(err, category, "save item")
	}

	s.logger.Debug("item saved", "category", category, "id", saved.ID)
	return saved, nil
}

// Update rewrites an existing item.
// Returns a not-found error when the id is unknown.
func (s *CatalogService) Update(ctx context.Context, category domain.Category, item domain.Item) (domain.Item, error) {
	c, err := s.collection(category)
	if err != nil {
		return domain.Item{}, err
	}
	if item, err = s.prepare(c.Schema(), item); err != nil {
		return domain.Item{}, err
	}

	updated, ok, err := c.Update(ctx, item)
	if err != nil {
		return domain.Item{}, s.storeError(err, category, "update item")
	}
	if !ok {
		return domain.Item{}, errors.NotFoundf("%s item %q not found", category, item.ID)
	}
	return updated, nil
}

// Delete removes an item. Deleting a missing id succeeds.
func (s *CatalogService) Delete(ctx context.Context, category domain.Category, itemID string) error {
	c, err := s.collection(category)
	if err != nil {
		return err
	}
	if err := c.DeleteByID(ctx, itemID); err != nil {
		return s.storeError(err, category, "delete item")
	}
	return nil
}

// DeleteAll removes every item of a category and returns the count removed.
func (s *CatalogService) DeleteAll(ctx context.Context, category domain.Category) (int64, error) {
	c, err := s.collection(category)
	if err != nil {
		return 0, err
	}

	n, err := c.DeleteAll(ctx)
	if err != nil {
		return 0, s.storeError(err, category, "delete items")
	}

	s.logger.Info("collection cleared", "category", category, "count", n)
	return n, nil
}

// FindBy returns the items whose field equals value.
func (s *CatalogService) FindBy(ctx context.Context, category domain.Category, field, value string) ([]domain.Item, error) {
	c, err := s.collection(category)
	if err != nil {
		return nil, err
	}

	items, err := c.FindBy(ctx, field, value)
	if err != nil {
		return nil, s.storeError(err, category, "filter items")
	}
	return items, nil
}

// Distinct returns the values a field takes across a category.
func (s *CatalogService) Distinct(ctx context.Context, category domain.Category, field string) ([]string, error) {
	c, err := s.collection(category)
	if err != nil {
		return nil, err
	}

	values, err := c.Distinct(ctx, field)
	if err != nil {
		return nil, s.storeError(err, category, "list values")
	}
	return values, nil
}

// WatchList emits the List result for query now and after every change to
// the category, until ctx is done.
func (s *CatalogService) WatchList(ctx context.Context, category domain.Category, query string) (<-chan []domain.Item, error) {
	c, err := s.collection(category)
	if err != nil {
		return nil, err
	}

	ch, err := c.WatchSearch(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, s.storeError(err, category, "watch items")
	}
	return ch, nil
}

// WatchItem emits an item, or nil while it does not exist.
func (s *CatalogService) WatchItem(ctx context.Context, category domain.Category, itemID string) (<-chan *domain.Item, error) {
	c, err := s.collection(category)
	if err != nil {
		return nil, err
	}

	ch, err := c.WatchByID(ctx, itemID)
	if err != nil {
		return nil, s.storeError(err, category, "watch item")
	}
	return ch, nil
}

// WatchCount emits the item count of a category.
func (s *CatalogService) WatchCount(ctx context.Context, category domain.Category) (<-chan int, error) {
	c, err := s.collection(category)
	if err != nil {
		return nil, err
	}

	ch, err := c.WatchCount(ctx)
	if err != nil {
		return nil, s.storeError(err, category, "watch count")
	}
	return ch, nil
}

func (s *CatalogService) collection(category domain.Category) (*sqlite.Collection, error) {
	if !category.Valid() {
		return nil, errors.Validationf("unknown category %q", category)
	}
	c, err := s.db.Collection(category)
	if err != nil {
		return nil, errors.Validation(err.Error())
	}
	return c, nil
}

// prepare validates an incoming item and gives new custom fields an id.
func (s *CatalogService) prepare(schema *domain.Schema, item domain.Item) (domain.Item, error) {
	if item.Category == domain.CategoryUnknown {
		item.Category = schema.Category
	}
	if item.Category != schema.Category {
		return domain.Item{}, errors.Validationf("item category %s does not match %s", item.Category, schema.Category)
	}
	if err := s.validator.ValidateItem(schema, item); err != nil {
		return domain.Item{}, err
	}

	item = item.Clone()
	for i := range item.CustomFields.Fields {
		if item.CustomFields.Fields[i].ID == "" {
			item.CustomFields.Fields[i].ID = id.FieldID()
		}
	}
	return item, nil
}

// storeError converts store failures into coded errors. Bad input stays a
// validation error; anything else is internal.
func (s *CatalogService) storeError(err error, category domain.Category, op string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errors.Wrap(err, errors.CodeNotFound, fmt.Sprintf("%s: %s item not found", op, category))
	case errors.Is(err, store.ErrInvalidInput):
		return errors.Validation(err.Error())
	default:
		s.logger.Error("store operation failed", "op", op, "category", category, "error", err)
		return errors.Wrap(err, errors.CodeInternal, op+" failed")
	}
}
