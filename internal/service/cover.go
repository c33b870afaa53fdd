package service

import (
	"cmp"
	"context"
	"log/slog"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/errors"
	"github.com/monomori/monomori-server/internal/media/covers"
	"github.com/monomori/monomori-server/internal/media/images"
	"github.com/monomori/monomori-server/internal/sse"
	"github.com/monomori/monomori-server/internal/store"
)

// CoverResult describes a cover cached for an item.
type CoverResult struct {
	Source   string `json:"source"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`
	BlurHash string `json:"blurHash,omitempty"`
}

// CoverService keeps local copies of item cover images so clients can
// show them offline and without hitting the remote CDNs.
type CoverService struct {
	catalog    *CatalogService
	storage    *images.Storage
	downloader *covers.Downloader
	emitter    store.EventEmitter
	logger     *slog.Logger
}

// NewCoverService creates a new cover service.
func NewCoverService(
	catalog *CatalogService,
	storage *images.Storage,
	emitter store.EventEmitter,
	logger *slog.Logger,
) *CoverService {
	if emitter == nil {
		emitter = store.NewNoopFeed()
	}
	return &CoverService{
		catalog:    catalog,
		storage:    storage,
		downloader: covers.NewDownloader(storage, logger),
		emitter:    emitter,
		logger:     logger,
	}
}

// CacheCover downloads the remote image of an item into local storage.
// The image is the item's primary image, or the cover, poster or backdrop
// URL a lookup filled in.
func (s *CoverService) CacheCover(ctx context.Context, category domain.Category, itemID string) (*CoverResult, error) {
	item, err := s.catalog.Get(ctx, category, itemID)
	if err != nil {
		return nil, err
	}

	url := coverURL(item)
	if url == "" {
		return nil, errors.Validationf("%s item %q has no image URL", category, itemID)
	}

	result, err := s.downloader.Download(ctx, category, itemID, url)
	if err != nil {
		s.logger.Warn("cover download failed",
			"category", category,
			"item_id", itemID,
			"url", url,
			"error", err,
		)
		if errors.Is(err, covers.ErrInvalidURL) {
			return nil, errors.Wrap(err, errors.CodeValidation, "item has an invalid image URL")
		}
		if errors.Is(err, images.ErrUnsupportedFormat) || errors.Is(err, covers.ErrTooLarge) {
			return nil, errors.Wrap(err, errors.CodeValidation, "remote image rejected")
		}
		return nil, errors.Wrap(err, errors.CodeUnavailable, "cover download failed")
	}

	s.emitter.Emit(sse.NewCoverUpdatedEvent(category, itemID, result.BlurHash))

	return &CoverResult{
		Source:   result.Source,
		Format:   result.Format,
		Width:    result.Width,
		Height:   result.Height,
		Size:     result.Size,
		BlurHash: result.BlurHash,
	}, nil
}

// GetCover returns the cached image of an item and its content hash.
func (s *CoverService) GetCover(_ context.Context, category domain.Category, itemID string) ([]byte, string, error) {
	data, err := s.storage.Get(category, itemID)
	if errors.Is(err, images.ErrNotFound) {
		return nil, "", errors.NotFoundf("no cover cached for %s item %q", category, itemID)
	}
	if err != nil {
		return nil, "", errors.Wrap(err, errors.CodeValidation, err.Error())
	}

	hash, err := s.storage.Hash(category, itemID)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.CodeInternal, "failed to hash cover")
	}
	return data, hash, nil
}

// DeleteCover drops the cached image of an item. A missing cover is not an
// error.
func (s *CoverService) DeleteCover(_ context.Context, category domain.Category, itemID string) error {
	if err := s.storage.Delete(category, itemID); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to delete cover")
	}
	return nil
}

// DeleteCategoryCovers drops every cached image of a category.
func (s *CoverService) DeleteCategoryCovers(_ context.Context, category domain.Category) error {
	if err := s.storage.DeleteCategory(category); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to delete covers")
	}
	return nil
}

func coverURL(item *domain.Item) string {
	return cmp.Or(
		item.PrimaryImage,
		item.Attributes.String("coverImageUrl"),
		item.Attributes.String("posterImageUrl"),
		item.Attributes.String("backdropImageUrl"),
	)
}
