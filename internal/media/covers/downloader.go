// Package covers downloads remote cover images into local storage.
package covers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/media/images"
)

const (
	maxCoverSize    = 10 << 20
	downloadTimeout = 30 * time.Second
)

// Cover sources, detected from the image host.
const (
	SourceGoogleBooks = "googlebooks"
	SourceTMDB        = "tmdb"
	SourceDiscogs     = "discogs"
	SourceOther       = "other"
)

var (
	// ErrTooLarge is returned for images over the size limit.
	ErrTooLarge = errors.New("cover exceeds size limit")

	// ErrInvalidURL is returned for URLs that are not absolute http(s).
	ErrInvalidURL = errors.New("invalid cover URL")
)

// DownloadResult describes a stored cover.
type DownloadResult struct {
	Source   string // One of the Source constants
	Format   string // Decoded image format
	Width    int
	Height   int
	Size     int64  // File size in bytes
	BlurHash string // Empty if the placeholder could not be computed
}

// Downloader fetches cover images and stores them per item.
type Downloader struct {
	httpClient *http.Client
	storage    *images.Storage
	logger     *slog.Logger
}

// NewDownloader returns a Downloader saving into storage.
func NewDownloader(storage *images.Storage, logger *slog.Logger) *Downloader {
	return &Downloader{
		httpClient: &http.Client{Timeout: downloadTimeout},
		storage:    storage,
		logger:     logger,
	}
}

// Download fetches the image at rawURL and stores it as the cover of an
// item. Data that does not decode as an image is rejected before anything
// is written.
func (d *Downloader) Download(ctx context.Context, category domain.Category, itemID, rawURL string) (*DownloadResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w %q", ErrInvalidURL, rawURL)
	}

	data, err := d.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	info, err := images.Inspect(data)
	if err != nil {
		return nil, err
	}
	if err := d.storage.Save(category, itemID, data); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	result := &DownloadResult{
		Source: sourceOf(u),
		Format: info.Format,
		Width:  info.Width,
		Height: info.Height,
		Size:   int64(len(data)),
	}
	log := d.logger.With("category", category, "item_id", itemID)
	if result.BlurHash, err = images.ComputeBlurHash(data); err != nil {
		log.Warn("blurhash skipped", "error", err)
	}
	log.Info("cover downloaded",
		"source", result.Source,
		"size", result.Size,
		"width", result.Width,
		"height", result.Height)
	return result, nil
}

// fetch reads the body of a 200 response, up to maxCoverSize bytes.
func (d *Downloader) fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize+1))
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if len(data) > maxCoverSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

//nolint:gochecknoglobals // Static host table
var sourceHosts = []struct {
	source string
	hosts  []string // exact host, or a suffix when it starts with "."
}{
	{SourceGoogleBooks, []string{"books.google.com", ".googleusercontent.com", ".googleapis.com"}},
	{SourceTMDB, []string{"image.tmdb.org"}},
	{SourceDiscogs, []string{"discogs.com", ".discogs.com"}},
}

// DetectSource names the service hosting a cover URL.
func DetectSource(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return SourceOther
	}
	return sourceOf(u)
}

func sourceOf(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	for _, sh := range sourceHosts {
		for _, h := range sh.hosts {
			if host == h || (h[0] == '.' && strings.HasSuffix(host, h)) {
				return sh.source
			}
		}
	}
	return SourceOther
}
