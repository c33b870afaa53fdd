// Package images stores cover images on disk and derives BlurHash
// placeholders from them.
package images

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/monomori/monomori-server/internal/domain"
)

// ErrNotFound is returned when no image is stored for an item.
var ErrNotFound = errors.New("image not found")

// Storage manages cover files, one directory per category.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a Storage rooted at dir, creating it if needed.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("base path cannot be empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cover directory: %w", err)
	}

	return &Storage{basePath: dir}, nil
}

// Save stores image data for an item, replacing any previous image.
func (s *Storage) Save(category domain.Category, itemID string, imgData []byte) error {
	path, err := s.path(category, itemID)
	if err != nil {
		return err
	}
	if len(imgData) == 0 {
		return errors.New("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create category directory: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial image.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, imgData, 0o644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) //nolint:errcheck // Best-effort cleanup
		return fmt.Errorf("failed to move image file: %w", err)
	}
	return nil
}

// Get retrieves the image of an item.
// Returns ErrNotFound if nothing is stored.
func (s *Storage) Get(category domain.Category, itemID string) ([]byte, error) {
	path, err := s.path(category, itemID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s %s: %w", category, itemID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}

// Exists checks if an image is stored for an item.
func (s *Storage) Exists(category domain.Category, itemID string) bool {
	path, err := s.path(category, itemID)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err = os.Stat(path)
	return err == nil
}

// Delete removes the image of an item. A missing image is not an error.
func (s *Storage) Delete(category domain.Category, itemID string) error {
	path, err := s.path(category, itemID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// DeleteCategory removes every image of a category.
func (s *Storage) DeleteCategory(category domain.Category) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return os.RemoveAll(filepath.Join(s.basePath, category.Slug()))
}

// Hash computes the SHA-256 of an item's image, hex encoded, for ETags.
func (s *Storage) Hash(category domain.Category, itemID string) (string, error) {
	data, err := s.Get(category, itemID)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the file an item's image is stored in, or "" for an
// unusable category or id.
func (s *Storage) Path(category domain.Category, itemID string) string {
	path, err := s.path(category, itemID)
	if err != nil {
		return ""
	}
	return path
}

// path maps an item to {base}/{category-slug}/{id}.img. Ids come from
// clients, so anything that could leave the category directory is refused.
func (s *Storage) path(category domain.Category, itemID string) (string, error) {
	if !category.Valid() {
		return "", fmt.Errorf("unknown category %q", category)
	}
	if itemID == "" {
		return "", errors.New("item ID cannot be empty")
	}
	if itemID == "." || itemID == ".." || strings.ContainsAny(itemID, `/\`) {
		return "", fmt.Errorf("invalid item ID %q", itemID)
	}
	return filepath.Join(s.basePath, category.Slug(), itemID+".img"), nil
}
