package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/errors"
	"github.com/monomori/monomori-server/internal/media/images"
	"github.com/monomori/monomori-server/internal/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coverPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 30, 45))
	for y := range 45 {
		for x := range 30 {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: 120, B: uint8(y * 5), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestCovers(t *testing.T) (*CoverService, *CatalogService, *sse.Manager) {
	t.Helper()
	catalog, _ := newTestCatalog(t)
	storage, err := images.NewStorage(t.TempDir())
	require.NoError(t, err)
	m := newTestManager(t)
	return NewCoverService(catalog, storage, m, testLogger()), catalog, m
}

func TestCoverService_CacheCover(t *testing.T) {
	data := coverPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	covers, catalog, m := newTestCovers(t)
	ctx := context.Background()

	item := newBook("Dune")
	item.Attributes["coverImageUrl"] = srv.URL + "/dune.png"
	saved, err := catalog.Create(ctx, domain.CategoryBooks, item)
	require.NoError(t, err)

	changes, stop, err := m.Listen(domain.CategoryBooks, sse.EventCoverUpdated)
	require.NoError(t, err)
	defer stop()

	result, err := covers.CacheCover(ctx, domain.CategoryBooks, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "png", result.Format)
	assert.Equal(t, 30, result.Width)
	assert.Equal(t, 45, result.Height)
	assert.NotEmpty(t, result.BlurHash)

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("no cover event")
	}

	got, hash, err := covers.GetCover(ctx, domain.CategoryBooks, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.NotEmpty(t, hash)

	require.NoError(t, covers.DeleteCover(ctx, domain.CategoryBooks, saved.ID))
	_, _, err = covers.GetCover(ctx, domain.CategoryBooks, saved.ID)
	assertCode(t, err, errors.CodeNotFound)
}

func TestCoverService_NoImageURL(t *testing.T) {
	covers, catalog, _ := newTestCovers(t)
	ctx := context.Background()

	saved, err := catalog.Create(ctx, domain.CategoryBooks, newBook("Dune"))
	require.NoError(t, err)

	_, err = covers.CacheCover(ctx, domain.CategoryBooks, saved.ID)
	assertCode(t, err, errors.CodeValidation)
}

func TestCoverService_InvalidImageURL(t *testing.T) {
	covers, catalog, _ := newTestCovers(t)
	ctx := context.Background()

	for _, raw := range []string{"ftp://example.com/dune.png", "/covers/dune.png", "https://"} {
		item := newBook("Dune")
		item.PrimaryImage = raw
		saved, err := catalog.Create(ctx, domain.CategoryBooks, item)
		require.NoError(t, err)

		_, err = covers.CacheCover(ctx, domain.CategoryBooks, saved.ID)
		assertCode(t, err, errors.CodeValidation)
	}
}

func TestCoverService_MissingItem(t *testing.T) {
	covers, _, _ := newTestCovers(t)

	_, err := covers.CacheCover(context.Background(), domain.CategoryBooks, "book-missing")
	assertCode(t, err, errors.CodeNotFound)
}

func TestCoverService_RemoteErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/page.html" {
			w.Write([]byte("<html>not an image</html>"))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	covers, catalog, _ := newTestCovers(t)
	ctx := context.Background()

	html := newBook("Dune")
	html.PrimaryImage = srv.URL + "/page.html"
	saved, err := catalog.Create(ctx, domain.CategoryBooks, html)
	require.NoError(t, err)
	_, err = covers.CacheCover(ctx, domain.CategoryBooks, saved.ID)
	assertCode(t, err, errors.CodeValidation)

	broken := newBook("Dune Messiah")
	broken.PrimaryImage = srv.URL + "/broken.png"
	saved, err = catalog.Create(ctx, domain.CategoryBooks, broken)
	require.NoError(t, err)
	_, err = covers.CacheCover(ctx, domain.CategoryBooks, saved.ID)
	assertCode(t, err, errors.CodeUnavailable)
}

func TestCoverURL_Precedence(t *testing.T) {
	item := domain.NewItem(domain.CategoryMoviesTV)
	item.Attributes["backdropImageUrl"] = "https://example.com/backdrop.jpg"
	assert.Equal(t, "https://example.com/backdrop.jpg", coverURL(&item))

	item.Attributes["posterImageUrl"] = "https://example.com/poster.jpg"
	assert.Equal(t, "https://example.com/poster.jpg", coverURL(&item))

	item.PrimaryImage = "https://example.com/primary.jpg"
	assert.Equal(t, "https://example.com/primary.jpg", coverURL(&item))
}
