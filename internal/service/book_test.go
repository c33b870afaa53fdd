package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/metadata/googlebooks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const booksFixture = "../metadata/googlebooks/testdata/search_response.json"

func TestBookService_NoCredentials(t *testing.T) {
	var hits atomic.Int32
	srv := fixtureServer(t, booksFixture, &hits)

	svc := NewBookService(googlebooks.New(googlebooks.Options{BaseURL: srv.URL}), testLogger())
	ctx := context.Background()

	assert.False(t, svc.Available())
	assert.Empty(t, svc.SearchOnline(ctx, "dune", Page{}))
	assert.Empty(t, svc.SearchByISBN(ctx, "9780441013593"))
	assert.Empty(t, svc.SearchByTitleAuthor(ctx, "Dune", "Herbert"))
	assert.Nil(t, svc.Details(ctx, "B1hSG45JCX4C"))
	assert.Zero(t, hits.Load())
}

func TestBookService_SearchOnline(t *testing.T) {
	var hits atomic.Int32
	srv := fixtureServer(t, booksFixture, &hits)

	svc := NewBookService(googlebooks.New(googlebooks.Options{APIKey: "key", BaseURL: srv.URL}), testLogger())

	items := svc.SearchOnline(context.Background(), "dune", Page{})
	require.Len(t, items, 2)
	assert.Equal(t, int32(1), hits.Load())

	dune := items[0]
	assert.Equal(t, domain.CategoryBooks, dune.Category)
	assert.Empty(t, dune.ID)
	assert.Equal(t, "Dune", dune.Attributes.String("title"))
	assert.Equal(t, []string{"Frank Herbert"}, dune.Attributes.Strings("authors"))
	assert.Equal(t, "Penguin", dune.Attributes.String("publisher"))
	assert.Equal(t, "9780441013593", dune.Attributes.String("isbn"))
	assert.Equal(t, "9780441013593", dune.Barcode)
	assert.Equal(t, "Fiction", dune.Attributes.String("genre"))
	assert.Equal(t, "en", dune.Attributes.String("language"))

	pages, ok := dune.Attributes.Int("pageCount")
	require.True(t, ok)
	assert.Equal(t, int64(528), pages)

	released, ok := dune.Attributes.Time("releaseDate")
	require.True(t, ok)
	assert.True(t, released.Equal(time.Date(2005, 8, 2, 0, 0, 0, 0, time.UTC)))

	assert.Contains(t, dune.Attributes.String("description"), "**Arrakis**")
	assert.NotContains(t, dune.Attributes.String("description"), "<p>")
	assert.Equal(t, dune.Attributes.String("description"), dune.Attributes.String("synopsis"))

	assert.Equal(t, "https://books.google.com/books/content?id=B1hSG45JCX4C&zoom=1", dune.PrimaryImage)
	assert.Equal(t, dune.PrimaryImage, dune.Attributes.String("coverImageUrl"))

	messiah := items[1]
	assert.Equal(t, "0593098234", messiah.Attributes.String("isbn"))
	assert.Empty(t, messiah.Barcode)
	assert.False(t, messiah.Attributes.Has("pageCount"))
	assert.Empty(t, messiah.PrimaryImage)
}

func TestBookService_SearchOnlinePaging(t *testing.T) {
	var last atomic.Pointer[url.Values]
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		last.Store(&q)
		w.Write([]byte(`{"totalItems":0}`))
	}))
	defer srv.Close()

	svc := NewBookService(googlebooks.New(googlebooks.Options{APIKey: "key", BaseURL: srv.URL}), testLogger())
	ctx := context.Background()

	tests := []struct {
		page       Page
		startIndex string
		maxResults string
	}{
		{Page{}, "0", "10"},
		{Page{Number: 3}, "20", "10"},
		{Page{Number: 2, Size: 25}, "25", "25"},
		// Oversized pages are clamped before the offset is computed.
		{Page{Number: 2, Size: 100}, "40", "40"},
	}
	for _, tt := range tests {
		svc.SearchOnline(ctx, "dune", tt.page)
		q := last.Load()
		require.NotNil(t, q)
		assert.Equal(t, tt.startIndex, q.Get("startIndex"), "%+v", tt.page)
		assert.Equal(t, tt.maxResults, q.Get("maxResults"), "%+v", tt.page)
	}
}

func TestBookService_BlankInput(t *testing.T) {
	var hits atomic.Int32
	srv := fixtureServer(t, booksFixture, &hits)

	svc := NewBookService(googlebooks.New(googlebooks.Options{APIKey: "key", BaseURL: srv.URL}), testLogger())
	ctx := context.Background()

	assert.Empty(t, svc.SearchOnline(ctx, "  ", Page{}))
	assert.Empty(t, svc.SearchByISBN(ctx, ""))
	assert.Empty(t, svc.SearchByTitleAuthor(ctx, "", "Herbert"))
	assert.Zero(t, hits.Load())
}

func TestBookService_RemoteFailure(t *testing.T) {
	var hits atomic.Int32
	srv := failingServer(t, &hits)

	svc := NewBookService(googlebooks.New(googlebooks.Options{APIKey: "key", BaseURL: srv.URL}), testLogger())

	items := svc.SearchOnline(context.Background(), "dune", Page{})
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Nil(t, svc.Details(context.Background(), "B1hSG45JCX4C"))
	assert.Positive(t, hits.Load())
}

func TestBookFromVolume_KeepsRemoteTitleAndLanguage(t *testing.T) {
	item := BookFromVolume(&googlebooks.Volume{
		Title:    "Dune Messiah (Dune Chronicles, Book 2)",
		ISBN10:   "0593098234",
		Language: "ja",
	})

	assert.Equal(t, "Dune Messiah (Dune Chronicles, Book 2)", item.Attributes.String("title"))
	assert.Equal(t, "Dune Chronicles", item.Attributes.String("series"))
	vol, ok := item.Attributes.Int("volumeNumber")
	require.True(t, ok)
	assert.Equal(t, int64(2), vol)
	assert.Equal(t, "ja", item.Attributes.String("language"))

	// Absent remote lists still map to empty lists.
	assert.Equal(t, []string{}, item.Attributes.Strings("authors"))
}

func TestBookFromVolume_ValidForStorage(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	item := BookFromVolume(&googlebooks.Volume{
		Title:         "Akira, Vol. 3",
		Authors:       []string{"Katsuhiro Otomo"},
		PublishedDate: "1988",
		ISBN13:        "9781935429029",
	})

	saved, err := catalog.Create(context.Background(), domain.CategoryBooks, item)
	require.NoError(t, err)
	assert.Equal(t, "Akira, Vol. 3", saved.Attributes.String("title"))
	assert.Equal(t, "Akira", saved.Attributes.String("series"))
	assert.Equal(t, "9781935429029", saved.Barcode)
}
