package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/monomori/monomori-server/internal/media/images"
	"github.com/monomori/monomori-server/internal/metadata/discogs"
	"github.com/monomori/monomori-server/internal/metadata/googlebooks"
	"github.com/monomori/monomori-server/internal/metadata/tmdb"
	"github.com/monomori/monomori-server/internal/search"
	"github.com/monomori/monomori-server/internal/service"
	"github.com/monomori/monomori-server/internal/sse"
	"github.com/monomori/monomori-server/internal/store"
	"github.com/monomori/monomori-server/internal/store/sqlite"
	"github.com/monomori/monomori-server/internal/validation"
)

const booksFixture = "../metadata/googlebooks/testdata/search_response.json"

// testServer wraps the API server with the pieces tests poke at directly.
type testServer struct {
	*Server
	api     humatest.TestAPI
	db      *sqlite.Store
	manager *sse.Manager

	// booksQuery holds the raw query of the last books API request.
	booksQuery *atomic.Pointer[string]
}

// testEnvelope mirrors the success envelope for decoding.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testErrorEnvelope mirrors the coded error envelope for decoding.
type testErrorEnvelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

type serverOption func(*Options)

func withLookupsPerMinute(n int) serverOption {
	return func(o *Options) { o.LookupsPerMinute = n }
}

// setupTestServer wires every service against temporary stores. Books
// lookups are answered by a fixture server; movies and music have no
// credentials.
func setupTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	dataDir := t.TempDir()

	manager := sse.NewManager(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)
	t.Cleanup(cancel)

	db, err := sqlite.Open(filepath.Join(dataDir, "monomori.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetChangeFeed(manager)

	prefs, err := store.New(filepath.Join(dataDir, "preferences"), logger, manager)
	require.NoError(t, err)
	t.Cleanup(func() { prefs.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: dataDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	covers, err := images.NewStorage(filepath.Join(dataDir, "covers"))
	require.NoError(t, err)

	booksQuery := &atomic.Pointer[string]{}
	booksAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.RawQuery
		booksQuery.Store(&raw)
		body, err := os.ReadFile(booksFixture)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(booksAPI.Close)

	catalog := service.NewCatalogService(db, validation.New(), logger)
	searchService := service.NewSearchService(index, db, logger)
	db.SetSearchIndexer(searchService)

	services := &Services{
		Catalog:     catalog,
		Preferences: service.NewPreferenceService(prefs, manager, logger),
		Books:       service.NewBookService(googlebooks.New(googlebooks.Options{APIKey: "key", BaseURL: booksAPI.URL}), logger),
		Movies:      service.NewMovieService(tmdb.New(tmdb.Options{}), logger),
		Music:       service.NewMusicService(discogs.New(discogs.Options{}), logger),
		Search:      searchService,
		Covers:      service.NewCoverService(catalog, covers, manager, logger),
	}

	options := Options{LookupsPerMinute: -1}
	for _, opt := range opts {
		opt(&options)
	}

	s := NewServer(services, manager, options, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server:     s,
		api:        humatest.Wrap(t, s.api),
		db:         db,
		manager:    manager,
		booksQuery: booksQuery,
	}
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	require.True(t, envelope.Success, resp.Body.String())
	require.Equal(t, EnvelopeVersion, envelope.V)
	return envelope.Data
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) testErrorEnvelope {
	t.Helper()
	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	require.False(t, envelope.Success)
	require.Equal(t, EnvelopeVersion, envelope.V)
	return envelope
}

// createBook posts a book and returns the stored item.
func (ts *testServer) createBook(t *testing.T, attrs map[string]any) ItemResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/collections/books/items", map[string]any{"attributes": attrs})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeData[ItemResponse](t, resp)
}
