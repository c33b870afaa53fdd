package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/monomori/monomori-server/internal/errors"
	"github.com/monomori/monomori-server/internal/sse"
	"github.com/monomori/monomori-server/internal/store/sqlite"
	"github.com/monomori/monomori-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestManager starts an SSE manager that lives for the test.
func newTestManager(t *testing.T) *sse.Manager {
	t.Helper()
	m := sse.NewManager(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m
}

func newTestDB(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "monomori.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestCatalog(t *testing.T) (*CatalogService, *sqlite.Store) {
	t.Helper()
	db := newTestDB(t)
	return NewCatalogService(db, validation.New(), testLogger()), db
}

func assertCode(t *testing.T, err error, code errors.Code) {
	t.Helper()
	require.Error(t, err)
	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr), "expected *errors.Error, got %T: %v", err, err)
	assert.Equal(t, code, domainErr.Code, domainErr.Error())
}

// receive reads from ch until cond holds or the deadline passes.
func receive[T any](t *testing.T, ch <-chan T, cond func(T) bool) T {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case v, ok := <-ch:
			require.True(t, ok, "watch channel closed")
			if cond(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for watch emission")
		}
	}
}

// fixtureServer serves a testdata file for every request and counts hits.
func fixtureServer(t *testing.T, path string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	body, err := os.ReadFile(path)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failingServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv
}
