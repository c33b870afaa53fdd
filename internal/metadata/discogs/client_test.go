package discogs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", name, err)
	}
	return data
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(Options{
		Key:     "test-key",
		Secret:  "test-secret",
		BaseURL: server.URL,
		Logger:  slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})),
	})
	t.Cleanup(client.Close)
	return client
}

func TestClient_Search(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write(loadFixture(t, "search_response.json"))
	})

	result, err := client.Search(context.Background(), SearchParams{Query: "blue train", Type: TypeRelease, PerPage: 500})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if got.URL.Path != "/database/search" {
		t.Errorf("path: got %s", got.URL.Path)
	}
	if got.Header.Get("User-Agent") != UserAgent {
		t.Errorf("user agent: got %q", got.Header.Get("User-Agent"))
	}
	q := got.URL.Query()
	if q.Get("key") != "test-key" || q.Get("secret") != "test-secret" {
		t.Errorf("credentials not sent: %v", q)
	}
	if q.Get("per_page") != "100" {
		t.Errorf("per_page should be capped at 100, got %q", q.Get("per_page"))
	}
	if q.Get("type") != "release" || q.Get("page") != "1" {
		t.Errorf("type/page: got %v", q)
	}

	if len(result.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result.Results))
	}
	first := result.Results[0]
	if first.Year != "1957" || first.CatNo != "BLP 1577" {
		t.Errorf("first result: got %+v", first)
	}
	if first.CoverURL() != "https://i.discogs.com/cover.jpg" {
		t.Errorf("cover: got %s", first.CoverURL())
	}
	if result.Results[1].CoverURL() != "https://i.discogs.com/gs-thumb.jpg" {
		t.Errorf("cover should fall back to thumb, got %s", result.Results[1].CoverURL())
	}
}

func TestClient_Search_DefaultPerPageAndNoType(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`{"pagination": {"page": 1, "pages": 0, "per_page": 20, "items": 0}, "results": []}`))
	})

	if _, err := client.Search(context.Background(), SearchParams{Query: "x"}); err != nil {
		t.Fatalf("search: %v", err)
	}
	q := got.URL.Query()
	if q.Get("per_page") != "20" {
		t.Errorf("per_page: got %q", q.Get("per_page"))
	}
	if q.Has("type") {
		t.Errorf("type should be omitted, got %q", q.Get("type"))
	}
}

func TestClient_SearchByBarcode(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write(loadFixture(t, "search_response.json"))
	})

	if _, err := client.SearchByBarcode(context.Background(), "0724349532329"); err != nil {
		t.Fatalf("search: %v", err)
	}
	q := got.URL.Query()
	if q.Get("barcode") != "0724349532329" || q.Get("type") != "release" {
		t.Errorf("query: got %v", q)
	}
	if q.Has("q") {
		t.Error("barcode search should not send q")
	}
}

func TestClient_SearchByArtistRelease(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write(loadFixture(t, "search_response.json"))
	})

	if _, err := client.SearchByArtistRelease(context.Background(), "John Coltrane", "Blue Train"); err != nil {
		t.Fatalf("search: %v", err)
	}
	q := got.URL.Query()
	if q.Get("artist") != "John Coltrane" || q.Get("release_title") != "Blue Train" {
		t.Errorf("query: got %v", q)
	}
}

func TestClient_GetRelease(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write(loadFixture(t, "release_response.json"))
	})

	r, err := client.GetRelease(context.Background(), 1146221)
	if err != nil {
		t.Fatalf("get release: %v", err)
	}
	if path != "/releases/1146221" {
		t.Errorf("path: got %s", path)
	}

	if names := r.ArtistNames(); !slices.Equal(names, []string{"John Coltrane"}) {
		t.Errorf("artists: got %v", names)
	}
	if r.CoverURL() != "https://i.discogs.com/front.jpg" {
		t.Errorf("cover should prefer primary, got %s", r.CoverURL())
	}
	if r.Barcode() != "0724349532329" {
		t.Errorf("barcode: got %s", r.Barcode())
	}
	want := []string{"A1. Blue Train (10:43)", "A2. Moment's Notice (9:10)", "Side B"}
	if lines := r.TracklistLines(); !slices.Equal(lines, want) {
		t.Errorf("tracklist: got %v, want %v", lines, want)
	}
}

func TestClient_GetMaster(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"id": 33870, "title": "Blue Train", "images": [{"type": "secondary", "uri": "https://i.discogs.com/only.jpg"}]}`))
	})

	r, err := client.GetMaster(context.Background(), 33870)
	if err != nil {
		t.Fatalf("get master: %v", err)
	}
	if path != "/masters/33870" {
		t.Errorf("path: got %s", path)
	}
	if r.CoverURL() != "https://i.discogs.com/only.jpg" {
		t.Errorf("cover should fall back to first image, got %s", r.CoverURL())
	}
	if r.Barcode() != "" {
		t.Errorf("barcode: got %q", r.Barcode())
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.GetRelease(context.Background(), 1)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClient_HasCredentials(t *testing.T) {
	if New(Options{Key: "k"}).HasCredentials() {
		t.Error("key without secret should report no credentials")
	}
	if !New(Options{Key: "k", Secret: "s"}).HasCredentials() {
		t.Error("key and secret should report credentials")
	}
}
