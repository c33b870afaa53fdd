package googlebooks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
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
		APIKey:  "test-key",
		BaseURL: server.URL,
		Logger:  slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})),
	})
	t.Cleanup(client.Close)
	return client
}

func TestClient_Search(t *testing.T) {
	fixture := loadFixture(t, "search_response.json")

	tests := []struct {
		name       string
		response   []byte
		statusCode int
		wantCount  int
		wantErr    error
	}{
		{
			name:       "successful search",
			response:   fixture,
			statusCode: http.StatusOK,
			wantCount:  2,
		},
		{
			name:       "no items key",
			response:   []byte(`{"kind": "books#volumes", "totalItems": 0}`),
			statusCode: http.StatusOK,
			wantCount:  0,
		},
		{
			name:       "bad key",
			statusCode: http.StatusForbidden,
			wantErr:    ErrUnauthorized,
		},
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			wantErr:    ErrRateLimited,
		},
		{
			name:       "server error",
			statusCode: http.StatusServiceUnavailable,
			wantErr:    ErrServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if tt.response != nil {
					w.Write(tt.response)
				}
			})

			result, err := client.Search(context.Background(), SearchParams{Query: "dune"})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				var opErr *Error
				if !errors.As(err, &opErr) || opErr.Op != "search" {
					t.Errorf("expected *Error with op search, got %#v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.Volumes) != tt.wantCount {
				t.Errorf("expected %d volumes, got %d", tt.wantCount, len(result.Volumes))
			}
		})
	}
}

func TestClient_Search_Parameters(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`{"totalItems": 0}`))
	})

	if _, err := client.Search(context.Background(), SearchParams{Query: "dune", MaxResults: 100, StartIndex: 20}); err != nil {
		t.Fatalf("search: %v", err)
	}

	q := got.URL.Query()
	if got.URL.Path != "/volumes" {
		t.Errorf("path: got %s", got.URL.Path)
	}
	if q.Get("q") != "dune" {
		t.Errorf("q: got %q", q.Get("q"))
	}
	if q.Get("key") != "test-key" {
		t.Errorf("key: got %q", q.Get("key"))
	}
	if q.Get("maxResults") != "40" {
		t.Errorf("maxResults should be capped at 40, got %q", q.Get("maxResults"))
	}
	if q.Get("startIndex") != "20" {
		t.Errorf("startIndex: got %q", q.Get("startIndex"))
	}
}

func TestClient_Search_DefaultMaxResults(t *testing.T) {
	var maxResults string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		maxResults = r.URL.Query().Get("maxResults")
		w.Write([]byte(`{"totalItems": 0}`))
	})

	if _, err := client.Search(context.Background(), SearchParams{Query: "dune"}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if maxResults != "10" {
		t.Errorf("expected default maxResults 10, got %q", maxResults)
	}
}

func TestClient_SearchByISBN(t *testing.T) {
	var q string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query().Get("q")
		w.Write(loadFixture(t, "search_response.json"))
	})

	result, err := client.SearchByISBN(context.Background(), "978-0-441-01359-3")
	if err != nil {
		t.Fatalf("search by isbn: %v", err)
	}
	if q != "isbn:9780441013593" {
		t.Errorf("q: got %q", q)
	}

	dune := result.Volumes[0]
	if dune.ISBN() != "9780441013593" {
		t.Errorf("expected ISBN-13 to win, got %s", dune.ISBN())
	}
	if dune.ISBN10 != "0441013597" {
		t.Errorf("isbn10: got %s", dune.ISBN10)
	}
	if dune.ListPrice == nil || dune.ListPrice.Amount != 9.99 {
		t.Errorf("list price: got %+v", dune.ListPrice)
	}

	messiah := result.Volumes[1]
	if messiah.ISBN() != "0593098234" {
		t.Errorf("expected ISBN-10 fallback, got %s", messiah.ISBN())
	}
	if messiah.Authors == nil || len(messiah.Authors) != 0 {
		t.Errorf("missing authors should be an empty list, got %#v", messiah.Authors)
	}
}

func TestClient_SearchByTitleAuthor(t *testing.T) {
	var q string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query().Get("q")
		w.Write([]byte(`{"totalItems": 0}`))
	})

	if _, err := client.SearchByTitleAuthor(context.Background(), "Dune", "Herbert"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if q != "intitle:Dune inauthor:Herbert" {
		t.Errorf("q: got %q", q)
	}

	if _, err := client.SearchByTitleAuthor(context.Background(), "Dune", ""); err != nil {
		t.Fatalf("search: %v", err)
	}
	if q != "intitle:Dune" {
		t.Errorf("q without author: got %q", q)
	}
}

func TestClient_GetVolume(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write(loadFixture(t, "volume_response.json"))
	})

	v, err := client.GetVolume(context.Background(), "B1hSG45JCX4C")
	if err != nil {
		t.Fatalf("get volume: %v", err)
	}
	if path != "/volumes/B1hSG45JCX4C" {
		t.Errorf("path: got %s", path)
	}
	if v.Subtitle != "Deluxe Edition" {
		t.Errorf("subtitle: got %q", v.Subtitle)
	}
	if v.CoverURL() != "https://books.google.com/xl" {
		t.Errorf("cover: got %s", v.CoverURL())
	}
}

func TestClient_GetVolume_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetVolume(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_GetVolume_EmptyID(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := client.GetVolume(context.Background(), "")
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no request, got %d", calls.Load())
	}
}

func TestVolume_CoverURL(t *testing.T) {
	tests := []struct {
		name   string
		images ImageLinks
		want   string
	}{
		{"empty", ImageLinks{}, ""},
		{"thumbnail only upgraded", ImageLinks{Thumbnail: "http://x/thumb"}, "https://x/thumb"},
		{"medium beats small", ImageLinks{Small: "https://x/s", Medium: "https://x/m"}, "https://x/m"},
		{"large beats medium", ImageLinks{Medium: "https://x/m", Large: "http://x/l"}, "https://x/l"},
		{"small thumbnail last", ImageLinks{SmallThumbnail: "https://x/st"}, "https://x/st"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Volume{Images: tt.images}
			if got := v.CoverURL(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_HasCredentials(t *testing.T) {
	if New(Options{}).HasCredentials() {
		t.Error("empty key should report no credentials")
	}
	if New(Options{APIKey: "  "}).HasCredentials() {
		t.Error("blank key should report no credentials")
	}
	if !New(Options{APIKey: "k"}).HasCredentials() {
		t.Error("key should report credentials")
	}
}
