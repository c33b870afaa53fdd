package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/metadata/tmdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMovieService(baseURL, key string) *MovieService {
	return NewMovieService(tmdb.New(tmdb.Options{APIKey: key, BaseURL: baseURL}), testLogger())
}

func TestMovieService_NoCredentials(t *testing.T) {
	var hits atomic.Int32
	srv := fixtureServer(t, "../metadata/tmdb/testdata/search_movie.json", &hits)

	svc := newMovieService(srv.URL, "")
	ctx := context.Background()

	assert.False(t, svc.Available())
	assert.Empty(t, svc.SearchMovies(ctx, "dune", Page{}))
	assert.Empty(t, svc.SearchTV(ctx, "dune", Page{}))
	assert.Empty(t, svc.SearchMulti(ctx, "dune", Page{}))
	assert.Nil(t, svc.MovieDetails(ctx, 438631))
	assert.Nil(t, svc.TVDetails(ctx, 1396))
	assert.Zero(t, hits.Load())
}

func TestMovieService_SearchMovies(t *testing.T) {
	var hits atomic.Int32
	srv := fixtureServer(t, "../metadata/tmdb/testdata/search_movie.json", &hits)

	items := newMovieService(srv.URL, "key").SearchMovies(context.Background(), "dune", Page{})
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, domain.CategoryMoviesTV, first.Category)
	assert.Equal(t, "Dune", first.Attributes.String("title"))
	assert.Equal(t, "438631", first.Attributes.String("tmdbId"))
	assert.Equal(t, tmdb.MediaTypeMovie, first.Attributes.String("mediaType"))
	assert.Equal(t, "https://image.tmdb.org/t/p/w342/d5NXSklXo0qyIYkgV94XAgMIckC.jpg", first.PrimaryImage)
	assert.Equal(t, first.PrimaryImage, first.Attributes.String("posterImageUrl"))
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/jYEW5xZkZk2WTrdbMGAPFuBqbDc.jpg",
		first.Attributes.String("backdropImageUrl"))

	released, ok := first.Attributes.Time("theatricalReleaseDate")
	require.True(t, ok)
	assert.True(t, released.Equal(time.Date(2021, 9, 15, 0, 0, 0, 0, time.UTC)))

	// A null poster leaves the image fields absent.
	assert.Empty(t, items[1].PrimaryImage)
	assert.False(t, items[1].Attributes.Has("posterImageUrl"))
}

func TestMovieService_SearchMultiDropsPeople(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/multi", r.URL.Path)
		w.Write([]byte(`{"page":1,"results":[
			{"id":1,"title":"Dune","media_type":"movie"},
			{"id":2,"name":"Frank Herbert","media_type":"person"},
			{"id":3,"name":"Dune: Prophecy","media_type":"tv","first_air_date":"2024-11-17"}
		],"total_pages":1,"total_results":3}`))
	}))
	defer srv.Close()

	items := newMovieService(srv.URL, "key").SearchMulti(context.Background(), "dune", Page{})
	require.Len(t, items, 2)
	assert.Equal(t, "Dune", items[0].Attributes.String("title"))
	assert.Equal(t, "Dune: Prophecy", items[1].Attributes.String("title"))
	assert.Equal(t, tmdb.MediaTypeTV, items[1].Attributes.String("mediaType"))
	assert.True(t, items[1].Attributes.Has("theatricalReleaseDate"))
}

func TestMovieService_SearchPage(t *testing.T) {
	var page atomic.Pointer[string]
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Query().Get("page")
		page.Store(&p)
		w.Write([]byte(`{"page":1,"results":[]}`))
	}))
	defer srv.Close()

	svc := newMovieService(srv.URL, "key")
	ctx := context.Background()

	svc.SearchTV(ctx, "dune", Page{})
	require.NotNil(t, page.Load())
	assert.Equal(t, "1", *page.Load())

	svc.SearchTV(ctx, "dune", Page{Number: 4, Size: 5})
	assert.Equal(t, "4", *page.Load())
}

func TestMovieService_MovieDetails(t *testing.T) {
	var hits atomic.Int32
	srv := fixtureServer(t, "../metadata/tmdb/testdata/movie_details.json", &hits)

	item := newMovieService(srv.URL, "key").MovieDetails(context.Background(), 438631)
	require.NotNil(t, item)

	assert.Equal(t, "Dune", item.Attributes.String("title"))
	assert.Equal(t, "Denis Villeneuve", item.Attributes.String("director"))
	assert.Equal(t, []string{
		"Timothée Chalamet", "Rebecca Ferguson", "Oscar Isaac", "Zendaya", "Jason Momoa",
	}, item.Attributes.Strings("cast"))
	assert.Equal(t, []string{"Science Fiction", "Adventure"}, item.Attributes.Strings("genres"))
	assert.Equal(t, "Science Fiction", item.Attributes.String("genre"))
	assert.Equal(t, "tt1160419", item.Attributes.String("imdbId"))

	runtime, ok := item.Attributes.Int("runtime")
	require.True(t, ok)
	assert.Equal(t, int64(155), runtime)
}

func TestMovieService_TVDetails(t *testing.T) {
	var hits atomic.Int32
	srv := fixtureServer(t, "../metadata/tmdb/testdata/tv_details.json", &hits)

	item := newMovieService(srv.URL, "key").TVDetails(context.Background(), 1396)
	require.NotNil(t, item)

	assert.Equal(t, "Breaking Bad", item.Attributes.String("title"))
	assert.Equal(t, tmdb.MediaTypeTV, item.Attributes.String("mediaType"))
	assert.False(t, item.Attributes.Has("director"))
	assert.Equal(t, []string{}, item.Attributes.Strings("cast"))

	runtime, ok := item.Attributes.Int("runtime")
	require.True(t, ok)
	assert.Equal(t, int64(45), runtime)
}

func TestMovieService_RemoteFailure(t *testing.T) {
	var hits atomic.Int32
	srv := failingServer(t, &hits)

	svc := newMovieService(srv.URL, "key")
	assert.Empty(t, svc.SearchMovies(context.Background(), "dune", Page{}))
	assert.Nil(t, svc.MovieDetails(context.Background(), 1))
	assert.Nil(t, svc.MovieDetails(context.Background(), 0))
}

func TestMovieFromDetails_ValidForStorage(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	item := MovieFromDetails(&tmdb.Details{ID: 9, Name: "Cowboy Bebop", FirstAirDate: "1998-04-03", MediaType: tmdb.MediaTypeTV})

	saved, err := catalog.Create(context.Background(), domain.CategoryMoviesTV, item)
	require.NoError(t, err)
	assert.Equal(t, "Cowboy Bebop", saved.Attributes.String("title"))
	assert.Equal(t, "9", saved.Attributes.String("tmdbId"))
}
