package tmdb

import (
	"cmp"
	"slices"
)

// Image sizes understood by the TMDB image CDN.
const (
	ImageBaseURL = "https://image.tmdb.org/t/p/"

	PosterSizeSmall    = "w185"
	PosterSizeMedium   = "w342"
	PosterSizeLarge    = "w500"
	PosterSizeOriginal = "original"
)

// Media types reported by multi search.
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// ImageURL joins an image path from a response with a size. An empty path
// yields an empty URL.
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = PosterSizeMedium
	}
	return ImageBaseURL + size + path
}

// SearchResult is one page of search results.
type SearchResult struct {
	Page         int     `json:"page"`
	Results      []Title `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Title is a movie or TV show as returned by search. Movies fill Title and
// ReleaseDate; shows fill Name and FirstAirDate.
type Title struct {
	ID            int     `json:"id"`
	Title         string  `json:"title,omitempty"`
	Name          string  `json:"name,omitempty"`
	OriginalTitle string  `json:"original_title,omitempty"`
	OriginalName  string  `json:"original_name,omitempty"`
	Overview      string  `json:"overview,omitempty"`
	PosterPath    string  `json:"poster_path,omitempty"`
	BackdropPath  string  `json:"backdrop_path,omitempty"`
	ReleaseDate   string  `json:"release_date,omitempty"`
	FirstAirDate  string  `json:"first_air_date,omitempty"`
	GenreIDs      []int   `json:"genre_ids,omitempty"`
	VoteAverage   float64 `json:"vote_average,omitempty"`
	Popularity    float64 `json:"popularity,omitempty"`
	MediaType     string  `json:"media_type,omitempty"`
}

// Details is the full record of a movie or TV show with credits appended.
type Details struct {
	ID             int      `json:"id"`
	Title          string   `json:"title,omitempty"`
	Name           string   `json:"name,omitempty"`
	OriginalTitle  string   `json:"original_title,omitempty"`
	Overview       string   `json:"overview,omitempty"`
	PosterPath     string   `json:"poster_path,omitempty"`
	BackdropPath   string   `json:"backdrop_path,omitempty"`
	ReleaseDate    string   `json:"release_date,omitempty"`
	FirstAirDate   string   `json:"first_air_date,omitempty"`
	Runtime        int      `json:"runtime,omitempty"`
	EpisodeRunTime []int    `json:"episode_run_time,omitempty"`
	Genres         []Genre  `json:"genres,omitempty"`
	Credits        *Credits `json:"credits,omitempty"`
	IMDbID         string   `json:"imdb_id,omitempty"`
	Tagline        string   `json:"tagline,omitempty"`
	Status         string   `json:"status,omitempty"`

	// MediaType is set by the client from the endpoint used.
	MediaType string `json:"media_type,omitempty"`
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Credits lists cast and crew.
type Credits struct {
	Cast []CastMember `json:"cast,omitempty"`
	Crew []CrewMember `json:"crew,omitempty"`
}

// CastMember is a billed performer. Order is the billing position.
type CastMember struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
	Order     int    `json:"order"`
}

// CrewMember is a credited crew member.
type CrewMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// DisplayTitle returns the movie title, the show name, or "Unknown".
func (d *Details) DisplayTitle() string {
	return cmp.Or(d.Title, d.Name, "Unknown")
}

// Director returns the first crew member credited as Director.
func (d *Details) Director() string {
	if d.Credits == nil {
		return ""
	}
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			return c.Name
		}
	}
	return ""
}

// TopCast returns up to n cast names in billing order.
func (d *Details) TopCast(n int) []string {
	if d.Credits == nil || n <= 0 {
		return []string{}
	}
	cast := slices.Clone(d.Credits.Cast)
	slices.SortStableFunc(cast, func(a, b CastMember) int { return cmp.Compare(a.Order, b.Order) })

	names := make([]string, 0, min(n, len(cast)))
	for _, c := range cast[:min(n, len(cast))] {
		names = append(names, c.Name)
	}
	return names
}

// GenreNames returns the genre names in response order.
func (d *Details) GenreNames() []string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return names
}

// RuntimeMinutes returns the movie runtime, or the first episode runtime for
// shows.
func (d *Details) RuntimeMinutes() int {
	if d.Runtime > 0 {
		return d.Runtime
	}
	if len(d.EpisodeRunTime) > 0 {
		return d.EpisodeRunTime[0]
	}
	return 0
}
