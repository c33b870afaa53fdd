package discogs

import (
	"fmt"
	"strings"
)

// Search result types accepted by the type filter.
const (
	TypeRelease = "release"
	TypeMaster  = "master"
	TypeArtist  = "artist"
	TypeLabel   = "label"
)

// SearchResult is one page of database search results.
type SearchResult struct {
	Pagination Pagination      `json:"pagination"`
	Results    []SearchSummary `json:"results"`
}

// Pagination describes the page returned.
type Pagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

// SearchSummary is a search hit. Year is a string in search responses.
type SearchSummary struct {
	ID          int      `json:"id"`
	MasterID    int      `json:"master_id,omitempty"`
	Type        string   `json:"type"`
	Title       string   `json:"title"` // "Artist - Release"
	Country     string   `json:"country,omitempty"`
	Year        string   `json:"year,omitempty"`
	Format      []string `json:"format,omitempty"`
	Label       []string `json:"label,omitempty"`
	Genre       []string `json:"genre,omitempty"`
	Style       []string `json:"style,omitempty"`
	Barcode     []string `json:"barcode,omitempty"`
	CatNo       string   `json:"catno,omitempty"`
	Thumb       string   `json:"thumb,omitempty"`
	CoverImage  string   `json:"cover_image,omitempty"`
	ResourceURL string   `json:"resource_url,omitempty"`
	URI         string   `json:"uri,omitempty"`
}

// Release is the full record of a release or master release.
type Release struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Artists     []Artist     `json:"artists,omitempty"`
	Year        int          `json:"year,omitempty"`
	Released    string       `json:"released,omitempty"`
	Country     string       `json:"country,omitempty"`
	Genres      []string     `json:"genres,omitempty"`
	Styles      []string     `json:"styles,omitempty"`
	Labels      []Label      `json:"labels,omitempty"`
	Formats     []Format     `json:"formats,omitempty"`
	Tracklist   []Track      `json:"tracklist,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	Identifiers []Identifier `json:"identifiers,omitempty"`
	URI         string       `json:"uri,omitempty"`
}

// Artist is a credited artist. ANV is the name variation used on the release.
type Artist struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
	ANV  string `json:"anv,omitempty"`
	Join string `json:"join,omitempty"`
	Role string `json:"role,omitempty"`
}

// Label is a releasing label with catalogue number.
type Label struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	CatNo string `json:"catno,omitempty"`
}

// Format is a physical or digital format.
type Format struct {
	Name         string   `json:"name"`
	Qty          string   `json:"qty,omitempty"`
	Text         string   `json:"text,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

// Track is one tracklist entry.
type Track struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration,omitempty"`
}

// Image is a release image; Type is "primary" or "secondary".
type Image struct {
	Type   string `json:"type"`
	URI    string `json:"uri"`
	URI150 string `json:"uri150,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Identifier is a barcode, matrix or other code printed on a release.
type Identifier struct {
	Type        string `json:"type"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// CoverURL returns the cover image, falling back to the thumbnail.
func (s *SearchSummary) CoverURL() string {
	if s.CoverImage != "" {
		return s.CoverImage
	}
	return s.Thumb
}

// ArtistNames returns the credited artist names in order.
func (r *Release) ArtistNames() []string {
	names := make([]string, 0, len(r.Artists))
	for _, a := range r.Artists {
		names = append(names, a.Name)
	}
	return names
}

// CoverURL returns the primary image, or the first image when none is marked
// primary.
func (r *Release) CoverURL() string {
	for _, img := range r.Images {
		if img.Type == "primary" {
			return img.URI
		}
	}
	if len(r.Images) > 0 {
		return r.Images[0].URI
	}
	return ""
}

// Barcode returns the first identifier of type Barcode.
func (r *Release) Barcode() string {
	for _, id := range r.Identifiers {
		if id.Type == "Barcode" {
			return id.Value
		}
	}
	return ""
}

// TracklistLines renders the tracklist as "pos. title (duration)" lines.
// Position and duration are left out when empty.
func (r *Release) TracklistLines() []string {
	lines := make([]string, 0, len(r.Tracklist))
	for _, t := range r.Tracklist {
		var b strings.Builder
		if t.Position != "" {
			fmt.Fprintf(&b, "%s. ", t.Position)
		}
		b.WriteString(t.Title)
		if t.Duration != "" {
			fmt.Fprintf(&b, " (%s)", t.Duration)
		}
		lines = append(lines, b.String())
	}
	return lines
}
