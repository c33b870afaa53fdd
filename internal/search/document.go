package search

import (
	"strings"

	"github.com/monomori/monomori-server/internal/domain"
)

// SearchDocument is the unified document indexed for every collection item.
// Item ids are only unique within a category, so the document id joins the
// two.
type SearchDocument struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	Category    domain.Category `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`

	Name        string `json:"name"`
	Creators    string `json:"creators,omitempty"`
	Series      string `json:"series,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Description string `json:"description,omitempty"`

	Tags    []string `json:"tags,omitempty"`
	Genres  []string `json:"genres,omitempty"`
	Barcode string   `json:"barcode,omitempty"`
	Year    int      `json:"year,omitempty"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// DocumentID returns the index id of an item.
func DocumentID(category domain.Category, itemID string) string {
	return string(category) + ":" + itemID
}

// ToMap converts the document to a map for Bleve indexing.
// Field names must match the mapping exactly.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"item_id":    d.ItemID,
		"category":   string(d.Category),
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Subcategory != "" {
		m["subcategory"] = d.Subcategory
	}
	if d.Creators != "" {
		m["creators"] = d.Creators
	}
	if d.Series != "" {
		m["series"] = d.Series
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if d.Barcode != "" {
		m["barcode"] = d.Barcode
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}

	return m
}

type role int

const (
	roleCreators role = iota + 1
	roleSeries
	rolePublisher
	roleDescription
	roleGenres
	roleYear
)

// fieldRoles maps item attributes onto document fields. Attributes of the
// same role from one item are joined.
//
//nolint:gochecknoglobals // Static lookup table
var fieldRoles = map[string]role{
	"authors":      roleCreators,
	"artists":      roleCreators,
	"artist":       roleCreators,
	"director":     roleCreators,
	"cast":         roleCreators,
	"developer":    roleCreators,
	"manufacturer": roleCreators,
	"sculptor":     roleCreators,

	"series":       roleSeries,
	"seriesAnime":  roleSeries,
	"seriesSource": roleSeries,
	"setExpansion": roleSeries,
	"storyArcs":    roleSeries,
	"platform":     roleSeries,

	"publisher":   rolePublisher,
	"label":       rolePublisher,
	"studio":      rolePublisher,
	"distributor": rolePublisher,

	"description":  roleDescription,
	"synopsis":     roleDescription,
	"overview":     roleDescription,
	"coverFeature": roleDescription,
	"notes":        roleDescription,

	"genre":  roleGenres,
	"genres": roleGenres,

	"year":                  roleYear,
	"releaseDate":           roleYear,
	"publishDate":           roleYear,
	"theatricalReleaseDate": roleYear,
}

// ItemToSearchDocument converts a stored item to a search document using its
// category schema to pick the display name.
func ItemToSearchDocument(schema *domain.Schema, item domain.Item) *SearchDocument {
	doc := &SearchDocument{
		ID:          DocumentID(item.Category, item.ID),
		ItemID:      item.ID,
		Category:    item.Category,
		Subcategory: item.Subcategory,
		Name:        schema.Title(item),
		Tags:        lowerAll(item.Tags),
		Barcode:     item.Barcode,
		CreatedAt:   item.DateAdded.UnixMilli(),
		UpdatedAt:   item.LastModified.UnixMilli(),
	}

	parts := make(map[role][]string)
	for _, f := range schema.Fields {
		r, ok := fieldRoles[f.Name]
		if !ok {
			continue
		}
		if r == roleYear {
			if doc.Year == 0 {
				doc.Year = yearOf(item.Attributes, f)
			}
			continue
		}
		parts[r] = append(parts[r], textValues(item.Attributes, f)...)
	}

	doc.Creators = strings.Join(parts[roleCreators], ", ")
	doc.Series = strings.Join(parts[roleSeries], ", ")
	doc.Publisher = strings.Join(parts[rolePublisher], ", ")
	doc.Description = strings.Join(parts[roleDescription], "\n")
	doc.Genres = lowerAll(parts[roleGenres])

	return doc
}

func textValues(attrs domain.Attributes, f domain.Field) []string {
	switch f.Kind {
	case domain.KindList:
		return attrs.Strings(f.Name)
	case domain.KindText, domain.KindEnum:
		if s := strings.TrimSpace(attrs.String(f.Name)); s != "" {
			return []string{s}
		}
	}
	return nil
}

func yearOf(attrs domain.Attributes, f domain.Field) int {
	switch f.Kind {
	case domain.KindInt:
		if n, ok := attrs.Int(f.Name); ok {
			return int(n)
		}
	case domain.KindTime:
		if t, ok := attrs.Time(f.Name); ok && !t.IsZero() {
			return t.Year()
		}
	}
	return 0
}

func lowerAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
