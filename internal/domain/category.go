// Package domain defines the collection model: categories, per-category field
// schemas, items, lenient enumerations and custom fields.
package domain

import (
	"slices"
	"strings"
)

// Category is the top-level classification of a collection item.
type Category string

// Known categories. The zero value is the unknown category.
const (
	CategoryUnknown      Category = ""
	CategoryBooks        Category = "BOOKS"
	CategoryFigures      Category = "FIGURES"
	CategoryMusic        Category = "MUSIC"
	CategoryMoviesTV     Category = "MOVIES_TV"
	CategoryVideoGames   Category = "VIDEO_GAMES"
	CategoryTradingCards Category = "TRADING_CARDS"
	CategoryModelKits    Category = "MODEL_KITS"
	CategoryMagazines    Category = "MAGAZINES"
	CategoryArtPrints    Category = "ART_PRINTS"
	CategoryComics       Category = "COMICS"
	CategoryCustom       Category = "CUSTOM"
)

//nolint:gochecknoglobals // Static category list
var categories = []Category{
	CategoryBooks,
	CategoryFigures,
	CategoryMusic,
	CategoryMoviesTV,
	CategoryVideoGames,
	CategoryTradingCards,
	CategoryModelKits,
	CategoryMagazines,
	CategoryArtPrints,
	CategoryComics,
	CategoryCustom,
}

// Categories returns every known category in display order.
func Categories() []Category {
	return slices.Clone(categories)
}

// ParseCategory maps a name to a category. It accepts the canonical name
// ("MOVIES_TV") as well as lower-case and dashed forms ("movies-tv").
// Unknown input yields CategoryUnknown and false.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if slices.Contains(categories, c) {
		return c, true
	}
	return CategoryUnknown, false
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c != CategoryUnknown && slices.Contains(categories, c)
}

// Slug returns the URL form of the category, e.g. "movies-tv".
func (c Category) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(c)), "_", "-")
}

func (c Category) String() string {
	return string(c)
}
