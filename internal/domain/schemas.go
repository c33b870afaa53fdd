package domain

import "slices"

func text(name string) Field      { return Field{Name: name, Kind: KindText} }
func required(name string) Field  { return Field{Name: name, Kind: KindText, Required: true} }
func integer(name string) Field   { return Field{Name: name, Kind: KindInt} }
func decimal(name string) Field   { return Field{Name: name, Kind: KindFloat} }
func boolean(name string) Field   { return Field{Name: name, Kind: KindBool} }
func date(name string) Field      { return Field{Name: name, Kind: KindTime} }
func list(name string) Field      { return Field{Name: name, Kind: KindList} }
func condition(name string) Field { return Field{Name: name, Kind: KindEnum, Enum: ConditionEnum} }

func enum(name string, set *EnumSet) Field {
	return Field{Name: name, Kind: KindEnum, Enum: set}
}

//nolint:gochecknoglobals // Category schemas are static data
var schemas = map[Category]*Schema{
	CategoryBooks: {
		Category:    CategoryBooks,
		Table:       "books",
		IDPrefix:    "book",
		Subcategory: BookSubcategories,
		Fields: []Field{
			required("title"),
			list("authors"),
			text("publisher"),
			text("isbn"),
			integer("pageCount"),
			text("genre"),
			text("series"),
			integer("volumeNumber"),
			text("language"),
			text("originalLanguage"),
			text("japaneseTitle"),
			date("releaseDate"),
			date("purchaseDate"),
			decimal("purchasePrice"),
			condition("condition"),
			text("synopsis"),
			text("notes"),
			text("description"),
			text("coverImageUrl"),
			decimal("rating"),
			enum("readStatus", ReadStatusEnum),
		},
		SearchFields: []string{"title", "authors"},
		TitleField:   "title",
	},
	CategoryFigures: {
		Category:    CategoryFigures,
		Table:       "figures",
		IDPrefix:    "fig",
		Subcategory: FigureSubcategories,
		Fields: []Field{
			required("character"),
			text("seriesAnime"),
			text("manufacturer"),
			text("scale"),
			text("sculptor"),
			date("releaseDate"),
			date("purchaseDate"),
			decimal("purchasePrice"),
			text("retailer"),
			condition("boxCondition"),
			condition("figureCondition"),
			text("displayLocation"),
			text("originalJapaneseName"),
			text("mfcUrl"),
			text("notes"),
		},
		SearchFields: []string{"character", "seriesAnime"},
		TitleField:   "character",
	},
	CategoryMusic: {
		Category:    CategoryMusic,
		Table:       "music",
		IDPrefix:    "mus",
		Subcategory: MusicSubcategories,
		Fields: []Field{
			required("albumTitle"),
			list("artists"),
			text("label"),
			text("catalogNumber"),
			text("upc"),
			text("formatDetails"),
			text("genre"),
			date("releaseDate"),
			text("countryOfRelease"),
			date("purchaseDate"),
			decimal("purchasePrice"),
			condition("mediaCondition"),
			condition("sleeveCondition"),
			text("discogsUrl"),
			list("tracklist"),
			text("notes"),
			text("coverImageUrl"),
			integer("year"),
			list("genres"),
			decimal("rating"),
			enum("listenStatus", ListenStatusEnum),
			integer("trackCount"),
			text("discogsId"),
		},
		SearchFields: []string{"albumTitle", "artists"},
		TitleField:   "albumTitle",
	},
	CategoryMoviesTV: {
		Category:    CategoryMoviesTV,
		Table:       "movies",
		IDPrefix:    "mov",
		Subcategory: MovieSubcategories,
		Fields: []Field{
			required("title"),
			text("director"),
			text("studio"),
			text("distributor"),
			text("regionCode"),
			text("upc"),
			integer("runtime"),
			text("genre"),
			date("theatricalReleaseDate"),
			date("homeVideoReleaseDate"),
			date("purchaseDate"),
			decimal("purchasePrice"),
			condition("condition"),
			text("tmdbId"),
			text("imdbId"),
			text("japaneseTitle"),
			text("notes"),
			text("overview"),
			text("posterImageUrl"),
			text("backdropImageUrl"),
			list("cast"),
			list("genres"),
			decimal("rating"),
			enum("watchStatus", WatchStatusEnum),
			text("format"),
			text("mediaType"),
		},
		SearchFields: []string{"title", "director"},
		TitleField:   "title",
	},
	CategoryVideoGames: {
		Category:    CategoryVideoGames,
		Table:       "video_games",
		IDPrefix:    "game",
		Subcategory: GameSubcategories,
		Fields: []Field{
			required("title"),
			text("platform"),
			text("publisher"),
			text("developer"),
			text("upc"),
			text("genre"),
			date("releaseDate"),
			text("region"),
			date("purchaseDate"),
			decimal("purchasePrice"),
			condition("discCartCondition"),
			condition("caseCondition"),
			condition("manualCondition"),
			boolean("isCompleteInBox"),
			text("notes"),
			text("coverImageUrl"),
			list("genres"),
			text("description"),
			decimal("rating"),
			enum("playStatus", PlayStatusEnum),
		},
		SearchFields: []string{"title", "platform"},
		TitleField:   "title",
	},
	CategoryTradingCards: {
		Category:    CategoryTradingCards,
		Table:       "trading_cards",
		IDPrefix:    "card",
		Subcategory: CardSubcategories,
		Fields: []Field{
			required("cardName"),
			text("setExpansion"),
			text("cardNumber"),
			text("rarity"),
			condition("condition"),
			text("gradingService"),
			text("grade"),
			text("language"),
			text("edition"),
			date("purchaseDate"),
			decimal("purchasePrice"),
			decimal("estimatedValue"),
			{Name: "quantityOwned", Kind: KindInt, Default: int64(1)},
			text("notes"),
		},
		SearchFields: []string{"cardName", "setExpansion"},
		TitleField:   "cardName",
	},
	CategoryModelKits: {
		Category:    CategoryModelKits,
		Table:       "model_kits",
		IDPrefix:    "kit",
		Subcategory: ModelSubcategories,
		Fields: []Field{
			required("kitName"),
			text("seriesSource"),
			text("manufacturer"),
			text("scaleGrade"),
			date("releaseDate"),
			date("purchaseDate"),
			decimal("purchasePrice"),
			enum("buildStatus", BuildStatusEnum),
			boolean("isPainted"),
			text("notes"),
		},
		SearchFields: []string{"kitName", "seriesSource"},
		TitleField:   "kitName",
	},
	CategoryMagazines: {
		Category: CategoryMagazines,
		Table:    "magazines",
		IDPrefix: "mag",
		Fields: []Field{
			required("title"),
			text("issueNumber"),
			text("publisher"),
			text("issn"),
			text("language"),
			text("coverFeature"),
			date("purchaseDate"),
			decimal("purchasePrice"),
			condition("condition"),
			text("notes"),
		},
		SearchFields: []string{"title", "issueNumber"},
		TitleField:   "title",
	},
	CategoryArtPrints: {
		Category:    CategoryArtPrints,
		Table:       "art_prints",
		IDPrefix:    "art",
		Subcategory: ArtSubcategories,
		Fields: []Field{
			required("title"),
			text("artist"),
			text("seriesSource"),
			text("dimensions"),
			text("printNumber"),
			text("medium"),
			boolean("isSigned"),
			date("purchaseDate"),
			decimal("purchasePrice"),
			text("purchaseSource"),
			boolean("isFramed"),
			text("displayLocation"),
			text("notes"),
		},
		SearchFields: []string{"title", "artist"},
		TitleField:   "title",
	},
	CategoryComics: {
		Category:    CategoryComics,
		Table:       "comics",
		IDPrefix:    "comic",
		Subcategory: BookSubcategories,
		Fields: []Field{
			required("title"),
			text("issueNumber"),
			text("series"),
			integer("volumeNumber"),
			list("authors"),
			list("artists"),
			text("publisher"),
			date("publishDate"),
			text("coverImageUrl"),
			text("isbn"),
			text("upc"),
			integer("pageCount"),
			text("description"),
			list("genres"),
			list("characters"),
			list("storyArcs"),
			condition("condition"),
			boolean("graded"),
			text("gradingService"),
			text("grade"),
			text("variant"),
			boolean("firstAppearance"),
			date("purchaseDate"),
			decimal("purchasePrice"),
			decimal("estimatedValue"),
			text("notes"),
			decimal("rating"),
			enum("readStatus", ReadStatusEnum),
		},
		SearchFields: []string{"title", "series", "authors"},
		TitleField:   "title",
	},
	CategoryCustom: {
		Category: CategoryCustom,
		Table:    "custom_items",
		IDPrefix: "item",
		Fields: []Field{
			required("categoryName"),
			required("name"),
			text("notes"),
		},
		SearchFields: []string{"name", "categoryName"},
		TitleField:   "name",
	},
}

// SchemaFor returns the schema of a category.
func SchemaFor(c Category) (*Schema, bool) {
	s, ok := schemas[c]
	return s, ok
}

// Schemas returns all category schemas in category order.
func Schemas() []*Schema {
	out := make([]*Schema, 0, len(categories))
	for _, c := range categories {
		out = append(out, schemas[c])
	}
	return out
}

// SearchableKind reports whether a field kind can take part in substring
// search and equality filters.
func SearchableKind(k FieldKind) bool {
	return slices.Contains([]FieldKind{KindText, KindEnum, KindList}, k)
}
