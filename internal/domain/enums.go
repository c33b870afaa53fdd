package domain

import (
	"slices"
	"strings"
)

// EnumSet is the closed set of names an enumerated attribute accepts.
// Parsing is total: a name outside the set maps to the empty string, which
// stands for "unknown" and is stored as absent.
type EnumSet struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Parse returns the canonical member matching s, or "" if there is none.
// Matching ignores surrounding whitespace and case.
func (e EnumSet) Parse(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if slices.Contains(e.Values, s) {
		return s
	}
	return ""
}

// Contains reports whether s is exactly a member of the set.
func (e EnumSet) Contains(s string) bool {
	return slices.Contains(e.Values, s)
}

func enumOf[T ~string](name string, values ...T) *EnumSet {
	set := &EnumSet{Name: name, Values: make([]string, len(values))}
	for i, v := range values {
		set.Values[i] = string(v)
	}
	return set
}

func parseEnum[T ~string](s string, values []T) T {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, v := range values {
		if string(v) == s {
			return v
		}
	}
	var unknown T
	return unknown
}

// ItemCondition grades the physical state of an item or one of its parts.
type ItemCondition string

// Item conditions.
const (
	ConditionUnknown   ItemCondition = ""
	ConditionMint      ItemCondition = "MINT"
	ConditionNearMint  ItemCondition = "NEAR_MINT"
	ConditionExcellent ItemCondition = "EXCELLENT"
	ConditionGood      ItemCondition = "GOOD"
	ConditionFair      ItemCondition = "FAIR"
	ConditionPoor      ItemCondition = "POOR"
)

//nolint:gochecknoglobals // Static enum table
var itemConditions = []ItemCondition{
	ConditionMint, ConditionNearMint, ConditionExcellent,
	ConditionGood, ConditionFair, ConditionPoor,
}

// ParseItemCondition never fails; unknown names yield ConditionUnknown.
func ParseItemCondition(s string) ItemCondition {
	return parseEnum(s, itemConditions)
}

// BuildStatus tracks progress on a model kit.
type BuildStatus string

// Build statuses.
const (
	BuildUnknown    BuildStatus = ""
	BuildUnbuilt    BuildStatus = "UNBUILT"
	BuildInProgress BuildStatus = "IN_PROGRESS"
	BuildCompleted  BuildStatus = "COMPLETED"
)

//nolint:gochecknoglobals // Static enum table
var buildStatuses = []BuildStatus{BuildUnbuilt, BuildInProgress, BuildCompleted}

// ParseBuildStatus never fails; unknown names yield BuildUnknown.
func ParseBuildStatus(s string) BuildStatus {
	return parseEnum(s, buildStatuses)
}

// ReadStatus is the reading progress of a book or comic.
type ReadStatus string

// Read statuses.
const (
	ReadUnknown    ReadStatus = ""
	ReadWantToRead ReadStatus = "WANT_TO_READ"
	ReadReading    ReadStatus = "READING"
	ReadRead       ReadStatus = "READ"
	ReadDropped    ReadStatus = "DROPPED"
)

//nolint:gochecknoglobals // Static enum table
var readStatuses = []ReadStatus{ReadWantToRead, ReadReading, ReadRead, ReadDropped}

// ParseReadStatus never fails; unknown names yield ReadUnknown.
func ParseReadStatus(s string) ReadStatus {
	return parseEnum(s, readStatuses)
}

// WatchStatus is the viewing progress of a movie or show.
type WatchStatus string

// Watch statuses.
const (
	WatchUnknown     WatchStatus = ""
	WatchWantToWatch WatchStatus = "WANT_TO_WATCH"
	WatchWatching    WatchStatus = "WATCHING"
	WatchWatched     WatchStatus = "WATCHED"
	WatchDropped     WatchStatus = "DROPPED"
)

//nolint:gochecknoglobals // Static enum table
var watchStatuses = []WatchStatus{WatchWantToWatch, WatchWatching, WatchWatched, WatchDropped}

// ParseWatchStatus never fails; unknown names yield WatchUnknown.
func ParseWatchStatus(s string) WatchStatus {
	return parseEnum(s, watchStatuses)
}

// ListenStatus is the listening progress of a music release.
type ListenStatus string

// Listen statuses.
const (
	ListenUnknown      ListenStatus = ""
	ListenWantToListen ListenStatus = "WANT_TO_LISTEN"
	ListenListening    ListenStatus = "LISTENING"
	ListenListened     ListenStatus = "LISTENED"
	ListenDropped      ListenStatus = "DROPPED"
)

//nolint:gochecknoglobals // Static enum table
var listenStatuses = []ListenStatus{ListenWantToListen, ListenListening, ListenListened, ListenDropped}

// ParseListenStatus never fails; unknown names yield ListenUnknown.
func ParseListenStatus(s string) ListenStatus {
	return parseEnum(s, listenStatuses)
}

// PlayStatus is the play-through progress of a video game.
type PlayStatus string

// Play statuses.
const (
	PlayUnknown    PlayStatus = ""
	PlayWantToPlay PlayStatus = "WANT_TO_PLAY"
	PlayPlaying    PlayStatus = "PLAYING"
	PlayCompleted  PlayStatus = "COMPLETED"
	PlayDropped    PlayStatus = "DROPPED"
)

//nolint:gochecknoglobals // Static enum table
var playStatuses = []PlayStatus{PlayWantToPlay, PlayPlaying, PlayCompleted, PlayDropped}

// ParsePlayStatus never fails; unknown names yield PlayUnknown.
func ParsePlayStatus(s string) PlayStatus {
	return parseEnum(s, playStatuses)
}

// Enum sets referenced by the category schemas.
//
//nolint:gochecknoglobals // Static enum tables
var (
	ConditionEnum    = enumOf("ItemCondition", itemConditions...)
	BuildStatusEnum  = enumOf("BuildStatus", buildStatuses...)
	ReadStatusEnum   = enumOf("ReadStatus", readStatuses...)
	WatchStatusEnum  = enumOf("WatchStatus", watchStatuses...)
	ListenStatusEnum = enumOf("ListenStatus", listenStatuses...)
	PlayStatusEnum   = enumOf("PlayStatus", playStatuses...)

	BookSubcategories = enumOf("BookSubcategory",
		"FICTION", "NON_FICTION", "MANGA", "ART_BOOKS", "COMICS", "GRAPHIC_NOVELS")
	FigureSubcategories = enumOf("FigureSubcategory",
		"SCALE_1_4", "SCALE_1_6", "SCALE_1_7", "SCALE_1_8", "SCALE_OTHER",
		"NENDOROID", "PRIZE_FIGURE", "FIGMA", "ACTION_FIGURE", "FUNKO_POP")
	MusicSubcategories = enumOf("MusicSubcategory", "VINYL", "CD", "CASSETTE")
	MovieSubcategories = enumOf("MovieSubcategory", "DVD", "BLU_RAY", "UHD_4K", "VHS")
	GameSubcategories  = enumOf("GameSubcategory", "GAME", "CONSOLE", "ACCESSORY", "LIMITED_EDITION")
	CardSubcategories  = enumOf("CardSubcategory",
		"POKEMON", "MAGIC_THE_GATHERING", "YU_GI_OH", "SPORTS", "OTHER_TCG")
	ModelSubcategories = enumOf("ModelSubcategory",
		"GUNPLA", "SCALE_MODEL_CAR", "SCALE_MODEL_PLANE", "SCALE_MODEL_TANK", "MINIATURE_WARHAMMER")
	ArtSubcategories = enumOf("ArtSubcategory",
		"POSTER", "LIMITED_EDITION_PRINT", "ORIGINAL_ART", "DOUJINSHI")
)
