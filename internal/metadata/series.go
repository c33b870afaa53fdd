// Package metadata holds helpers shared by the remote lookup clients.
package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

// SeriesInfo is what a catalogue title reveals about its series.
type SeriesInfo struct {
	Title  string // Title with any parenthesised series marker removed
	Series string
	Volume int // 0 when unknown
}

//nolint:gochecknoglobals // Compiled patterns
var (
	// "Dune Messiah (Dune Chronicles, Book 2)", "Emma (Penguin Classics #4)"
	parenSeries = regexp.MustCompile(`^(.*?)\s*\(([^()]+?),?\s*(?:#|[Bb]ook\s+|[Vv]ol\.?\s*|[Vv]olume\s+)(\d+)\)$`)

	// "Akira, Vol. 3", "One Piece Volume 12", "Saga #4"
	trailingVolume = regexp.MustCompile(`^(.*?)[,:]?\s+(?:[Vv]ol\.?\s*|[Vv]olume\s+|#)(\d+)$`)
)

// ParseSeries extracts series and volume markers from a title. A title
// without a marker comes back unchanged with no series.
func ParseSeries(title string) SeriesInfo {
	title = strings.TrimSpace(title)

	if m := parenSeries.FindStringSubmatch(title); m != nil {
		return SeriesInfo{
			Title:  strings.TrimSpace(m[1]),
			Series: strings.TrimSpace(m[2]),
			Volume: parseVolume(m[3]),
		}
	}

	// Volume numbering is part of the name of most manga and comics, so the
	// title is kept whole.
	if m := trailingVolume.FindStringSubmatch(title); m != nil && strings.TrimSpace(m[1]) != "" {
		return SeriesInfo{
			Title:  title,
			Series: strings.TrimSpace(m[1]),
			Volume: parseVolume(m[2]),
		}
	}

	return SeriesInfo{Title: title}
}

func parseVolume(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
