package service

import (
	"fmt"
	"log/slog"
)

// Page selects a window of remote lookup results. Zero fields fall back to
// the remote source's defaults.
type Page struct {
	Number int // 1-based
	Size   int
}

func (p Page) number() int {
	return max(p.Number, 1)
}

// offset converts the page number to a 0-based result index for sources
// that page by start index. defaultSize applies when Size is unset.
func (p Page) offset(defaultSize int) int {
	size := p.Size
	if size <= 0 {
		size = defaultSize
	}
	return (p.number() - 1) * size
}

// mapSafely runs a remote-payload mapper and turns a panic into a skipped
// result so one malformed record cannot fail the whole lookup.
func mapSafely[T any](logger *slog.Logger, source string, mapper func() T) (out T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("mapping remote result failed", "source", source, "panic", fmt.Sprint(r))
			var zero T
			out, ok = zero, false
		}
	}()
	return mapper(), true
}
