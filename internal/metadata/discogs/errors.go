package discogs

import (
	"errors"
	"fmt"
)

// Sentinel errors for Discogs API operations.
var (
	ErrNotFound     = errors.New("discogs: not found")
	ErrRateLimited  = errors.New("discogs: rate limited by server")
	ErrBadRequest   = errors.New("discogs: bad request")
	ErrUnauthorized = errors.New("discogs: invalid or missing consumer credentials")
	ErrServer       = errors.New("discogs: server error")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "search", "getRelease"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("discogs %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
