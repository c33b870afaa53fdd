package googlebooks

import (
	"errors"
	"fmt"
)

// Sentinel errors for Google Books API operations.
var (
	ErrNotFound     = errors.New("googlebooks: not found")
	ErrRateLimited  = errors.New("googlebooks: rate limited by server")
	ErrBadRequest   = errors.New("googlebooks: bad request")
	ErrUnauthorized = errors.New("googlebooks: invalid or missing api key")
	ErrServer       = errors.New("googlebooks: server error")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "search", "getVolume"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("googlebooks %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
