package store

import "net/http"

// Error is returned by the storage backends. Code is the HTTP status the
// API answers with; Message is safe to show to clients.
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so derived copies still satisfy
// errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPCode returns the status the API should answer with.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a copy of e with msg as its message.
func (e *Error) WithMessage(msg string) *Error {
	out := *e
	out.Message = msg
	return &out
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	out := *e
	out.Err = err
	return &out
}

var (
	// ErrNotFound reports a missing item or record.
	ErrNotFound = &Error{Code: http.StatusNotFound, Message: "resource not found"}
	// ErrInvalidInput reports a request the backend cannot execute, such as
	// an unknown category or filter field.
	ErrInvalidInput = &Error{Code: http.StatusBadRequest, Message: "invalid input"}
)
