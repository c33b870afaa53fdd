// Package errors defines the coded errors services return to the API layer.
// A code decides the HTTP status; the message is safe to show to clients.
//
//	if len(problems) > 0 {
//	    return errors.ValidationWithDetails("invalid item", problems)
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Is and As are re-exported so callers need only one errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Code classifies an error for clients.
type Code string

const (
	CodeNotFound    Code = "NOT_FOUND"
	CodeValidation  Code = "VALIDATION"
	CodeConflict    Code = "CONFLICT"
	CodeUnavailable Code = "UNAVAILABLE"
	CodeInternal    Code = "INTERNAL"
)

//nolint:gochecknoglobals // Static code table
var statusByCode = map[Code]int{
	CodeNotFound:    http.StatusNotFound,
	CodeValidation:  http.StatusBadRequest,
	CodeConflict:    http.StatusConflict,
	CodeUnavailable: http.StatusServiceUnavailable,
	CodeInternal:    http.StatusInternalServerError,
}

// HTTPStatus maps c to a response status. Unknown codes are server errors.
func (c Code) HTTPStatus() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a coded error. Details, when set, is serialised next to the
// message; validation uses it for per-field problems.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPStatus returns the status for e's code.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	out := *e
	out.Details = details
	return &out
}

// Sentinels for errors.Is.
var (
	ErrNotFound   = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation = &Error{Code: CodeValidation, Message: "validation error"}
)

func newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing item, cover, or lookup result.
func NotFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }

func NotFoundf(format string, args ...any) *Error { return newf(CodeNotFound, format, args...) }

// Validation reports input the caller must fix.
func Validation(msg string) *Error { return &Error{Code: CodeValidation, Message: msg} }

func Validationf(format string, args ...any) *Error { return newf(CodeValidation, format, args...) }

// ValidationWithDetails reports per-field problems, typically a
// map[string]string of field name to message.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Wrap attaches code and msg to err. The cause stays reachable through
// errors.Is and errors.As but is never sent to clients.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
