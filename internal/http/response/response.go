// Package response writes the versioned JSON envelope every API response
// uses. Huma operations get it through a transformer; raw chi routes (cover
// bytes, rate limiting) write it with the helpers here.
package response

import (
	"encoding/json/v2"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/monomori/monomori-server/internal/errors"
	"github.com/monomori/monomori-server/internal/store"
)

// Version is the envelope format version sent as "v". Clients refuse
// envelopes with a version they do not know.
const Version = 1

// Envelope wraps successful responses and simple errors.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorEnvelope wraps errors that carry a machine-readable code.
type ErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data any) Envelope {
	return Envelope{Version: Version, Success: true, Data: data}
}

// Fail builds a simple error envelope.
func Fail(message string) Envelope {
	return Envelope{Version: Version, Error: message}
}

// FailWithCode builds a coded error envelope.
func FailWithCode(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{
		Version: Version,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// JSON writes body with the given status code using json/v2.
func JSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.MarshalWrite(w, body); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// Success writes data in a 200 envelope.
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, OK(data), logger)
}

// Error writes a simple error envelope.
func Error(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	JSON(w, status, Fail(message), logger)
}

// Coded writes a coded error envelope.
func Coded(w http.ResponseWriter, status int, code, message string, details any, logger *slog.Logger) {
	JSON(w, status, FailWithCode(code, message, details), logger)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Coded(w, http.StatusNotFound, string(domainerrors.CodeNotFound), message, nil, logger)
}

// TooManyRequests writes a 429 response.
func TooManyRequests(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, "too many requests", logger)
}

// HandleError maps err to a coded error response. Domain errors keep their
// code and details, store errors their status; anything else is a 500 that
// does not leak the underlying message.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		Coded(w, domainErr.HTTPStatus(), string(domainErr.Code), domainErr.Message, domainErr.Details, logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		Coded(w, storeErr.HTTPCode(), string(CodeForStatus(storeErr.HTTPCode())), storeErr.Message, nil, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	Coded(w, http.StatusInternalServerError, string(domainerrors.CodeInternal), "internal server error", nil, logger)
}

// CodeForStatus maps an HTTP status to the closest domain error code.
func CodeForStatus(status int) domainerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domainerrors.CodeValidation
	case http.StatusNotFound:
		return domainerrors.CodeNotFound
	case http.StatusConflict:
		return domainerrors.CodeConflict
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		return domainerrors.CodeUnavailable
	default:
		return domainerrors.CodeInternal
	}
}
