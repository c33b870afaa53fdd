package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/monomori/monomori-server/internal/errors"
	"github.com/monomori/monomori-server/internal/http/response"
	"github.com/monomori/monomori-server/internal/store"
)

// APIError is the error body every operation returns. EnvelopeTransformer
// wraps it into the coded error envelope.
type APIError struct { //nolint:revive // Reads better than api.Error next to domain errors
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Field problems or request validation messages"`
}

func (e *APIError) Error() string { return e.Message }

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int { return e.status }

func (e *APIError) ContentType(string) string { return "application/json" }

// RegisterErrorHandler makes huma build every error through newAPIError.
// huma.NewError is package state, so this affects all APIs in the process.
func RegisterErrorHandler() {
	huma.NewError = newAPIError
}

// newAPIError turns what a handler or huma reports into an APIError. The
// first domain or store error among errs decides status and message.
// Other errors become details on client errors and are dropped on server
// errors, where they could leak internals.
func newAPIError(status int, message string, errs ...error) huma.StatusError {
	var details []string
	for _, err := range errs {
		if err == nil {
			continue
		}
		if apiErr, ok := fromKnownError(err); ok {
			return apiErr
		}
		details = append(details, err.Error())
	}

	apiErr := &APIError{status: status, Code: string(response.CodeForStatus(status)), Message: message}
	if status < 500 && len(details) > 0 {
		apiErr.Details = details
	}
	return apiErr
}

func fromKnownError(err error) (*APIError, bool) {
	var de *domainerrors.Error
	if errors.As(err, &de) {
		return &APIError{status: de.HTTPStatus(), Code: string(de.Code), Message: de.Message, Details: de.Details}, true
	}
	var se *store.Error
	if errors.As(err, &se) {
		return &APIError{status: se.HTTPCode(), Code: string(response.CodeForStatus(se.HTTPCode())), Message: se.Message}, true
	}
	return nil, false
}
