package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/monomori/monomori-server/internal/http/response"
)

// EnvelopeVersion is the "v" field of every JSON response.
const EnvelopeVersion = response.Version

// APIEnvelope is the success and simple-error response shape.
type APIEnvelope = response.Envelope //nolint:revive // API prefix is intentional for clarity

// APIErrorEnvelope is the coded error response shape.
type APIErrorEnvelope = response.ErrorEnvelope //nolint:revive // API prefix is intentional for clarity

// EnvelopeTransformer wraps every huma response body in the envelope.
// Errors with a code keep it; other errors become a plain message. Raw byte
// bodies such as cover images pass through untouched.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case []byte:
		return v, nil
	case APIEnvelope, APIErrorEnvelope:
		return v, nil
	case *APIError:
		if body.Code == "" {
			return response.Fail(body.Message), nil
		}
		return response.FailWithCode(body.Code, body.Message, body.Details), nil
	case error:
		return response.Fail(body.Error()), nil
	}

	if len(status) > 0 && status[0] != '2' && status[0] != '3' {
		return response.Fail("request failed"), nil
	}
	return response.OK(v), nil
}
