package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Request & Input-Validation Errors
var (
	ErrSchemaViolation     = errors.New("schema violation")
	ErrMalformedPayload    = errors.New("malformed payload")
	ErrMaxBodySizeExceeded = errors.New("max body size exceeded")
)

// NewSchemaViolationError reports a body or query value that does not satisfy the
// request schema. Mirrors the 422 an OpenAPI-validated framework would return.
func NewSchemaViolationError(field, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnprocessableEntity,
		err:        labeled(ErrSchemaViolation, reason),
		Field:      field,
	}
}

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnprocessableEntity,
		err:        labeled(ErrMalformedPayload, fmt.Sprintf("malformed %s payload", payloadType)),
		Cause:      cause,
		Field:      "body",
	}
}

func NewMaxBodySizeExceededError(maxSize int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrMaxBodySizeExceeded,
		Details:    fmt.Sprintf("Request body size exceeded maximum allowed size of %d bytes", maxSize),
		Field:      "body",
	}
}
