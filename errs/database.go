package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotFound = errors.New("not found")

// Document store errors
var (
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrStoreInsert       = errors.New("store rejected document")
	ErrMalformedRecord   = errors.New("malformed stored record")
)

// NewStoreUnavailableError is returned when the backend runs without a store handle.
func NewStoreUnavailableError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        labeled(ErrStoreUnavailable, "Database not available"),
	}
}

// NewInvalidIdentifierError reports an identifier the store cannot parse.
func NewInvalidIdentifierError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        labeled(ErrInvalidIdentifier, "Invalid id"),
		Field:      "id",
		Cause:      cause,
	}
}

// NewStoreInsertError surfaces the store's own message for a rejected insert.
func NewStoreInsertError(entity string, cause error) *ApiErr {
	msg := fmt.Sprintf("failed to insert %s", entity)
	if cause != nil {
		msg = cause.Error()
	}
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        labeled(ErrStoreInsert, msg),
		Cause:      cause,
	}
}

// NewMalformedRecordError reports a stored record that does not decode into the
// expected shape.
func NewMalformedRecordError(entity string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrMalformedRecord,
		Details:    fmt.Sprintf("stored %s has an unexpected shape", entity),
		Cause:      cause,
	}
}

func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

func IsInvalidIdentifier(err error) bool {
	return errors.Is(err, ErrInvalidIdentifier)
}
