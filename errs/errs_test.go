package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      *ApiErr
		sentinel error
		status   int
		message  string
	}{
		{"not found", NewNotFoundError("Project not found"), ErrNotFound, http.StatusNotFound, "Project not found"},
		{"bad request", NewBadRequestError("nope"), ErrBadRequest, http.StatusBadRequest, "nope"},
		{"internal", NewInternalErrorWithCause("Failed to find projects", errors.New("boom")), ErrInternal, http.StatusInternalServerError, "Failed to find projects"},
		{"store unavailable", NewStoreUnavailableError(), ErrStoreUnavailable, http.StatusInternalServerError, "Database not available"},
		{"invalid id", NewInvalidIdentifierError(errors.New("bad hex")), ErrInvalidIdentifier, http.StatusBadRequest, "Invalid id"},
		{"insert", NewStoreInsertError("project", errors.New("document too large")), ErrStoreInsert, http.StatusBadRequest, "document too large"},
		{"schema", NewSchemaViolationError("title", "field required"), ErrSchemaViolation, http.StatusUnprocessableEntity, "field required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestGetFullError(t *testing.T) {
	inner := NewInternalErrorWithCause("inner", errors.New("root cause"))
	outer := NewInternalErrorWithCause("outer", inner)

	assert.Equal(t, "outer -> inner -> root cause", outer.GetFullError())
	assert.ErrorIs(t, outer, ErrInternal)
}
