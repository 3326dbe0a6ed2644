package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rpupo63/aether-backend/errs"
)

// parseOptionalBool returns nil when key is absent from the query.
func parseOptionalBool(query url.Values, key string) (*bool, error) {
	if !query.Has(key) {
		return nil, nil
	}

	switch strings.ToLower(strings.TrimSpace(query.Get(key))) {
	case "true", "1", "yes", "on", "t", "y":
		v := true
		return &v, nil
	case "false", "0", "no", "off", "f", "n":
		v := false
		return &v, nil
	}
	return nil, errs.NewSchemaViolationError(key, "value could not be parsed to a boolean")
}

func parseLimit(query url.Values, key string, defaultValue int64) (int64, error) {
	if !query.Has(key) {
		return defaultValue, nil
	}

	limit, err := strconv.ParseInt(strings.TrimSpace(query.Get(key)), 10, 64)
	if err != nil {
		return 0, errs.NewSchemaViolationError(key, "value is not a valid integer")
	}
	if limit < 0 {
		return 0, errs.NewSchemaViolationError(key, "value must be greater than or equal to 0")
	}
	return limit, nil
}

// decodeError turns a json decoding failure into a schema violation.
func decodeError(payloadType string, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return errs.NewSchemaViolationError(field, fmt.Sprintf("value is not a valid %s", typeErr.Type))
	}
	return errs.NewMalformedPayloadError(payloadType, err)
}

// validationError reports the first field that failed validation.
func validationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return errs.NewSchemaViolationError("body", err.Error())
	}

	fe := validationErrs[0]
	reason := fmt.Sprintf("failed on the %q rule", fe.Tag())
	switch fe.Tag() {
	case "required":
		reason = "field required"
	case "notnull":
		reason = "none is not an allowed value"
	}
	return errs.NewSchemaViolationError(fe.Field(), reason)
}
