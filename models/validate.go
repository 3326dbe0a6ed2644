package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so errors line up with the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(rejectNulls, ProjectPayload{})
	return v
}

func rejectNulls(sl validator.StructLevel) {
	p := sl.Current().Interface().(ProjectPayload)
	for _, field := range p.nullFields {
		sl.ReportError(nil, field, field, "notnull", "")
	}
}

// Validate checks the payload against the creation schema. A failure is a
// validator.ValidationErrors listing every offending field.
func (p ProjectPayload) Validate() error {
	return validate.Struct(p)
}
