// Package validate wraps the shared request validator.
package validate

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates the tagged fields of a request DTO.
func Struct(s any) error {
	return v.Struct(s)
}

// FieldErrors flattens validator errors into a field to reason map for the
// error envelope. Returns nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
