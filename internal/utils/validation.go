package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps request fields to human-readable messages, the shape
// form clients key their inline errors on.
func ValidationErrors(err error) map[string]string {
	fieldErrors := make(map[string]string)

	var validationErrs validator.ValidationErrors

	if !errors.As(err, &validationErrs) {
		fieldErrors["request"] = "Invalid request body"
		return fieldErrors
	}

	for _, fieldErr := range validationErrs {
		field := snakeCase(fieldErr.Field())

		switch fieldErr.Tag() {
		case "required":
			fieldErrors[field] = "This field is required"
		case "email":
			fieldErrors[field] = "Must be a valid email address"
		case "min":
			fieldErrors[field] = "Must be at least " + fieldErr.Param() + " characters"
		case "max":
			fieldErrors[field] = "Must be at most " + fieldErr.Param() + " characters"
		default:
			fieldErrors[field] = "Invalid value"
		}
	}

	return fieldErrors
}

// snakeCase turns a struct field name into its json form, e.g. CompanyName
// into company_name.
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)

	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			// Runs of capitals like the ID in DealID stay together.
			if i > 0 && (runes[i-1] < 'A' || runes[i-1] > 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}

	return b.String()
}
