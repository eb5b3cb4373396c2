// Package validator wraps the go-playground/validator library with a package
// level Validate function and standardized error formatting.
package validator

import (
	"errors"
	"fmt"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is the root of every error chain returned when struct
// validation fails, so callers can detect validation failures with errors.Is
// even when multiple field errors are present.
var ErrValidationFailed = errors.New("struct validation failed")

// validator is the singleton instance, initialized on package load.
var validator *gvalidator.Validate

// errStringFormat describes a single failing field.
//
// Example: "'ChainID': value '0' does not meet the requirements for the 'gt' validation"
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())
}

// formatError converts raw validator errors into a joined error chain rooted
// at ErrValidationFailed. Non-validation errors pass through unchanged.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		errs = append(errs, fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		))
	}

	return errors.Join(errs...)
}

// Validate checks the given struct against its `validate` tags. It returns
// nil when all fields pass, or a combined error including ErrValidationFailed
// and one message per failing field.
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}
