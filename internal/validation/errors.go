package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies a field failure.
type ErrorType string

const (
	ErrorTypeRequired      ErrorType = "required"
	ErrorTypeInvalidFormat ErrorType = "invalid_format"
	ErrorTypeInvalidValue  ErrorType = "invalid_value"
	ErrorTypeInvalidRange  ErrorType = "invalid_range"
)

// FieldError is a failure for one form field.
type FieldError struct {
	Field   string
	Type    ErrorType
	Message string
	Value   string
}

func (fe *FieldError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", fe.Field, fe.Message)
}

// ValidationError collects every field failure of one form.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "validation error"
	case 1:
		return ve.Errors[0].Error()
	}
	messages := make([]string, 0, len(ve.Errors))
	for i := range ve.Errors {
		messages = append(messages, ve.Errors[i].Error())
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(messages, "; "))
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// HasErrors reports whether any field failed.
func (ve *ValidationError) HasErrors() bool {
	return len(ve.Errors) > 0
}

// FieldErrors returns the failures for one field.
func (ve *ValidationError) FieldErrors(field string) []FieldError {
	var out []FieldError
	for _, fe := range ve.Errors {
		if fe.Field == field {
			out = append(out, fe)
		}
	}
	return out
}

// UserMessage returns the text shown next to a form.
func (ve *ValidationError) UserMessage() string {
	switch len(ve.Errors) {
	case 0:
		return "Input validation failed"
	case 1:
		return ve.Errors[0].Message
	}
	messages := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		messages = append(messages, fe.Message)
	}
	return strings.Join(messages, "; ")
}

func (ve *ValidationError) add(field string, typ ErrorType, message, value string) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Type: typ, Message: message, Value: value})
}

func (ve *ValidationError) addRequired(field string) {
	ve.add(field, ErrorTypeRequired, fmt.Sprintf("%s is required", field), "")
}

func (ve *ValidationError) addFormat(field, value, expected string) {
	ve.add(field, ErrorTypeInvalidFormat, fmt.Sprintf("%s has invalid format, expected: %s", field, expected), value)
}

func (ve *ValidationError) addRange(field, value, reason string) {
	ve.add(field, ErrorTypeInvalidRange, fmt.Sprintf("%s %s", field, reason), value)
}

// result returns nil when nothing failed so callers can `return req, ve.result()`.
func (ve *ValidationError) result() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}
