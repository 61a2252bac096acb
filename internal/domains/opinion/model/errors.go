package model

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// OpinionError định nghĩa base error cho opinion domain
type OpinionError struct {
	Code    string // Error code duy nhất (VD: "OPINION_NOT_FOUND")
	Message string // Human-readable message
	Err     error  // Underlying error
}

// Error implements error interface
func (e *OpinionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap allows error wrapping compatibility
func (e *OpinionError) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped copies still compare equal to the sentinels.
func (e *OpinionError) Is(target error) bool {
	var t *OpinionError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// ============================================
// DOMAIN-SPECIFIC ERROR DEFINITIONS
// ============================================

var ErrOpinionNotFound = &OpinionError{
	Code:    "OPINION_NOT_FOUND",
	Message: "Opinion not found",
}

var ErrDuplicateText = &OpinionError{
	Code:    "DUPLICATE_TEXT",
	Message: "An opinion with this text already exists",
}

var ErrEmptyStore = &OpinionError{
	Code:    "EMPTY_STORE",
	Message: "There are no opinions in the database",
}

var ErrInvalidCSVHeader = &OpinionError{
	Code:    "INVALID_CSV_HEADER",
	Message: "CSV header does not match the opinion fields",
}

// ErrUnstorableText backs up field validation when the store itself rejects
// the encoding of a value.
var ErrUnstorableText = &OpinionError{
	Code:    "UNSTORABLE_TEXT",
	Message: "Text fields must be valid UTF-8 without NUL characters",
}

// ValidationError carries field level messages from ozzo-validation.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.Error()
}

// FieldErrors flattens the messages for rendering next to form inputs.
func (e *ValidationError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for field, err := range e.Fields {
		out[field] = err.Error()
	}
	return out
}

// NewValidationError converts the result of validation.ValidateStruct.
// Returns nil when err is nil.
func NewValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	// Internal errors from rules are not user input problems
	return err
}

// IsValidationError reports whether err carries field messages.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrOpinionNotFound), errors.Is(err, ErrEmptyStore):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateText), errors.Is(err, ErrInvalidCSVHeader),
		errors.Is(err, ErrUnstorableText), IsValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
