package config

import (
	"errors"
	"fmt"
)

// Errors returned by settings operations.
var (
	// ErrValidationFailed indicates a setting has an unusable value.
	ErrValidationFailed = errors.New("validation failed")

	// ErrInvalidOverride indicates a malformed [[override]] entry.
	ErrInvalidOverride = errors.New("invalid override")
)

// ValidationError describes a validation failure for a setting.
type ValidationError struct {
	// Path is the setting path that failed validation.
	Path string
	// Scope is the override pattern the value came from, if any.
	Scope string
	// Value is the invalid value.
	Value any
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("%s (override %q): %s (got %v)", e.Path, e.Scope, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Path, e.Message, e.Value)
}

// Is reports whether target is ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
