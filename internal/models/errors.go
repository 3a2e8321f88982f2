package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by services and handlers. Handlers map them to HTTP
// status codes with errors.Is, so every error returned by a service should wrap
// exactly one of them (or be treated as internal).
var (
	ErrValidation = errors.New("validation failed")

	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrUnauthenticated)

	ErrForbidden = errors.New("forbidden")

	ErrNotFound           = errors.New("not found")
	ErrDefinitionNotFound = fmt.Errorf("definition %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrRoleNotFound       = fmt.Errorf("role %w", ErrNotFound)
	ErrTokenNotFound      = fmt.Errorf("token %w", ErrNotFound)

	ErrConflict = errors.New("conflict")
)

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field errors for a request
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError creates a validation error with a single field error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// Add appends a field error
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether at least one field error was collected
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// OrNil returns nil when no field errors were collected.
// It lets validators build errors incrementally and return the result directly.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// TransitionError reports a moderation action that the definition's current
// state does not admit. It unwraps to ErrDefinitionNotFound, so callers that
// only check for "not found" keep working.
type TransitionError struct {
	From   ModerationState
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("definition in state %q cannot be %s", e.From, e.Action)
}

func (e *TransitionError) Unwrap() error {
	return ErrDefinitionNotFound
}
