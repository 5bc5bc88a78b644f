package service

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every public service method returns one of these (possibly
// wrapped) or an internal error that handlers report as INTERNAL_ERROR.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Specialisations that still match their parent with errors.Is.
var (
	ErrClassNotFound   = fmt.Errorf("class %w", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	ErrEmailTaken      = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrCodeExhausted   = fmt.Errorf("no free class code: %w", ErrConflict)
)

// FieldError is a validation failure attributable to one request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes FieldError match ErrValidation.
func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}

// RateLimitedError reports a throttled request with retry guidance.
type RateLimitedError struct {
	Limit      int
	Remaining  int
	RetryAfter int // seconds
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: retry after %ds", e.RetryAfter)
}
