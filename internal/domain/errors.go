package domain

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors shared across services and repositories. Handlers map
// these to HTTP status codes; messages are safe to return to callers.
var (
	ErrNotFound           = errors.New("record not found")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrPhoneTaken         = errors.New("Phone number already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError aggregates per-field violations so a caller sees every
// problem at once rather than one per round trip.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a violation for a field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// Err returns the error, or nil when no violations were recorded.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, m := range e.Fields {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
