// Package apperr holds the error taxonomy shared by the gateway and the backend client.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrAuthRequired = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBackend      = errors.New("backend rejected request")
	ErrNetwork      = errors.New("backend unreachable")
)

// ValidationError is a client-side rejection tied to one input field.
type ValidationError struct {
	Field   string
	Message string
}

func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// BackendError is a non-2xx or success:false answer from the backend.
// Message is the user-facing text extracted from the envelope, possibly empty.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error (status %d)", e.Status)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

func (e *BackendError) Is(target error) bool {
	switch target {
	case ErrBackend:
		return true
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrAuthRequired:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// NetworkError wraps a transport failure (dial, timeout, broken body).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }

// UserMessage returns the text safe to show to an end user.
func UserMessage(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return fallback
}
