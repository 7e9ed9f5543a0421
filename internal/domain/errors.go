// Package domain provides the core business entities of the gallery.
package domain

import "fmt"

// ErrorType represents the type of domain error
type ErrorType string

const (
	// ValidationError represents validation failures
	ValidationError ErrorType = "VALIDATION_ERROR"
	// SessionError represents session lifecycle failures (regenerate/destroy)
	SessionError ErrorType = "SESSION_ERROR"
	// OAuthError represents OAuth flow failures: provider rejection,
	// state mismatch or a failed code exchange
	OAuthError ErrorType = "OAUTH_ERROR"
	// GalleryError represents folder listing or temporary link failures
	GalleryError ErrorType = "GALLERY_ERROR"
	// InternalError represents internal system errors
	InternalError ErrorType = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with additional context
type Error struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(code, message string, details map[string]interface{}) *Error {
	return &Error{
		Type:    ValidationError,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewSessionError creates a new session lifecycle error
func NewSessionError(code, message string, cause error) *Error {
	return &Error{
		Type:    SessionError,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewOAuthError creates a new OAuth flow error. Message must be safe to
// show to the user; provider payloads belong in Cause.
func NewOAuthError(code, message string, cause error) *Error {
	return &Error{
		Type:    OAuthError,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewGalleryError creates a new gallery listing error
func NewGalleryError(code, message string, cause error) *Error {
	return &Error{
		Type:    GalleryError,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(code, message string, cause error) *Error {
	return &Error{
		Type:    InternalError,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
