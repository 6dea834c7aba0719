// Package errors provides the error types used across the roomsync
// system. The taxonomy mirrors the propagation policy: configuration
// errors abort the whole run, room errors abort one room, item errors
// are logged and skipped so one bad record never blocks the rest.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's chain matches target.
// It's an alias for the standard library errors.Is.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// It's an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors.
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAccessKeyRequired indicates that a source API access key is required but not provided
	ErrAccessKeyRequired = errors.New("access key required")

	// ErrSourceUnavailable indicates that the scheduling API is temporarily unavailable
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// ConfigError represents a configuration error. It is fatal for the
// entire run: no room is processed when one is raised during startup.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// RoomError represents a failure that aborts one room's sync while the
// remaining rooms proceed, such as a calendar folder bind failure.
type RoomError struct {
	Room    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *RoomError) Error() string {
	return fmt.Sprintf("room %s: %s", e.Room, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *RoomError) Unwrap() error {
	return e.Err
}

// NewRoomError creates a new RoomError
func NewRoomError(room, message string, err error) *RoomError {
	return &RoomError{Room: room, Message: message, Err: err}
}

// APIError represents an error from the scheduling API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	if e.StatusCode == 429 {
		return target == ErrRateLimited
	}
	if e.StatusCode >= 500 {
		return target == ErrSourceUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ItemError represents a transient per-item failure: one meeting detail
// fetch, one instructor detail fetch, or one calendar write. The item
// is skipped and logged; the room's remaining items continue. Skipped
// items are picked up again on the next scheduled run.
type ItemError struct {
	Operation string // "fetch", "create", "update", "remove"
	Resource  string // "meeting", "instructor", "appointment"
	ID        string
	Err       error
}

// Error implements the error interface
func (e *ItemError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %v", e.Operation, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Resource, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ItemError) Unwrap() error {
	return e.Err
}

// NewItemError creates a new ItemError
func NewItemError(operation, resource, id string, err error) *ItemError {
	return &ItemError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Err:       err,
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	Subject string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.Subject, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Helper wrapping functions for common patterns

// WrapParse wraps an error as a ParseError
func WrapParse(format, subject string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, Subject: subject, Message: err.Error(), Err: err}
}

// WrapItem wraps an error as an ItemError
func WrapItem(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewItemError(operation, resource, id, err)
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsSourceUnavailable checks if an error indicates source unavailability
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsFatal reports whether an error should abort the run rather than be
// skipped: configuration errors are the only run-fatal class.
func IsFatal(err error) bool {
	var cfg *ConfigError
	return errors.As(err, &cfg)
}

// IsRoomFatal reports whether an error should abort the current room.
func IsRoomFatal(err error) bool {
	var room *RoomError
	return errors.As(err, &room)
}
