// Package errors provides the typed error taxonomy for eccnsync.
// Boundary failures (credential exchange, export fetch, spreadsheet access and
// writes) and configuration failures each have their own type so callers can
// decide between retrying and aborting without parsing messages.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As are the standard library helpers, re-exported so callers need a
// single errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	// ErrConfig indicates an invalid schema, job or credential configuration.
	ErrConfig = errors.New("configuration error")

	// ErrAuth indicates the credential exchange with an identity provider failed.
	ErrAuth = errors.New("authentication failed")

	// ErrFetch indicates the source export could not be fetched or decoded.
	ErrFetch = errors.New("fetch failed")

	// ErrAccess indicates the destination could not be found or opened.
	ErrAccess = errors.New("access denied")

	// ErrWrite indicates the destination rejected a clear or write.
	ErrWrite = errors.New("write rejected")

	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")
)

// ConfigError represents a configuration error. It is fatal and aborts a run
// before anything is written.
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

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// AuthError represents a failed credential exchange.
type AuthError struct {
	Provider   string
	Method     string // "refresh_token", "client_credentials", "service_account"
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *AuthError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication error for %s (%s, status %d): %s", e.Provider, e.Method, e.StatusCode, msg)
	}
	return fmt.Sprintf("authentication error for %s (%s): %s", e.Provider, e.Method, msg)
}

// Unwrap implements errors.Unwrap
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

// NewAuthError creates a new AuthError
func NewAuthError(provider, method, message string, err error) *AuthError {
	return &AuthError{
		Provider: provider,
		Method:   method,
		Message:  message,
		Err:      err,
	}
}

// FetchError represents a non-success response or an undecodable payload
// from the source export.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Code       string // remote error code, when the payload carried one
	Message    string
	Err        error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch error from %s (status %d): %s", e.Source, e.StatusCode, msg)
	case e.Code != "":
		return fmt.Sprintf("fetch error from %s (code %s): %s", e.Source, e.Code, msg)
	default:
		return fmt.Sprintf("fetch error from %s: %s", e.Source, msg)
	}
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// NewFetchError creates a new FetchError
func NewFetchError(source string, statusCode int, message string, err error) *FetchError {
	return &FetchError{
		Source:     source,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// AccessError represents a destination that does not exist or that the
// configured credentials may not open.
type AccessError struct {
	Resource   string // "spreadsheet", "worksheet", "file"
	ID         string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *AccessError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.ID != "" {
		return fmt.Sprintf("cannot access %s %s: %s", e.Resource, e.ID, msg)
	}
	return fmt.Sprintf("cannot access %s: %s", e.Resource, msg)
}

// Unwrap implements errors.Unwrap
func (e *AccessError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AccessError) Is(target error) bool {
	if target == ErrAccess {
		return true
	}
	return e.StatusCode == http.StatusNotFound && target == ErrNotFound
}

// NewAccessError creates a new AccessError
func NewAccessError(resource, id string, err error) *AccessError {
	return &AccessError{
		Resource: resource,
		ID:       id,
		Err:      err,
	}
}

// WriteError represents a clear or write the destination rejected.
// Cleared reports whether the destination had already been cleared when the
// failure happened, leaving it empty until the next successful run.
type WriteError struct {
	Resource   string
	Operation  string // "clear", "write"
	StatusCode int
	Cleared    bool
	Message    string
	Err        error
}

// Error implements the error interface
func (e *WriteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	suffix := ""
	if e.Cleared {
		suffix = " (destination was cleared)"
	}
	return fmt.Sprintf("%s of %s rejected: %s%s", e.Operation, e.Resource, msg, suffix)
}

// Unwrap implements errors.Unwrap
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}

// NewWriteError creates a new WriteError
func NewWriteError(resource, operation string, err error) *WriteError {
	return &WriteError{
		Resource:  resource,
		Operation: operation,
		Err:       err,
	}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
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

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "xml", "csv", "yaml"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during local I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "truncate", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsConfig checks if an error is a configuration error
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsAuth checks if an error is a credential exchange failure
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsFetch checks if an error is a source fetch failure
func IsFetch(err error) bool {
	return errors.Is(err, ErrFetch)
}

// IsAccess checks if an error is a destination access failure
func IsAccess(err error) bool {
	return errors.Is(err, ErrAccess)
}

// IsWrite checks if an error is a destination write failure
func IsWrite(err error) bool {
	return errors.Is(err, ErrWrite)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Retryable reports whether err is a transient boundary failure worth a
// later retry: rate limiting, upstream 5xx, or timeouts. Configuration,
// access and validation failures are never retryable.
func Retryable(err error) bool {
	if err == nil || IsConfig(err) || IsValidationError(err) {
		return false
	}
	if IsTimeout(err) {
		return true
	}
	return retryableStatus(statusOf(err))
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// statusOf returns the HTTP status carried by the first typed error in the chain.
func statusOf(err error) int {
	var (
		authErr   *AuthError
		fetchErr  *FetchError
		accessErr *AccessError
		writeErr  *WriteError
	)
	switch {
	case errors.As(err, &fetchErr):
		return fetchErr.StatusCode
	case errors.As(err, &authErr):
		return authErr.StatusCode
	case errors.As(err, &writeErr):
		return writeErr.StatusCode
	case errors.As(err, &accessErr):
		return accessErr.StatusCode
	}
	return 0
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapConfig wraps an error as a ConfigError
func WrapConfig(component string, err error) error {
	if err == nil {
		return nil
	}
	return NewConfigError(component, err.Error(), err)
}
