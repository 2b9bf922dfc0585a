package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the unified wirekit error type.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// --- Common Error Constructors ---

// NotRegistered creates a new Error for a lookup that found no factory.
// The key is the rendered identity the caller asked for.
func NotRegistered(key string) *Error {
	return &Error{
		Code: ErrCodeNotRegistered, Message: fmt.Sprintf("no registration for %s", key),
		Details: map[string]any{"key": key},
	}
}

// TypeMismatch creates a new Error for a produced value that cannot be
// coerced to the requested type.
func TypeMismatch(key, want, got string) *Error {
	return &Error{
		Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("registration %s produced %s, want %s", key, got, want),
		Details: map[string]any{"key": key, "want": want, "got": got},
	}
}

// InvalidKey creates a new Error for a malformed registration or lookup key.
func InvalidKey(reason string) *Error {
	return &Error{
		Code: ErrCodeInvalidKey, Message: fmt.Sprintf("invalid key: %s", reason),
	}
}

// ConfigInvalid creates a new Error for a configuration that failed validation.
func ConfigInvalid(message string) *Error {
	return &Error{
		Code: ErrCodeConfigInvalid, Message: message,
	}
}

// StartFailed creates a new Error for a managed service that failed to start.
func StartFailed(service string, cause error) *Error {
	return &Error{
		Code: ErrCodeStartFailed, Message: fmt.Sprintf("service %s failed to start", service),
		Details: map[string]any{"service": service}, Cause: cause,
	}
}

// StopFailed creates a new Error for a managed service that failed to stop cleanly.
func StopFailed(service string, cause error) *Error {
	return &Error{
		Code: ErrCodeStopFailed, Message: fmt.Sprintf("service %s failed to stop", service),
		Details: map[string]any{"service": service}, Cause: cause,
	}
}

// DependencyCycle creates a new Error for a dependency graph that cannot be ordered.
func DependencyCycle(detail string) *Error {
	return &Error{
		Code: ErrCodeDependencyCycle, Message: fmt.Sprintf("dependency cycle detected: %s", detail),
	}
}

// Internal creates a new Error for an unexpected internal fault.
func Internal(cause error) *Error {
	return &Error{
		Code: ErrCodeInternal, Message: "an unexpected error occurred", Cause: cause,
	}
}

// InspectUnavailable creates a new Error for a diagnostics server that could not serve.
func InspectUnavailable(addr string, cause error) *Error {
	return &Error{
		Code: ErrCodeInspectUnavailable, Message: fmt.Sprintf("inspect server unavailable on %s", addr),
		Details: map[string]any{"addr": addr}, Cause: cause,
	}
}

// --- Inspection Helpers ---

// IsError checks if an error is a wirekit Error.
func IsError(err error) bool {
	var e *Error
	return stderrors.As(err, &e)
}

// AsError converts an error to a wirekit Error if possible.
func AsError(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	if e, ok := AsError(err); ok {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or an empty code for foreign errors.
func CodeOf(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// FromPanic converts a recovered panic value into an Error. Fatal resolution
// faults panic with *Error and pass through unchanged; any other value is
// wrapped as an internal error.
func FromPanic(v any) *Error {
	switch r := v.(type) {
	case *Error:
		return r
	case error:
		return Internal(r)
	default:
		return Internal(fmt.Errorf("%v", r))
	}
}
