package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resolution errors
const (
	// ErrCodeNotRegistered indicates no factory is registered at the requested key.
	ErrCodeNotRegistered ErrorCode = "NOT_REGISTERED"
	// ErrCodeTypeMismatch indicates the produced value cannot be coerced to the requested type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeInvalidKey indicates a registration or lookup key is malformed.
	ErrCodeInvalidKey ErrorCode = "INVALID_KEY"
)

// Configuration errors
const (
	// ErrCodeConfigInvalid indicates a configuration value failed validation.
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// Lifecycle errors
const (
	// ErrCodeStartFailed indicates a managed service failed to start.
	ErrCodeStartFailed ErrorCode = "LIFECYCLE_START_FAILED"
	// ErrCodeStopFailed indicates a managed service failed to stop cleanly.
	ErrCodeStopFailed ErrorCode = "LIFECYCLE_STOP_FAILED"
	// ErrCodeDependencyCycle indicates the declared dependency graph contains a cycle.
	ErrCodeDependencyCycle ErrorCode = "DEPENDENCY_CYCLE"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal fault.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeInspectUnavailable indicates the diagnostics server could not serve.
	ErrCodeInspectUnavailable ErrorCode = "INSPECT_UNAVAILABLE"
)
