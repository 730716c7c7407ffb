package errors

import (
	"net/http"

	"echotrail/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Note-related errors
	ErrNoteNotFound = NewBaseError(
		http.StatusNotFound,
		"NOTE_NOT_FOUND",
		"Note not found",
		"",
	)

	ErrInvalidCoordinate = NewBaseError(
		http.StatusBadRequest,
		"INVALID_COORDINATE",
		"Coordinate is outside the valid range",
		"",
	)

	// Tracking-related errors
	ErrTrackingDisabled = NewBaseError(
		http.StatusConflict,
		"TRACKING_DISABLED",
		"Background tracking is disabled",
		"",
	)

	ErrCycleInFlight = NewBaseError(
		http.StatusConflict,
		"CYCLE_IN_FLIGHT",
		"An evaluation cycle is already running",
		"",
	)

	// Pending-record errors
	ErrNoPendingRecord = NewBaseError(
		http.StatusNotFound,
		"NO_PENDING_RECORD",
		"No pending notification record",
		"",
	)

	// Sync-related errors
	ErrNoteSyncFailed = NewBaseError(
		http.StatusBadGateway,
		"NOTE_SYNC_FAILED",
		"Failed to sync notes from the remote API",
		"",
	)

	// Notification emission errors
	ErrEmissionFailed = NewBaseError(
		http.StatusInternalServerError,
		"EMISSION_FAILED",
		"Failed to emit platform notification",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)
)

// StorageError represents a durable-storage failure, implementing the
// AppError interface. Reads treat corrupt state as empty; writes surface
// through this type so the caller can log and abort the cycle.
type StorageError struct {
	err     error
	write   bool
	details string
}

// NewStorageReadError creates a storage read error
func NewStorageReadError(err error, details string) AppError {
	return &StorageError{err: err, write: false, details: details}
}

// NewStorageWriteError creates a storage write error
func NewStorageWriteError(err error, details string) AppError {
	return &StorageError{err: err, write: true, details: details}
}

// Error implements the error interface
func (e *StorageError) Error() string {
	if e.write {
		return errors.Wrap(e.err, "storage write failed").Error()
	}

	return errors.Wrap(e.err, "storage read failed").Error()
}

// Unwrap exposes the underlying cause for errors.Is/As chains
func (e *StorageError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *StorageError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *StorageError) ErrorCode() string {
	if e.write {
		return "STORAGE_WRITE_FAILED"
	}

	return "STORAGE_READ_FAILED"
}

// Message returns the user-friendly error message
func (e *StorageError) Message() string {
	return "Local storage operation failed"
}

// Details returns detailed error information
func (e *StorageError) Details() string {
	return e.details
}
