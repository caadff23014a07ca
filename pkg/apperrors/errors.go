package apperrors

import (
	"errors"
	"net/http"
)

// Sentinel errors for the failure classes the service distinguishes.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrStoreNotFound      = errors.New("store not found")
	ErrFormDisabled       = errors.New("cod form is disabled")
	ErrQuotaExceeded      = errors.New("monthly order limit reached")
	ErrInvalidInput       = errors.New("invalid input")
	ErrStorage            = errors.New("storage error")
	ErrUpstreamSync       = errors.New("upstream sync failed")
	ErrInternal           = errors.New("internal server error")
	ErrTemporaryFailure   = errors.New("temporary failure")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("timeout")
)

// AppError carries an error class plus the HTTP status it maps to.
type AppError struct {
	Err        error
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given class, message and status.
func New(err error, message string, statusCode int, retryable bool) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
	}
}

// StatusCode returns the HTTP status for err, defaulting to 500 for
// anything that is not an AppError.
func StatusCode(err error) int {
	var appErr *AppError

	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	return http.StatusInternalServerError
}

// IsRetryable reports whether a failed operation is worth another attempt.
func IsRetryable(err error) bool {
	var appErr *AppError

	if errors.As(err, &appErr) {
		return appErr.Retryable
	}

	return errors.Is(err, ErrTemporaryFailure) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// NewStoreNotFoundError is returned when a shop domain has no store record.
func NewStoreNotFoundError(message string) *AppError {
	return New(ErrStoreNotFound, message, http.StatusNotFound, false)
}

// NewFormDisabledError is returned when a merchant has turned the form off.
func NewFormDisabledError(message string) *AppError {
	return New(ErrFormDisabled, message, http.StatusBadRequest, false)
}

// NewQuotaExceededError is returned when the plan's monthly limit is hit.
func NewQuotaExceededError(message string) *AppError {
	return New(ErrQuotaExceeded, message, http.StatusBadRequest, false)
}

// NewValidationError is returned for malformed or incomplete submissions.
func NewValidationError(message string) *AppError {
	return New(ErrInvalidInput, message, http.StatusBadRequest, false)
}

// NewStorageError wraps a persistence failure. Local persistence is
// load-bearing, so these always surface as a failed request.
func NewStorageError(message string) *AppError {
	return New(ErrStorage, message, http.StatusInternalServerError, true)
}

func NewNotFoundError(message string) *AppError {
	return New(ErrNotFound, message, http.StatusNotFound, false)
}

func NewInternalError(message string) *AppError {
	return New(ErrInternal, message, http.StatusInternalServerError, true)
}

func NewTemporaryError(message string) *AppError {
	return New(ErrTemporaryFailure, message, http.StatusServiceUnavailable, true)
}

func NewTimeoutError(message string) *AppError {
	return New(ErrTimeout, message, http.StatusGatewayTimeout, true)
}

// NewUpstreamSyncError wraps a failure from the commerce platform calls.
// Never mapped to a failed HTTP response; the local order stands.
func NewUpstreamSyncError(message string) *AppError {
	return New(ErrUpstreamSync, message, http.StatusBadGateway, false)
}
