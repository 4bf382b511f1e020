// Package errors provides standardized error handling for chat actions.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeBackendUnreachable ErrorCode = "BACKEND_UNREACHABLE"
	ErrCodeBackendError       ErrorCode = "BACKEND_ERROR"

	ErrCodeUploadFailed  ErrorCode = "UPLOAD_FAILED"
	ErrCodeReindexFailed ErrorCode = "REINDEX_FAILED"

	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeControlBusy  ErrorCode = "CONTROL_BUSY"

	ErrCodeKBIDNotFound   ErrorCode = "KB_ID_NOT_FOUND"
	ErrCodeKBRenderFailed ErrorCode = "KB_RENDER_FAILED"

	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches on code so callers can compare against a bare &StandardError{Code: ...}.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns e with k=v merged into its metadata.
func (e *StandardError) WithMetadata(k string, v interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[k] = v
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewBackendUnreachableError wraps a transport failure.
func NewBackendUnreachableError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnreachable,
		Message:   "Backend request failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"endpoint": endpoint},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewBackendError reports a logical error returned by the backend.
func NewBackendError(message, detail string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendError,
		Message:   message,
		Details:   detail,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadFailedError carries the backend body verbatim in Details.
func NewUploadFailedError(status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadFailed,
		Message:   fmt.Sprintf("upload rejected with status %d", status),
		Details:   body,
		Retryable: false,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
	}
}

func NewReindexFailedError(body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReindexFailed,
		Message:   "reindex not acknowledged",
		Details:   body,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewControlBusyError is returned when an action is already in flight.
func NewControlBusyError(control string) *StandardError {
	return &StandardError{
		Code:      ErrCodeControlBusy,
		Message:   "A request is already in progress",
		Details:   fmt.Sprintf("control: %s", control),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewKBIDNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeKBIDNotFound,
		Message:   "No KB article number found",
		Details:   fmt.Sprintf("name: %q", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewKBRenderFailedError(kbID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeKBRenderFailed,
		Message:   "Failed to render KB to PDF",
		Details:   fmt.Sprintf("kb: %s, error: %s", kbID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewSessionNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionStoreFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store error",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Helpers
// ==========================

// AsStandard extracts a StandardError from err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeBackendUnreachable:
		return "transport"
	case ErrCodeBackendError, ErrCodeUploadFailed, ErrCodeReindexFailed:
		return "backend"
	case ErrCodeInvalidInput, ErrCodeKBIDNotFound:
		return "validation"
	case ErrCodeControlBusy:
		return "concurrency"
	case ErrCodeSessionNotFound, ErrCodeSessionStoreFailed:
		return "session"
	case ErrCodeKBRenderFailed:
		return "render"
	default:
		return "internal"
	}
}

// IsRetryableErrorCode reports whether the user may simply try again.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeBackendUnreachable, ErrCodeControlBusy, ErrCodeKBRenderFailed, ErrCodeSessionStoreFailed:
		return true
	}
	return false
}
