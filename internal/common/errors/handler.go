// internal/common/errors/handler.go
package errors

import (
	"time"
)

// Prefixes for inline failure messages, one per action.
const (
	PrefixQuery   = "Error calling backend:"
	PrefixUpload  = "Upload error:"
	PrefixReindex = "Reindex failed:"
	PrefixKB      = "KB download failed:"
)

// ErrorHandler turns action errors into transcript text and logs them.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleActionError normalizes err, logs it and returns the message shown
// to the user in place of an answer.
func (h *ErrorHandler) HandleActionError(action, prefix string, err error) (*StandardError, string) {
	stdErr := h.normalizeError(err)
	h.logError(action, stdErr)
	return stdErr, UserMessage(prefix, stdErr)
}

// UserMessage renders stdErr the way the chat transcript shows failures.
func UserMessage(prefix string, stdErr *StandardError) string {
	switch stdErr.Code {
	case ErrCodeBackendError:
		// detail wins over the short error string
		if stdErr.Details != "" {
			return "Error: " + stdErr.Details
		}
		return "Error: " + stdErr.Message
	case ErrCodeBackendUnreachable:
		if stdErr.cause != nil {
			return prefix + " " + stdErr.cause.Error()
		}
		return prefix + " " + stdErr.Details
	case ErrCodeUploadFailed, ErrCodeReindexFailed:
		return prefix + " " + stdErr.Details
	default:
		return prefix + " " + stdErr.Error()
	}
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *ErrorHandler) logError(action string, stdErr *StandardError) {
	if h.logger == nil {
		return
	}
	h.logger.Error("Action failed", map[string]interface{}{
		"action":        action,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"metadata":      stdErr.Metadata,
	})
}
