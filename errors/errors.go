package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// InvalidURL creates an AppError for a stream URL that cannot be used.
func InvalidURL(rawURL, reason string) *AppError {
	return New(ErrCodeInvalidURL, fmt.Sprintf("Invalid stream URL: %s", reason)).
		WithDetail("url", rawURL)
}

// Unsupported creates an AppError for a platform API that is unavailable or refused.
func Unsupported(api, reason string) *AppError {
	return New(ErrCodeUnsupported, fmt.Sprintf("couldn't acquire %s: %s", api, reason)).
		WithDetail("api", api)
}

// InvalidConfig creates an AppError for a configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return New(ErrCodeInvalidConfig, message)
}

// ConnectionFailed creates an AppError for a stream endpoint that could not be reached.
func ConnectionFailed(endpoint string, cause error) *AppError {
	return New(ErrCodeConnectionFailed, fmt.Sprintf("Unable to connect to %s.", endpoint)).
		WithDetail("endpoint", endpoint).
		WithCause(cause)
}

// Stream creates an AppError for a failure on a live stream.
func Stream(cause error) *AppError {
	return New(ErrCodeStream, "error streaming events").WithCause(cause)
}

// MalformedPayload creates an AppError for a message payload that is not text.
func MalformedPayload(kind string) *AppError {
	return New(ErrCodeMalformedPayload, "non-text message payload").
		WithDetail("payload_type", kind)
}

// Disconnected creates an AppError for a send on a channel without a receiver.
func Disconnected() *AppError {
	return New(ErrCodeDisconnected, "receiver is closed")
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
