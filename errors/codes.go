package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Setup errors. These are returned synchronously from a connect call.
const (
	// ErrCodeInvalidURL indicates the stream URL could not be parsed or uses an unsupported scheme.
	ErrCodeInvalidURL ErrorCode = "INVALID_URL"
	// ErrCodeUnsupported indicates the platform refused to provide an event source.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_PLATFORM"
	// ErrCodeInvalidConfig indicates the client configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Stream errors. These travel through the event channel as Error events.
const (
	// ErrCodeConnectionFailed indicates the stream endpoint could not be reached.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeStream indicates a failure while reading a live stream.
	ErrCodeStream ErrorCode = "STREAM_ERROR"
	// ErrCodeMalformedPayload indicates a message whose payload is not text.
	ErrCodeMalformedPayload ErrorCode = "MALFORMED_PAYLOAD"
)

// Channel errors
const (
	// ErrCodeDisconnected indicates the receiving side of a channel is gone.
	ErrCodeDisconnected ErrorCode = "DISCONNECTED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeStream:           true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
