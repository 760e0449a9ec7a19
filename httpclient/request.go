package httpclient

import (
	"net/http"

	"github.com/kbukum/ssebridge/httpclient/sse"
)

// Request describes an outbound streaming GET. Headers come from the
// client Config.
type Request struct {
	// URL is the absolute stream URL.
	URL string
	// LastEventID is sent as the Last-Event-ID header when non-empty.
	LastEventID string
}

// StreamResponse wraps a streaming HTTP response.
type StreamResponse struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// SSE is the Server-Sent Events reader.
	SSE sse.Reader
	// rawResp holds the original response for cleanup.
	rawResp *http.Response
}

// Close releases all resources associated with the stream.
func (r *StreamResponse) Close() error {
	if r.SSE != nil {
		return r.SSE.Close()
	}
	if r.rawResp != nil && r.rawResp.Body != nil {
		return r.rawResp.Body.Close()
	}
	return nil
}
