package httpclient

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"

	"github.com/kbukum/ssebridge/httpclient/sse"
)

// ContentTypeEventStream is the media type of an SSE response.
const ContentTypeEventStream = "text/event-stream"

// Client opens Server-Sent Events streams over HTTP.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a new streaming client with the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := cfg.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.DialContext = (&net.Dialer{Timeout: cfg.Timeout}).DialContext
		t.TLSHandshakeTimeout = cfg.Timeout
		t.ResponseHeaderTimeout = cfg.Timeout
		transport = t
	}

	// No client-wide timeout: it would cut live streams. The context and the
	// transport timeouts cover connection setup.
	return &Client{
		httpClient: &http.Client{Transport: transport},
		config:     cfg,
	}, nil
}

// DoStream executes a request and returns the SSE stream.
// The caller must close the returned StreamResponse when done.
func (c *Client) DoStream(ctx context.Context, req Request) (*StreamResponse, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}

	if resp.StatusCode == http.StatusNoContent {
		_ = resp.Body.Close()
		return nil, NewNoContentError()
	}

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, ClassifyStatusCode(resp.StatusCode, body)
	}

	if !isEventStream(resp.Header.Get("Content-Type")) {
		_ = resp.Body.Close()
		return nil, NewValidationError(fmt.Sprintf("unexpected content type %q", resp.Header.Get("Content-Type")))
	}

	return &StreamResponse{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		SSE:        sse.NewReaderWithLastID(resp.Body, req.LastEventID),
		rawResp:    resp,
	}, nil
}

// buildRequest constructs an *http.Request from the client config and request.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	httpReq.Header.Set("Accept", ContentTypeEventStream)
	httpReq.Header.Set("Cache-Control", "no-cache")
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}

	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}

	if req.LastEventID != "" {
		httpReq.Header.Set("Last-Event-ID", req.LastEventID)
	}

	return httpReq, nil
}

func isEventStream(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == ContentTypeEventStream
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
