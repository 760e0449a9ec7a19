// Package httpclient opens Server-Sent Events streams over HTTP.
//
// The Client negotiates a text/event-stream response and hands the body to
// an sse.Reader. HTTP failures are classified into typed errors that tell
// the caller whether reconnecting makes sense.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    Timeout: 10 * time.Second,
//	    Headers: map[string]string{"X-Client": "demo"},
//	})
//
//	stream, err := client.DoStream(ctx, httpclient.Request{URL: "https://example.com/events"})
//	defer stream.Close()
//	for {
//	    ev, err := stream.SSE.Next()
//	    ...
//	}
package httpclient
