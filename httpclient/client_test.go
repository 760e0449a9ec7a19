package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kbukum/ssebridge/httpclient/sse"
)

func sseHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		w.WriteHeader(200)
		fmt.Fprint(w, body)
	}
}

func TestClient_DoStream_SSE(t *testing.T) {
	srv := httptest.NewServer(sseHandler("data: hello\n\n: ping\n\ndata: world\n\n"))
	defer srv.Close()

	c, err := New(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stream, err := c.DoStream(context.Background(), Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if stream.SSE == nil {
		t.Fatal("expected SSE reader")
	}
	if stream.StatusCode != 200 {
		t.Errorf("expected 200, got %d", stream.StatusCode)
	}

	ev1, err := stream.SSE.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev1.Data != "hello" {
		t.Errorf("first event data = %q, want %q", ev1.Data, "hello")
	}

	c1, err := stream.SSE.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c1.Kind != sse.KindComment {
		t.Errorf("expected comment frame, got %+v", c1)
	}

	ev2, err := stream.SSE.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev2.Data != "world" {
		t.Errorf("second event data = %q, want %q", ev2.Data, "world")
	}
}

func TestClient_DoStream_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		sseHandler("")(w, r)
	}))
	defer srv.Close()

	c, err := New(Config{
		Headers:   map[string]string{"X-Default": "d"},
		UserAgent: "ssebridge-test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stream, err := c.DoStream(context.Background(), Request{
		URL:         srv.URL,
		LastEventID: "41",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stream.Close()

	checks := map[string]string{
		"Accept":        "text/event-stream",
		"Cache-Control": "no-cache",
		"User-Agent":    "ssebridge-test",
		"X-Default":     "d",
		"Last-Event-Id": "41",
	}
	for k, want := range checks {
		if v := got.Get(k); v != want {
			t.Errorf("header %s = %q, want %q", k, v, want)
		}
	}
}

func TestClient_DoStream_ErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		code   ErrorCode
	}{
		{401, ErrCodeAuth},
		{403, ErrCodeAuth},
		{404, ErrCodeNotFound},
		{500, ErrCodeServer},
		{503, ErrCodeServer},
		{204, ErrCodeNoContent},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("HTTP_%d", tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c, err := New(Config{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_, err = c.DoStream(context.Background(), Request{URL: srv.URL})
			if err == nil {
				t.Fatal("expected error")
			}
			if !hasCode(err, tt.code) {
				t.Errorf("error classification failed for HTTP %d: %v", tt.status, err)
			}
		})
	}
}

func TestClient_DoStream_WrongContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = c.DoStream(context.Background(), Request{URL: srv.URL})
	if err == nil {
		t.Fatal("expected error for non event-stream response")
	}
	if IsRetryable(err) {
		t.Error("content type mismatch should not be retryable")
	}
}

func TestClient_DoStream_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(sseHandler(""))
	url := srv.URL
	srv.Close()

	c, err := New(Config{Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = c.DoStream(context.Background(), Request{URL: url})
	if !hasCode(err, ErrCodeConnection) {
		t.Errorf("expected connection error, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("connection errors should be retryable")
	}
}

func TestClient_DoStream_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, err := New(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.DoStream(ctx, Request{URL: srv.URL})
	if !hasCode(err, ErrCodeTimeout) {
		t.Errorf("expected timeout error for canceled context, got %v", err)
	}
}

func TestClient_DoStream_InvalidURL(t *testing.T) {
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = c.DoStream(context.Background(), Request{URL: "http://[::1"})
	if err == nil {
		t.Fatal("expected error for malformed URL")
	}
}

func TestClient_NoGlobalTimeout(t *testing.T) {
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.httpClient.Timeout != 0 {
		t.Error("stream client must not carry a global timeout")
	}
}

func TestClient_DoStream_SeedsLastEventID(t *testing.T) {
	srv := httptest.NewServer(sseHandler("data: no id here\n\n"))
	defer srv.Close()

	c, err := New(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stream, err := c.DoStream(context.Background(), Request{URL: srv.URL, LastEventID: "41"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	ev, err := stream.SSE.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ID != "41" {
		t.Errorf("expected the resent id to carry over, got %q", ev.ID)
	}
}
