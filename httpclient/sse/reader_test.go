package sse

import (
	"io"
	"strings"
	"testing"
	"time"
)

// mockReadCloser wraps a string reader as an io.ReadCloser.
type mockReadCloser struct {
	*strings.Reader
}

func (m *mockReadCloser) Close() error { return nil }

func newMockBody(s string) io.ReadCloser {
	return &mockReadCloser{strings.NewReader(s)}
}

func TestReader_SingleEvent(t *testing.T) {
	body := newMockBody("data: hello world\n\n")
	r := NewReader(body)
	defer r.Close()

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Data != "hello world" {
		t.Errorf("got data %q, want %q", ev.Data, "hello world")
	}
}

func TestReader_MultipleEvents(t *testing.T) {
	body := newMockBody("data: first\n\ndata: second\n\n")
	r := NewReader(body)
	defer r.Close()

	ev1, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev1.Data != "first" {
		t.Errorf("first event data = %q, want %q", ev1.Data, "first")
	}

	ev2, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev2.Data != "second" {
		t.Errorf("second event data = %q, want %q", ev2.Data, "second")
	}

	_, err = r.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReader_EventWithType(t *testing.T) {
	body := newMockBody("event: message\ndata: hello\n\n")
	r := NewReader(body)
	defer r.Close()

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Event != "message" {
		t.Errorf("event type = %q, want %q", ev.Event, "message")
	}
	if ev.Data != "hello" {
		t.Errorf("data = %q, want %q", ev.Data, "hello")
	}
}

func TestReader_EventWithID(t *testing.T) {
	body := newMockBody("id: 42\ndata: hello\n\n")
	r := NewReader(body)
	defer r.Close()

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ID != "42" {
		t.Errorf("id = %q, want %q", ev.ID, "42")
	}
}

func TestReader_LastEventIDPersists(t *testing.T) {
	body := newMockBody("id: 7\ndata: a\n\ndata: b\n\nid\ndata: c\n\n")
	r := NewReader(body)
	defer r.Close()

	want := []string{"7", "7", ""}
	for i, w := range want {
		ev, err := r.Next()
		if err != nil {
			t.Fatalf("event %d: unexpected error: %v", i, err)
		}
		if ev.ID != w {
			t.Errorf("event %d: id = %q, want %q", i, ev.ID, w)
		}
	}
}

func TestReader_RetryField(t *testing.T) {
	body := newMockBody("retry: 2500\n\ndata: x\n\nretry: nope\ndata: y\n\n")
	r := NewReader(body)
	defer r.Close()

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Retry != 2500*time.Millisecond {
		t.Errorf("retry = %v, want 2.5s", ev.Retry)
	}
	ev, err = r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Retry != 2500*time.Millisecond {
		t.Errorf("invalid retry value should be ignored, got %v", ev.Retry)
	}
}

func TestReader_BlockWithoutDataIsDiscarded(t *testing.T) {
	body := newMockBody("event: lonely\n\ndata: real\n\n")
	r := NewReader(body)
	defer r.Close()

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Data != "real" || ev.Event != "" {
		t.Errorf("expected data-only event 'real', got %+v", ev)
	}
}

func TestReader_StripsBOMAndCRLF(t *testing.T) {
	body := newMockBody("\ufeffdata: bom\r\n\r\n")
	r := NewReader(body)
	defer r.Close()

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Data != "bom" {
		t.Errorf("data = %q, want %q", ev.Data, "bom")
	}
}

func TestReader_MultiLineData(t *testing.T) {
	body := newMockBody("data: line1\ndata: line2\ndata: line3\n\n")
	r := NewReader(body)
	defer r.Close()

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "line1\nline2\nline3"
	if ev.Data != want {
		t.Errorf("data = %q, want %q", ev.Data, want)
	}
}

func TestReader_SurfacesComments(t *testing.T) {
	body := newMockBody(": keep-alive\ndata: hello\n\n")
	r := NewReader(body)
	defer r.Close()

	c, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Kind != KindComment {
		t.Fatalf("expected comment frame, got kind %v", c.Kind)
	}
	if c.Comment != "keep-alive" {
		t.Errorf("comment = %q, want %q", c.Comment, "keep-alive")
	}

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Kind != KindEvent || ev.Data != "hello" {
		t.Errorf("got %+v, want data event %q", ev, "hello")
	}
}

func TestReader_CommentInsideEventBlock(t *testing.T) {
	body := newMockBody("event: update\n:ping\ndata: x\n\n")
	r := NewReader(body)
	defer r.Close()

	c, err := r.Next()
	if err != nil || c.Kind != KindComment || c.Comment != "ping" {
		t.Fatalf("expected comment 'ping', got %+v, %v", c, err)
	}
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Event != "update" || ev.Data != "x" {
		t.Errorf("expected update/x after the comment, got %+v", ev)
	}
}

func TestReader_EmptyStream(t *testing.T) {
	body := newMockBody("")
	r := NewReader(body)
	defer r.Close()

	_, err := r.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReader_DataWithoutSpace(t *testing.T) {
	body := newMockBody("data:no-space\n\n")
	r := NewReader(body)
	defer r.Close()

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Data != "no-space" {
		t.Errorf("data = %q, want %q", ev.Data, "no-space")
	}
}

func TestReader_IncompleteEventDiscarded(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"only partial", "data: trailing", nil},
		{"partial after complete", "data: complete\n\ndata: {\"price\": 12", []string{"complete"}},
		{"missing blank line", "data: one\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(newMockBody(tt.body))
			defer r.Close()

			var got []string
			for {
				ev, err := r.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				got = append(got, ev.Data)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("events = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReader_SeededLastID(t *testing.T) {
	r := NewReaderWithLastID(newMockBody("data: a\n\nid\ndata: b\n\n"), "9")
	defer r.Close()

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ID != "9" {
		t.Errorf("first id = %q, want the seeded %q", ev.ID, "9")
	}

	ev, err = r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ID != "" {
		t.Errorf("an empty id field must clear the last id, got %q", ev.ID)
	}
}

func TestParseSSELine(t *testing.T) {
	tests := []struct {
		line  string
		field string
		value string
	}{
		{"data: hello", "data", "hello"},
		{"data:hello", "data", "hello"},
		{"event: msg", "event", "msg"},
		{"id: 1", "id", "1"},
		{"retry: 3000", "retry", "3000"},
		{"fieldonly", "fieldonly", ""},
	}
	for _, tt := range tests {
		f, v := parseSSELine(tt.line)
		if f != tt.field || v != tt.value {
			t.Errorf("parseSSELine(%q) = (%q, %q), want (%q, %q)", tt.line, f, v, tt.field, tt.value)
		}
	}
}
