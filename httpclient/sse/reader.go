// Package sse provides a reusable Server-Sent Events reader.
package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// maxLineSize bounds a single SSE line.
const maxLineSize = 1 << 20

// Kind distinguishes dispatched events from comment lines.
type Kind int

const (
	// KindEvent is a dispatched event carrying data.
	KindEvent Kind = iota
	// KindComment is a ":"-prefixed comment line, often used as keep-alive.
	KindComment
)

// Event represents a single frame read from the stream.
type Event struct {
	// Kind tells whether this is an event or a comment.
	Kind Kind
	// Event is the SSE event type (from "event:" line). Empty for data-only events.
	Event string
	// Data is the event payload (from "data:" line(s)). Multi-line data is joined with newlines.
	Data string
	// ID is the last event ID seen on the stream (from "id:" line).
	ID string
	// Retry is the latest reconnection delay requested by the server, zero if none.
	Retry time.Duration
	// Comment is the comment text for KindComment frames.
	Comment string
}

// Reader reads server-sent events from a stream.
type Reader interface {
	// Next returns the next frame. Returns io.EOF when the stream ends.
	Next() (*Event, error)
	// Close releases the underlying resources.
	Close() error
}

type reader struct {
	scanner *bufio.Scanner
	body    io.ReadCloser

	// state of the event being assembled
	pending Event
	hasData bool
	lastID  string
	retry   time.Duration
	first   bool
}

// NewReader creates an SSE reader from a readable stream.
func NewReader(body io.ReadCloser) Reader {
	return NewReaderWithLastID(body, "")
}

// NewReaderWithLastID creates an SSE reader whose last event ID starts at
// lastID, so a reconnected stream keeps the ID until the server changes or
// clears it.
func NewReaderWithLastID(body io.ReadCloser, lastID string) Reader {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &reader{
		scanner: sc,
		body:    body,
		lastID:  lastID,
		first:   true,
	}
}

// Next returns the next frame. Returns io.EOF when the stream ends.
func (r *reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if r.first {
			line = strings.TrimPrefix(line, "\ufeff")
			r.first = false
		}

		// Blank line signals end of event
		if line == "" {
			if ev, ok := r.dispatch(); ok {
				return ev, nil
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			comment := strings.TrimPrefix(line[1:], " ")
			return &Event{Kind: KindComment, Comment: comment, ID: r.lastID, Retry: r.retry}, nil
		}

		field, value := parseSSELine(line)
		switch field {
		case "data":
			if r.hasData {
				r.pending.Data += "\n" + value
			} else {
				r.pending.Data = value
				r.hasData = true
			}
		case "event":
			r.pending.Event = value
		case "id":
			if !strings.ContainsRune(value, 0) {
				r.lastID = value
			}
		case "retry":
			if ms, err := strconv.ParseUint(value, 10, 32); err == nil {
				r.retry = time.Duration(ms) * time.Millisecond
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// An event without its terminating blank line is incomplete.
	r.pending = Event{}
	r.hasData = false
	return nil, io.EOF
}

// dispatch returns the assembled event and resets the buffer.
// Blocks without data are discarded.
func (r *reader) dispatch() (*Event, bool) {
	ev := r.pending
	ok := r.hasData
	r.pending = Event{}
	r.hasData = false
	if !ok {
		return nil, false
	}
	ev.Kind = KindEvent
	ev.ID = r.lastID
	ev.Retry = r.retry
	return &ev, true
}

// Close releases the underlying stream.
func (r *reader) Close() error {
	return r.body.Close()
}

// parseSSELine parses a single SSE line into field and value.
func parseSSELine(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = line[idx+1:]
	// A single leading space after the colon is not part of the value.
	if value != "" && value[0] == ' ' {
		value = value[1:]
	}
	return field, value
}
