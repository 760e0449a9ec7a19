package ssebridge

import (
	"fmt"
	"strconv"
)

// Kind identifies which of the four stream notifications an Event carries.
type Kind int

const (
	// KindOpened reports that the connection was established.
	KindOpened Kind = iota
	// KindMessage carries the data of one server-sent message.
	KindMessage
	// KindError carries a human-readable description of a failure.
	KindError
	// KindClosed reports that the stream ended and no more events follow.
	KindClosed
)

var kindNames = map[Kind]string{
	KindOpened:  "opened",
	KindMessage: "message",
	KindError:   "error",
	KindClosed:  "closed",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one notification from an event stream.
// Text is set only for KindMessage and KindError and is passed through
// exactly as received.
type Event struct {
	Kind Kind
	Text string
}

// Opened returns an event reporting an established connection.
func Opened() Event { return Event{Kind: KindOpened} }

// Message returns an event carrying message data.
func Message(text string) Event { return Event{Kind: KindMessage, Text: text} }

// ErrorEvent returns an event describing a failure.
func ErrorEvent(text string) Event { return Event{Kind: KindError, Text: text} }

// Closed returns an event reporting the end of the stream.
func Closed() Event { return Event{Kind: KindClosed} }

// String renders the event as Opened, Message("..."), Error("...") or Closed.
func (e Event) String() string {
	switch e.Kind {
	case KindOpened:
		return "Opened"
	case KindMessage:
		return "Message(" + strconv.Quote(e.Text) + ")"
	case KindError:
		return "Error(" + strconv.Quote(e.Text) + ")"
	case KindClosed:
		return "Closed"
	default:
		return e.Kind.String()
	}
}
