package ssebridge

// ControlFlow tells a connector whether to keep delivering events.
type ControlFlow int

const (
	// Continue keeps the connection running.
	Continue ControlFlow = iota
	// Break asks the connector to stop and release the connection.
	Break
)

func (c ControlFlow) String() string {
	if c == Break {
		return "break"
	}
	return "continue"
}

// Handler publishes one event into a receiver's mailbox. It is what a
// connector calls for every stream notification, from whichever goroutine
// or JavaScript callback observed it. A handler returns Break once its
// receiver has been closed; connectors stop delivering at that point.
type Handler func(Event) ControlFlow

func noWakeup() {}
