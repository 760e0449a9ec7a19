//go:build js && wasm

package ssebridge

import (
	"fmt"
	"sync"
	"syscall/js"

	"github.com/kbukum/ssebridge/errors"
	"github.com/kbukum/ssebridge/logger"
)

const backendName = "web"

// EventSource.readyState values.
const (
	readyStateConnecting = 0
	readyStateOpen       = 1
	readyStateClosed     = 2
)

// dial creates a browser EventSource for url and forwards its open, message
// and error notifications to publish. The listeners stay registered until
// the returned func runs or publish returns Break. done runs once the
// connection is torn down.
func dial(url string, publish Handler, o *options, log *logger.Logger, done func()) (func(), error) {
	es, err := newEventSource(url, o.withCredentials)
	if err != nil {
		return nil, err
	}

	c := &webConn{es: es, log: log, done: done}
	c.listen("open", func(js.Value) ControlFlow {
		log.Info("event source opened")
		return publish(Opened())
	})
	c.listen("message", func(ev js.Value) ControlFlow {
		data := ev.Get("data")
		if data.Type() != js.TypeString {
			appErr := errors.MalformedPayload(data.Type().String())
			log.Warn("dropping message", logger.Fields(logger.FieldError, appErr.Error()))
			return publish(ErrorEvent(appErr.Message))
		}
		return publish(Message(data.String()))
	})
	c.listen("error", func(ev js.Value) ControlFlow {
		state := c.readyState()
		desc := describeError(ev, state)
		log.Warn("event source error", logger.Fields(logger.FieldError, desc, "ready_state", state))
		if publish(ErrorEvent(desc)) == Break {
			return Break
		}
		if state != readyStateClosed {
			return Continue
		}
		// the browser gave up and will not reconnect
		publish(Closed())
		return Break
	})
	return c.close, nil
}

// newEventSource constructs the platform EventSource. A missing
// constructor and a constructor that throws are both reported as errors.
func newEventSource(url string, withCredentials bool) (es js.Value, err error) {
	ctor := js.Global().Get("EventSource")
	if ctor.Type() != js.TypeFunction {
		return js.Value{}, errors.Unsupported("EventSource", "not available in this environment")
	}

	defer func() {
		if r := recover(); r != nil {
			es = js.Value{}
			err = errors.Unsupported("EventSource", fmt.Sprint(r))
		}
	}()
	if withCredentials {
		return ctor.New(url, map[string]any{"withCredentials": true}), nil
	}
	return ctor.New(url), nil
}

// describeError prefers the message carried by the error event and falls
// back to the source's ready state.
func describeError(ev js.Value, state int) string {
	if ev.Type() == js.TypeObject {
		if msg := ev.Get("message"); msg.Type() == js.TypeString && msg.String() != "" {
			return msg.String()
		}
	}
	return fmt.Sprintf("event source error (readyState=%d)", state)
}

type listener struct {
	event string
	fn    js.Func
}

// webConn owns an EventSource and the Go callbacks registered on it.
type webConn struct {
	es        js.Value
	log       *logger.Logger
	done      func()
	listeners []listener
	once      sync.Once
}

func (c *webConn) listen(event string, handle func(js.Value) ControlFlow) {
	fn := js.FuncOf(func(_ js.Value, args []js.Value) any {
		ev := js.Undefined()
		if len(args) > 0 {
			ev = args[0]
		}
		if handle(ev) == Break {
			c.close()
		}
		return nil
	})
	c.es.Call("addEventListener", event, fn)
	c.listeners = append(c.listeners, listener{event: event, fn: fn})
}

func (c *webConn) readyState() int {
	if v := c.es.Get("readyState"); v.Type() == js.TypeNumber {
		return v.Int()
	}
	return readyStateConnecting
}

// close removes the listeners, closes the EventSource and releases the
// callbacks. Releasing a js.Func from inside its own invocation is allowed.
func (c *webConn) close() {
	c.once.Do(func() {
		for _, l := range c.listeners {
			c.es.Call("removeEventListener", l.event, l.fn)
			l.fn.Release()
		}
		c.listeners = nil
		c.es.Call("close")
		c.log.Info("event source closed")
		c.done()
	})
}
