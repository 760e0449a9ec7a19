//go:build js && wasm

package ssebridge

import (
	"strings"
	"syscall/js"
	"testing"

	"github.com/kbukum/ssebridge/errors"
	"github.com/kbukum/ssebridge/logger"
)

const mockEventSource = `
	this.url = url;
	this.withCredentials = !!(init && init.withCredentials);
	this.readyState = 0;
	this.closed = false;
	this.listeners = {};
	this.addEventListener = function(type, fn) {
		(this.listeners[type] = this.listeners[type] || []).push(fn);
	};
	this.removeEventListener = function(type, fn) {
		var l = this.listeners[type] || [];
		var i = l.indexOf(fn);
		if (i >= 0) { l.splice(i, 1); }
	};
	this.close = function() { this.closed = true; this.readyState = 2; };
	this.fire = function(type, ev) {
		var l = (this.listeners[type] || []).slice();
		for (var i = 0; i < l.length; i++) { l[i](ev); }
	};
	this.listenerCount = function() {
		var n = 0;
		for (var k in this.listeners) { n += this.listeners[k].length; }
		return n;
	};
	globalThis.__lastEventSource = this;
`

func setEventSource(t *testing.T, ctor js.Value) {
	t.Helper()
	prev := js.Global().Get("EventSource")
	js.Global().Set("EventSource", ctor)
	js.Global().Set("__lastEventSource", js.Undefined())
	t.Cleanup(func() { js.Global().Set("EventSource", prev) })
}

func installMockEventSource(t *testing.T) {
	setEventSource(t, js.Global().Get("Function").New("url", "init", mockEventSource))
}

func lastEventSource(t *testing.T) js.Value {
	t.Helper()
	es := js.Global().Get("__lastEventSource")
	if es.IsUndefined() {
		t.Fatal("no EventSource was constructed")
	}
	return es
}

func jsEvent(fields map[string]any) js.Value {
	return js.ValueOf(fields)
}

func TestWebConnect_ForwardsEvents(t *testing.T) {
	installMockEventSource(t)

	wakes := 0
	rx, err := ConnectWithWakeup("/events", func() { wakes++ }, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer rx.Close()

	es := lastEventSource(t)
	if es.Get("url").String() != "/events" {
		t.Errorf("expected url /events, got %s", es.Get("url").String())
	}
	if es.Call("listenerCount").Int() != 3 {
		t.Errorf("expected open, message and error listeners, got %d", es.Call("listenerCount").Int())
	}

	es.Call("fire", "open", jsEvent(map[string]any{}))
	es.Call("fire", "message", jsEvent(map[string]any{"data": "hello"}))
	es.Call("fire", "message", jsEvent(map[string]any{"data": 42}))
	es.Call("fire", "error", jsEvent(map[string]any{"message": "timeout"}))
	es.Call("fire", "error", jsEvent(map[string]any{}))

	assertEvents(t, collect(rx), []string{
		"Opened",
		`Message("hello")`,
		`Error("non-text message payload")`,
		`Error("timeout")`,
		`Error("event source error (readyState=0)")`,
	})
	if wakes != 5 {
		t.Errorf("expected 5 wake-ups, got %d", wakes)
	}
	if es.Get("closed").Bool() {
		t.Error("a recoverable error must not close the EventSource")
	}
}

func TestWebConnect_ClosedReadyStateEndsStream(t *testing.T) {
	installMockEventSource(t)

	rx, err := Connect("/events", WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer rx.Close()

	es := lastEventSource(t)
	es.Set("readyState", readyStateClosed)
	es.Call("fire", "error", jsEvent(map[string]any{}))

	assertEvents(t, collect(rx), []string{
		`Error("event source error (readyState=2)")`,
		"Closed",
	})
	if es.Call("listenerCount").Int() != 0 {
		t.Error("expected listeners to be removed once the source is closed")
	}
	if !es.Get("closed").Bool() {
		t.Error("expected EventSource.close to be called")
	}
}

func TestWebConnect_CloseTearsDown(t *testing.T) {
	installMockEventSource(t)

	rx, err := Connect("/events", WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	es := lastEventSource(t)

	_ = rx.Close()
	_ = rx.Close()

	if es.Call("listenerCount").Int() != 0 {
		t.Errorf("expected no listeners after Close, got %d", es.Call("listenerCount").Int())
	}
	if !es.Get("closed").Bool() {
		t.Error("expected EventSource.close to be called")
	}
	// nothing is registered any more, so firing is harmless
	es.Call("fire", "message", jsEvent(map[string]any{"data": "late"}))
	if _, ok := rx.TryRecv(); ok {
		t.Error("expected no events after Close")
	}
}

func TestWebConnect_WithCredentials(t *testing.T) {
	installMockEventSource(t)

	rx, err := Connect("https://api.example.com/events", WithCredentials(true), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer rx.Close()

	if !lastEventSource(t).Get("withCredentials").Bool() {
		t.Error("expected withCredentials to be passed to EventSource")
	}
}

func TestWebConnect_ConstructorThrows(t *testing.T) {
	setEventSource(t, js.Global().Get("Function").New("url", "throw new Error('blocked by policy');"))

	wakes := 0
	rx, err := ConnectWithWakeup("/events", func() { wakes++ }, WithLogger(logger.Nop()))
	if err == nil {
		_ = rx.Close()
		t.Fatal("expected synchronous error")
	}
	if rx != nil {
		t.Error("expected no receiver")
	}
	if !errors.HasCode(err, errors.ErrCodeUnsupported) {
		t.Errorf("expected UNSUPPORTED_PLATFORM, got %v", err)
	}
	if !strings.Contains(err.Error(), "blocked by policy") {
		t.Errorf("expected the thrown message in %q", err.Error())
	}
	if wakes != 0 {
		t.Errorf("expected no events to be published, got %d wake-ups", wakes)
	}
}

func TestWebConnect_MissingEventSource(t *testing.T) {
	setEventSource(t, js.Undefined())

	rx, err := Connect("/events", WithLogger(logger.Nop()))
	if err == nil {
		_ = rx.Close()
		t.Fatal("expected synchronous error")
	}
	if !errors.HasCode(err, errors.ErrCodeUnsupported) {
		t.Errorf("expected UNSUPPORTED_PLATFORM, got %v", err)
	}
}
