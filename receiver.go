package ssebridge

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/ssebridge/logger"
	"github.com/kbukum/ssebridge/observability"
)

// Receiver is the consuming end of an event stream. TryRecv never blocks,
// so it can be polled from a UI frame, a game loop or a select-free loop.
//
// A Receiver must be polled from one goroutine at a time. Close may be
// called from anywhere.
type Receiver struct {
	id      string
	mb      *mailbox
	log     *logger.Logger
	metrics *observability.Metrics

	mu        sync.Mutex
	stop      func()
	connected bool
	ended     bool
}

// NewReceiver creates a receiver and the handler that feeds it.
// Custom connectors use it to plug their own transport into the same
// polling model Connect provides.
func NewReceiver(opts ...Option) (*Receiver, Handler) {
	return NewReceiverWithWakeup(nil, opts...)
}

// NewReceiverWithWakeup is NewReceiver with a function invoked synchronously
// before each publish attempt. A nil wakeUp is a no-op.
func NewReceiverWithWakeup(wakeUp func(), opts ...Option) (*Receiver, Handler) {
	return newReceiver(wakeUp, newOptions(opts))
}

func newReceiver(wakeUp func(), o *options) (*Receiver, Handler) {
	if wakeUp == nil {
		wakeUp = noWakeup
	}
	id := uuid.NewString()
	r := &Receiver{
		id:      id,
		mb:      newMailbox(o.capacity, o.overflow),
		log:     o.log.WithConnection(id),
		metrics: o.metrics,
	}
	return r, r.handler(wakeUp)
}

func (r *Receiver) handler(wakeUp func()) Handler {
	return func(ev Event) ControlFlow {
		wakeUp()
		dropped, err := r.mb.send(ev)
		if err != nil {
			r.log.Debug("receiver closed, stopping delivery", logger.Fields(logger.FieldKind, ev.Kind.String()))
			return Break
		}
		ctx := context.Background()
		if dropped > 0 {
			r.log.Debug("mailbox full, event dropped", logger.Fields("policy", r.mb.policy.String()))
			r.metrics.RecordDropped(ctx, backendName, dropped)
		}
		r.metrics.RecordEvent(ctx, backendName, ev.Kind.String())
		return Continue
	}
}

// ID returns the identifier attached to this connection's log lines.
func (r *Receiver) ID() string { return r.id }

// TryRecv returns the oldest queued event, or false when none is waiting.
// It returns false forever after Close.
func (r *Receiver) TryRecv() (Event, bool) {
	return r.mb.recv()
}

// Len returns the number of queued events.
func (r *Receiver) Len() int { return r.mb.len() }

// Dropped returns how many events a bounded mailbox discarded.
func (r *Receiver) Dropped() uint64 { return r.mb.droppedCount() }

// Close disconnects the receiver and tears down its connection. Queued
// events are discarded and the producer's next publish returns Break.
// Calling Close more than once is safe.
func (r *Receiver) Close() error {
	if !r.mb.close() {
		return nil
	}

	r.mu.Lock()
	stop := r.stop
	r.stop = nil
	r.mu.Unlock()

	if stop != nil {
		stop()
	}
	r.release()
	r.log.Info("receiver closed")
	return nil
}

// release marks the connection as finished. Connectors call it when their
// stream ends on its own and Close calls it on teardown. Only the first
// call after attach lowers the active connection count.
func (r *Receiver) release() {
	r.mu.Lock()
	connected := r.connected
	r.connected, r.ended = false, true
	r.mu.Unlock()

	if connected {
		r.metrics.RecordConnectionClose(context.Background(), backendName)
	}
}

// attach hands the connection teardown to the receiver. If the receiver
// was already closed the connection is stopped right away.
func (r *Receiver) attach(stop func()) {
	r.mu.Lock()
	if r.mb.isClosed() {
		r.mu.Unlock()
		stop()
		return
	}
	r.stop = stop
	if r.ended {
		// the connection finished before dial returned
		r.mu.Unlock()
		return
	}
	r.connected = true
	r.mu.Unlock()
	r.metrics.RecordConnectionOpen(context.Background(), backendName)
}
