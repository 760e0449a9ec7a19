// Package ssehub is a small Server-Sent Events publisher. It backs the
// demo server and the end-to-end tests of the client.
package ssehub

import (
	"sync"
	"time"

	"github.com/kbukum/ssebridge/logger"
)

// Frame is one event written to subscribers.
type Frame struct {
	ID    string
	Event string
	Data  string
	// Retry, when positive, tells clients how long to wait before reconnecting.
	Retry time.Duration
}

// client is one connected subscriber.
type client struct {
	id     string
	frames chan Frame
}

// send queues f for the client. It returns false when the client is too slow.
func (c *client) send(f Frame) bool {
	select {
	case c.frames <- f:
		return true
	default:
		return false
	}
}

// Hub fans frames out to every connected subscriber.
type Hub struct {
	clients    map[string]*client
	register   chan *client
	unregister chan *client
	broadcast  chan Frame
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	keepAlive time.Duration
	buffer    int
	log       *logger.Logger
}

// Option configures a Hub.
type Option func(*Hub)

// WithKeepAlive sets how often idle streams get a comment line.
// Zero disables keep-alives.
func WithKeepAlive(d time.Duration) Option {
	return func(h *Hub) { h.keepAlive = d }
}

// WithClientBuffer sets how many frames may queue per subscriber.
func WithClientBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithLogger sets the hub logger.
func WithLogger(l *logger.Logger) Option {
	return func(h *Hub) { h.log = l }
}

// New creates a hub. Call Run before serving requests.
func New(opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[string]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Frame, 256),
		done:       make(chan struct{}),
		keepAlive:  30 * time.Second,
		buffer:     256,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Get("ssehub")
	}
	return h
}

// Run is the hub's event loop. It blocks until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAllClients()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("subscriber registered", logger.Fields(logger.FieldConnectionID, c.id, "subscribers", n))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.frames)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("subscriber unregistered", logger.Fields(logger.FieldConnectionID, c.id, "subscribers", n))

		case f := <-h.broadcast:
			h.fanOut(f)
		}
	}
}

// Stop closes every subscriber stream and makes Run return.
// Safe to call multiple times.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Publish queues f for every subscriber connected when it is delivered.
func (h *Hub) Publish(f Frame) {
	select {
	case h.broadcast <- f:
	case <-h.done:
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) fanOut(f Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.clients {
		if !c.send(f) {
			h.log.Warn("subscriber too slow, dropping frame", logger.Fields(logger.FieldConnectionID, id))
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.frames)
		delete(h.clients, id)
	}
	h.log.Debug("all subscribers closed")
}
