package ssebridge

import (
	"sync"

	"github.com/kbukum/ssebridge/errors"
)

// ErrDisconnected is returned when publishing to a receiver that was closed.
var ErrDisconnected = errors.Disconnected()

// OverflowPolicy decides which event is discarded when a bounded mailbox is full.
type OverflowPolicy int

const (
	// DropOldest discards the event at the head of the queue.
	DropOldest OverflowPolicy = iota
	// DropNewest discards the event being published.
	DropNewest
)

// String returns the config name of the policy.
func (p OverflowPolicy) String() string {
	if p == DropNewest {
		return "drop_newest"
	}
	return "drop_oldest"
}

// ParseOverflowPolicy maps a config value to a policy. Empty selects DropOldest.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "drop_oldest":
		return DropOldest, nil
	case "drop_newest":
		return DropNewest, nil
	default:
		return DropOldest, errors.InvalidConfig("unknown overflow policy " + s).
			WithDetail("overflow", s)
	}
}

// mailbox is a FIFO queue with one producer and one consumer. It never
// blocks either side. A capacity of zero means unbounded.
type mailbox struct {
	mu       sync.Mutex
	items    []Event
	head     int
	capacity int
	policy   OverflowPolicy
	closed   bool
	dropped  uint64
}

func newMailbox(capacity int, policy OverflowPolicy) *mailbox {
	if capacity < 0 {
		capacity = 0
	}
	return &mailbox{capacity: capacity, policy: policy}
}

// send queues ev and reports how many events the overflow policy discarded.
func (m *mailbox) send(ev Event) (dropped int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrDisconnected
	}
	if m.capacity > 0 && len(m.items)-m.head >= m.capacity {
		if m.policy == DropNewest {
			m.dropped++
			return 1, nil
		}
		m.items[m.head] = Event{}
		m.head++
		m.dropped++
		dropped = 1
		m.compact()
	}
	m.items = append(m.items, ev)
	return dropped, nil
}

// recv dequeues the oldest event without waiting.
func (m *mailbox) recv() (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.head == len(m.items) {
		return Event{}, false
	}
	ev := m.items[m.head]
	m.items[m.head] = Event{}
	m.head++
	m.compact()
	return ev, true
}

// compact reclaims the consumed prefix once it dominates the slice.
func (m *mailbox) compact() {
	switch {
	case m.head == len(m.items):
		m.items = m.items[:0]
		m.head = 0
	case m.head >= 64 && m.head*2 >= len(m.items):
		n := copy(m.items, m.items[m.head:])
		clear(m.items[n:])
		m.items = m.items[:n]
		m.head = 0
	}
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items) - m.head
}

func (m *mailbox) droppedCount() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// close marks the consumer gone and discards queued events.
// It reports whether this call performed the close.
func (m *mailbox) close() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.closed = true
	clear(m.items)
	m.items = nil
	m.head = 0
	return true
}

func (m *mailbox) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
