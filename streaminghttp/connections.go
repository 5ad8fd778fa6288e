package streaminghttp

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// defaultEventBuffer is the per-observer queue depth. A consumer that falls
// further behind than this starts missing events; push delivery is
// fire-and-forget by design.
const defaultEventBuffer = 32

// observerConn is one open push-stream consumer. The events channel is owned
// by the serving goroutine; the registry only ever enqueues into it.
type observerConn struct {
	id     string
	events chan json.RawMessage
}

// ConnectionRegistry tracks the set of currently open observer connections.
// It is the only resource mutated by multiple concurrent tasks (add on
// connect, remove on disconnect, iterate-and-enqueue on broadcast), so all
// access is serialized by a mutex and broadcasts iterate over a snapshot.
type ConnectionRegistry struct {
	mu     sync.Mutex
	conns  map[string]*observerConn
	buffer int
}

// NewConnectionRegistry builds an empty registry. bufferSize bounds each
// observer's queue; non-positive values use the default.
func NewConnectionRegistry(bufferSize int) *ConnectionRegistry {
	if bufferSize <= 0 {
		bufferSize = defaultEventBuffer
	}
	return &ConnectionRegistry{
		conns:  make(map[string]*observerConn),
		buffer: bufferSize,
	}
}

// Add registers a new observer connection and returns it.
func (cr *ConnectionRegistry) Add() *observerConn {
	conn := &observerConn{
		id:     uuid.NewString(),
		events: make(chan json.RawMessage, cr.buffer),
	}
	cr.mu.Lock()
	cr.conns[conn.id] = conn
	cr.mu.Unlock()
	return conn
}

// Remove drops a connection from the broadcast set. It must run synchronously
// with stream close so a dead connection never lingers as a broadcast target.
func (cr *ConnectionRegistry) Remove(id string) {
	cr.mu.Lock()
	delete(cr.conns, id)
	cr.mu.Unlock()
}

// Count reports the number of open observer connections.
func (cr *ConnectionRegistry) Count() int {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return len(cr.conns)
}

// Broadcast enqueues event to every open observer without ever blocking on a
// consumer's drain rate. Within one connection delivery stays FIFO; an
// observer whose queue is full misses the event. Returns the number of
// observers the event was enqueued to and the number that missed it.
func (cr *ConnectionRegistry) Broadcast(event any) (delivered, dropped int, err error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, 0, err
	}

	cr.mu.Lock()
	targets := make([]*observerConn, 0, len(cr.conns))
	for _, conn := range cr.conns {
		targets = append(targets, conn)
	}
	cr.mu.Unlock()

	for _, conn := range targets {
		select {
		case conn.events <- payload:
			delivered++
		default:
			dropped++
		}
	}
	return delivered, dropped, nil
}

// send enqueues an event to a single connection, non-blocking. Used for the
// connect greeting, which targets one observer rather than the whole set.
func (cr *ConnectionRegistry) send(conn *observerConn, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	select {
	case conn.events <- payload:
		return nil
	default:
		return nil
	}
}
