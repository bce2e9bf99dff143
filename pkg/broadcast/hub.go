// Package broadcast implements the NOODLES fan-out engine:
// single-encode, multi-deliver broadcast to every connected session plus
// targeted single-session sends, in the deterministic order sessions
// were registered.
package broadcast

import "sync"

// SessionID identifies one registered outbound destination. pkg/session
// and pkg/noodles use it directly as their session identifier; the hub
// only needs it as a map/slice key.
type SessionID string

// Outbound is the minimal interface a session exposes to the hub: a
// non-blocking enqueue onto its own FIFO outbound queue. Enqueue must
// return an error on queue overflow or send failure so the hub can tear
// the session down.
type Outbound interface {
	Enqueue(frame []byte) error
}

// Hub holds the live set of registered sessions and fans out encoded
// frames to them. It is intended to be driven exclusively by the single
// server event-loop goroutine: because Broadcast calls are never
// concurrent with each other, two mutations made within one handler
// invocation are encoded and broadcast in the same order they were
// produced, with no ordering logic needed in the hub itself.
type Hub struct {
	mu       sync.Mutex
	order    []SessionID
	sessions map[SessionID]Outbound

	// onFailure is called (outside the hub's lock) for every session that
	// failed to accept a frame, so the owner can tear it down. It may be
	// nil, in which case failures are silently dropped from the hub.
	onFailure func(id SessionID, err error)
}

// New creates an empty hub. onFailure may be nil.
func New(onFailure func(id SessionID, err error)) *Hub {
	return &Hub{
		sessions:  make(map[SessionID]Outbound),
		onFailure: onFailure,
	}
}

// Register adds a session to the fan-out set. Re-registering an existing
// ID replaces its Outbound without changing its position in the fan-out
// order.
func (h *Hub) Register(id SessionID, out Outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.sessions[id]; !exists {
		h.order = append(h.order, id)
	}
	h.sessions[id] = out
}

// Unregister removes a session from the fan-out set. It is a no-op if id
// is not registered.
func (h *Hub) Unregister(id SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.sessions[id]; !exists {
		return
	}
	delete(h.sessions, id)
	for i, candidate := range h.order {
		if candidate == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of currently registered sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}

// Broadcast enqueues frame onto every registered session's outbound
// queue, in registration order. Sessions whose Enqueue fails are
// unregistered and reported via onFailure.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.Lock()
	targets := make([]SessionID, len(h.order))
	copy(targets, h.order)
	outs := make([]Outbound, len(targets))
	for i, id := range targets {
		outs[i] = h.sessions[id]
	}
	h.mu.Unlock()

	for i, id := range targets {
		if err := outs[i].Enqueue(frame); err != nil {
			h.Unregister(id)
			if h.onFailure != nil {
				h.onFailure(id, err)
			}
		}
	}
}

// Send enqueues frame onto a single session's outbound queue, for
// targeted replies and signal invokes with a specific recipient. It
// reports ok=false if id is not currently registered.
func (h *Hub) Send(id SessionID, frame []byte) (ok bool) {
	h.mu.Lock()
	out, exists := h.sessions[id]
	h.mu.Unlock()
	if !exists {
		return false
	}

	if err := out.Enqueue(frame); err != nil {
		h.Unregister(id)
		if h.onFailure != nil {
			h.onFailure(id, err)
		}
		return false
	}
	return true
}
