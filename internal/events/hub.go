package events

import (
	"sync"
	"sync/atomic"
)

const clientBuffer = 10

// Hub broadcasts encoded events to subscribers. A client whose buffer is
// full misses the event rather than stalling the others.
type Hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
	closed  bool

	seq     atomic.Uint64
	dropped atomic.Int64
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]struct{})}
}

// Subscribe registers a client. After Close it returns a closed channel.
func (h *Hub) Subscribe() chan string {
	ch := make(chan string, clientBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.clients[ch] = struct{}{}
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; !ok {
		return
	}
	delete(h.clients, ch)
	close(ch)
}

func (h *Hub) Publish(evt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
			h.dropped.Add(1)
		}
	}
}

// Emit publishes an event of typ numbered in emit order.
func (h *Hub) Emit(reqID, typ string, data any) {
	e := New(reqID, typ, data)
	e.Seq = h.seq.Add(1)
	h.Publish(e.String())
}

// Close disconnects every client. Streams see their channel close and end.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped counts deliveries skipped because a client was behind.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }
