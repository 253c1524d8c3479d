package workspace

import (
	"sync"
)

// Hub fans file events out to subscribers. Slow subscribers lose events
// instead of blocking the watcher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan FileEvent
	nextID int
	buffer int
}

// NewHub creates a hub; buffer is the per-subscriber queue length.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 32
	}
	return &Hub{
		subs:   make(map[int]chan FileEvent),
		buffer: buffer,
	}
}

// Subscribe registers a listener. The returned cancel func closes the channel.
func (h *Hub) Subscribe() (<-chan FileEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan FileEvent, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber that has room for it.
func (h *Hub) Publish(ev FileEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close drops every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
