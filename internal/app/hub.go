package app

import (
	"sync"

	"live-quiz-service/internal/domain"
)

// ChangeHub fans row changes out to filtered subscribers in-process.
// It implements ChangeFeed and is fed by the store (memory) or by the
// Postgres notification listener.
type ChangeHub struct {
	mu          sync.RWMutex
	subscribers map[chan domain.ChangeEvent]domain.ChangeFilter
	buffer      int
}

func NewChangeHub() *ChangeHub {
	return &ChangeHub{
		subscribers: make(map[chan domain.ChangeEvent]domain.ChangeFilter),
		buffer:      16,
	}
}

// Subscribe registers a filtered subscription.
func (h *ChangeHub) Subscribe(filter domain.ChangeFilter) (<-chan domain.ChangeEvent, func()) {
	ch := make(chan domain.ChangeEvent, h.buffer)

	h.mu.Lock()
	h.subscribers[ch] = filter
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers ev to every matching subscriber. A full subscriber loses its
// oldest pending event; views re-fetch state on each event so only the latest matters.
func (h *ChangeHub) Publish(ev domain.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, filter := range h.subscribers {
		if !filter.Match(ev) {
			continue
		}
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (h *ChangeHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// CloseAll ends every subscription. Subscribers see a closed channel and must resync.
func (h *ChangeHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
}
