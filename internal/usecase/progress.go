package usecase

import (
	"sync"

	"StockCast/internal/domain/models"
)

// progressHub fans per-epoch training updates out to websocket subscribers.
// Slow subscribers drop updates instead of stalling the training loop.
type progressHub struct {
	mu     sync.Mutex
	subs   map[chan models.ProgressUpdate]struct{}
	closed bool
}

func newProgressHub() *progressHub {
	return &progressHub{subs: make(map[chan models.ProgressUpdate]struct{})}
}

// Subscribe returns an update channel and its cancel function. The channel
// is closed on cancel or hub close.
func (h *progressHub) Subscribe() (<-chan models.ProgressUpdate, func()) {
	ch := make(chan models.ProgressUpdate, 16)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers an update to every subscriber, dropping on backpressure.
func (h *progressHub) Publish(u models.ProgressUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

// Close drops and closes all subscriptions.
func (h *progressHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
