// Package watch holds the subscriber list shared by the client stores.
package watch

import "sync"

// Hub fans values out to subscribers in subscription order.
// The zero value is ready to use.
type Hub[T any] struct {
	mu   sync.Mutex
	seq  uint64
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (h *Hub[T]) Subscribe(fn func(T)) (cancel func()) {
	h.mu.Lock()
	h.seq++
	id := h.seq
	h.subs = append(h.subs, subscriber[T]{id: id, fn: fn})
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, s := range h.subs {
			if s.id == id {
				h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish calls every subscriber with v on the caller's goroutine.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	subs := make([]subscriber[T], len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}
