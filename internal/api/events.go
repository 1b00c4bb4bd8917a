package api

import (
	"sync"
)

// hub fans observer log lines out to every connected event stream.
type hub struct {
	mu   sync.Mutex
	subs map[chan string]struct{}
}

func newHub(src <-chan string) *hub {
	h := &hub{subs: make(map[chan string]struct{})}
	if src != nil {
		go h.run(src)
	}
	return h
}

func (h *hub) run(src <-chan string) {
	for msg := range src {
		h.mu.Lock()
		for ch := range h.subs {
			select {
			case ch <- msg:
			default:
				// slow reader, drop
			}
		}
		h.mu.Unlock()
	}
}

func (h *hub) subscribe() chan string {
	ch := make(chan string, 32)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan string) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}
