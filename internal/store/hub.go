package store

import (
	"sync"
	"sync/atomic"

	"github.com/mhmtszr/concurrent-swiss-map"
)

type subscriber struct {
	ch chan []Bookmark
}

// hub fans bookmark snapshots out to subscribers.
type hub struct {
	// mu serializes sends against channel close.
	mu     sync.Mutex
	subs   *csmap.CsMap[uint64, *subscriber]
	nextID atomic.Uint64
}

func newHub() *hub {
	return &hub{subs: csmap.Create[uint64, *subscriber]()}
}

func (h *hub) subscribe() (<-chan []Bookmark, func()) {
	id := h.nextID.Add(1)
	sub := &subscriber{ch: make(chan []Bookmark, 1)}
	h.subs.Store(id, sub)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs.Load(id); ok {
				h.subs.Delete(id)
				close(sub.ch)
			}
		})
	}
	return sub.ch, cancel
}

func (h *hub) count() int {
	return h.subs.Count()
}

// offer delivers a snapshot to a single subscriber channel.
func (h *hub) offer(ch <-chan []Bookmark, list []Bookmark) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs.Range(func(_ uint64, sub *subscriber) bool {
		if sub.ch == ch {
			replaceLatest(sub.ch, list)
			return true
		}
		return false
	})
}

func (h *hub) broadcast(list []Bookmark) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs.Range(func(_ uint64, sub *subscriber) bool {
		snapshot := make([]Bookmark, len(list))
		copy(snapshot, list)
		replaceLatest(sub.ch, snapshot)
		return false
	})
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ids []uint64
	h.subs.Range(func(id uint64, sub *subscriber) bool {
		ids = append(ids, id)
		close(sub.ch)
		return false
	})
	for _, id := range ids {
		h.subs.Delete(id)
	}
}

// replaceLatest sends list, discarding an unread older snapshot.
func replaceLatest(ch chan []Bookmark, list []Bookmark) {
	select {
	case ch <- list:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- list:
	default:
	}
}
