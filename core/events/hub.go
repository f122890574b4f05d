// Package events is the best-effort notification channel of the sync engine.
//
// The reconcilers emit events without waiting for anybody: a Hub fans each event
// out to its subscribers through buffered channels and drops it for a subscriber
// whose buffer is full. With no subscriber attached, events are discarded.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"grid-sync/core/metrics"
)

// Event types understood by the dashboard.
const (
	TypeSystem         = "system"
	TypeGridPoll       = "sheet_poll"
	TypeGridToStoreIns = "sheet_to_db_insert"
	TypeGridToStoreUpd = "sheet_to_db_update"
	TypeGridToStoreDel = "sheet_to_db_delete"
	TypeStoreToGridUps = "db_to_sheet_upsert"
	TypeStoreToGridDel = "db_to_sheet_delete"
)

const defaultSubscriberBuf = 64

// Event is a single observability notification.
type Event struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"ts"`
}

// Sink receives events. Emit must never block.
type Sink interface {
	Emit(Event)
}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Event) {}

// Hub fans events out to subscribers.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Event
	nextID  uint64
	dropped atomic.Uint64
	now     func() time.Time
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uint64]chan Event),
		now:  time.Now,
	}
}

// Emit delivers ev to every subscriber that has room for it.
func (h *Hub) Emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = h.now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.dropped.Add(1)
			metrics.EventsDropped.Inc()
		}
	}
}

// Subscribe registers a subscriber with the given buffer size and returns its
// channel plus a cancel function that unregisters and closes it.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuf
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of attached subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were dropped so far.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
