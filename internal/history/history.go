// Package history keeps a fixed-capacity in-memory record of recent webhook
// deliveries for operator visibility. Event history is deliberately not
// persisted; the ring starts empty on every boot.
package history

import (
	"sync"
	"time"
)

// Record describes one handled delivery.
type Record struct {
	ID          string    `json:"id"`
	Source      string    `json:"source,omitempty"`
	Event       string    `json:"event,omitempty"`
	Outcome     string    `json:"outcome"`
	MessageLink string    `json:"message_link,omitempty"`
	At          time.Time `json:"at"`
}

// Ring is a concurrency-safe fixed-capacity delivery log.
type Ring struct {
	mu    sync.Mutex
	buf   []Record
	start int
	size  int
	total int64
}

// NewRing creates a Ring holding up to capacity records.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 100
	}
	return &Ring{buf: make([]Record, capacity)}
}

// Add appends a record, evicting the oldest when full.
func (r *Ring) Add(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = rec
		r.size++
		return
	}
	r.buf[r.start] = rec
	r.start = (r.start + 1) % len(r.buf)
}

// Snapshot returns the buffered records, newest first.
func (r *Ring) Snapshot() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0, r.size)
	for i := r.size - 1; i >= 0; i-- {
		out = append(out, r.buf[(r.start+i)%len(r.buf)])
	}
	return out
}

// Total returns the number of deliveries seen since boot, including evicted
// ones.
func (r *Ring) Total() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}
