package memory

import (
	"context"
	"sync"

	appoutbox "venuecal/internal/app/outbox"
)

const defaultOutboxCapacity = 1024

// Outbox keeps the most recent events in memory. Nothing delivers them; it
// backs the API when no broker is configured.
type Outbox struct {
	mu       sync.Mutex
	capacity int
	records  []appoutbox.EventRecord
}

func NewOutbox(capacity int) *Outbox {
	if capacity <= 0 {
		capacity = defaultOutboxCapacity
	}
	return &Outbox{capacity: capacity}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	if over := len(o.records) - o.capacity; over > 0 {
		o.records = append([]appoutbox.EventRecord(nil), o.records[over:]...)
	}
	return nil
}

// Reset drops the buffered events.
func (o *Outbox) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = nil
}

// Records returns the buffered events, oldest first.
func (o *Outbox) Records() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
