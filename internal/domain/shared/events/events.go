package events

import (
	"strings"
	"time"
)

// DomainEvent is a fact raised by a venue calendar or a picker session.
// Names are dotted, "<aggregate type>.<verb>", e.g. "calendar.blocked".
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// AggregateType returns the part of an event name before the first dot. The
// outbox routes events to one topic per aggregate type.
func AggregateType(name string) string {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// EventRecorder is embedded by aggregates. Events stay pending until the
// application pulls them after a successful save.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	if event != nil {
		r.pending = append(r.pending, event)
	}
}

func (r *EventRecorder) PendingEvents() []DomainEvent {
	return append([]DomainEvent(nil), r.pending...)
}

// PullEvents returns the pending events and clears the buffer.
func (r *EventRecorder) PullEvents() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}
