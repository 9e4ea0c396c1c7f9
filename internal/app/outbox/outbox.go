// Package outbox turns domain events into records that a relay delivers to
// the broker after the state change that raised them has been saved.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"venuecal/internal/domain/shared/events"
)

const (
	HeaderContentType   = "content-type"
	HeaderEventName     = "event-name"
	HeaderAggregateType = "aggregate-type"
)

// EventRecord is a domain event serialized for later delivery. Aggregate is
// the venue or session id and doubles as the partition key.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox accepts encoded events. Memory mode buffers them; mongo mode persists
// them for the relay worker.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("encode %s: %w", ev.EventName(), err)
	}
	newID := e.IDGenerator
	if newID == nil {
		newID = uuid.NewString
	}
	return EventRecord{
		ID:         newID(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers: map[string]string{
			HeaderContentType:   "application/json",
			HeaderEventName:     ev.EventName(),
			HeaderAggregateType: events.AggregateType(ev.EventName()),
		},
	}, nil
}

// RecordDomainEvents encodes evs and appends them to box in order. A nil box
// discards the events.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return fmt.Errorf("outbox add %s: %w", rec.Name, err)
		}
	}
	return nil
}
