package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuecal/internal/domain/shared/events"
)

type committed struct {
	Venue  string    `json:"venue_id"`
	Nights int       `json:"nights"`
	At     time.Time `json:"at"`
}

func (e committed) EventName() string     { return "selection.committed" }
func (e committed) AggregateID() string   { return e.Venue }
func (e committed) OccurredAt() time.Time { return e.At }

type sliceBox struct {
	records []EventRecord
	err     error
}

func (b *sliceBox) Add(_ context.Context, rec EventRecord) error {
	if b.err != nil {
		return b.err
	}
	b.records = append(b.records, rec)
	return nil
}

func TestRecordDomainEvents(t *testing.T) {
	at := time.Date(2024, 3, 9, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	box := &sliceBox{}
	enc := JSONEventEncoder{IDGenerator: func() string { return "evt-1" }}

	err := RecordDomainEvents(context.Background(), box, enc, []events.DomainEvent{committed{Venue: "v1", Nights: 3, At: at}})
	require.NoError(t, err)
	require.Len(t, box.records, 1)
	rec := box.records[0]
	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, "v1", rec.Aggregate)
	assert.Equal(t, at.UTC(), rec.OccurredAt)
	assert.Equal(t, "selection", rec.Headers[HeaderAggregateType])
	assert.JSONEq(t, `{"venue_id":"v1","nights":3,"at":"2024-03-09T10:00:00+01:00"}`, string(rec.Payload))
}

func TestRecordDomainEventsNilBoxAndFailures(t *testing.T) {
	evs := []events.DomainEvent{committed{Venue: "v1"}}
	assert.NoError(t, RecordDomainEvents(context.Background(), nil, nil, evs))

	down := errors.New("mongo down")
	err := RecordDomainEvents(context.Background(), &sliceBox{err: down}, nil, evs)
	assert.ErrorIs(t, err, down)
}
