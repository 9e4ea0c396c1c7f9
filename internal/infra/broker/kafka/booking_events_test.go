package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	"venuecal/internal/app/handlers/bookings"
	"venuecal/internal/app/middleware"
	"venuecal/internal/domain/availability"
)

type recordingBus struct {
	cmds []commands.Command
	err  error
}

func (b *recordingBus) Dispatch(_ context.Context, cmd commands.Command) (any, error) {
	b.cmds = append(b.cmds, cmd)
	if b.err != nil {
		return nil, b.err
	}
	switch cmd.(type) {
	case bookings.RecordBookingCommand:
		return dto.Booking{}, nil
	default:
		return dto.VenueSettings{}, nil
	}
}

func message(value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "booking.events.v1", Partition: 2, Offset: 7, Value: []byte(value)}
}

func TestBookingCreatedRecordsBooking(t *testing.T) {
	bus := &recordingBus{}
	h := &BookingEventHandler{Bus: bus}

	err := h.Handle(context.Background(), message(`{
		"specversion":"1.0","id":"evt-1","type":"booking.created.v1",
		"data":{"booking_id":"b1","listing_id":"venue-1","check_in":"2024-03-10T00:00:00.000Z","check_out":"2024-03-15T00:00:00.000Z"}
	}`))
	require.NoError(t, err)
	require.Len(t, bus.cmds, 1)
	assert.Equal(t, bookings.RecordBookingCommand{
		VenueID:   "venue-1",
		BookingID: "b1",
		DateFrom:  "2024-03-10T00:00:00.000Z",
		DateTo:    "2024-03-15T00:00:00.000Z",
		EventID:   "evt-1",
	}, bus.cmds[0])
}

func TestBookingCancelledReleasesBooking(t *testing.T) {
	bus := &recordingBus{}
	h := &BookingEventHandler{Bus: bus}

	err := h.Handle(context.Background(), message(`{"type":"booking.cancelled","data":{"id":"b1","venue_id":"venue-1"}}`))
	require.NoError(t, err)
	require.Len(t, bus.cmds, 1)
	assert.Equal(t, bookings.ReleaseBookingCommand{
		VenueID:   "venue-1",
		BookingID: "b1",
		EventID:   "booking.events.v1-2-7",
	}, bus.cmds[0], "offset identity stands in for a missing event id")
}

func TestBookingEventErrors(t *testing.T) {
	tests := []struct {
		name    string
		busErr  error
		value   string
		wantErr bool
	}{
		{name: "garbage is acknowledged", value: `not json`},
		{name: "unknown type ignored", value: `{"type":"booking.paid","data":{}}`},
		{name: "overlap is permanent", busErr: availability.ErrOverlappingBooking, value: `{"type":"booking.created","data":{}}`},
		{name: "replayed failure is permanent", busErr: middleware.ReplayedError{Message: "overlap"}, value: `{"type":"booking.created","data":{}}`},
		{name: "release of unknown booking", busErr: availability.ErrBookingNotFound, value: `{"type":"booking.cancelled","data":{}}`},
		{name: "replayed release of unknown booking", busErr: middleware.ReplayedError{Message: "gone", Kind: availability.ErrBookingNotFound}, value: `{"type":"booking.cancelled","data":{}}`},
		{name: "duplicate still running is retried", busErr: fmt.Errorf("%w: bookings.record:evt-1", middleware.ErrInProgress), value: `{"type":"booking.created","data":{}}`, wantErr: true},
		{name: "storage failure is retried", busErr: errors.New("mongo timeout"), value: `{"type":"booking.created","data":{}}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BookingEventHandler{Bus: &recordingBus{err: tt.busErr}}
			err := h.Handle(context.Background(), message(tt.value))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
