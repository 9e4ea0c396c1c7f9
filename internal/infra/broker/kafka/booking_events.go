package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	"venuecal/internal/app/handlers/bookings"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/app/middleware"
	"venuecal/internal/domain/availability"
)

const (
	bookingCreated   = "booking.created"
	bookingConfirmed = "booking.confirmed"
	bookingCancelled = "booking.cancelled"
	bookingCanceled  = "booking.canceled"
	bookingDeclined  = "booking.declined"
)

// cloudEvent is the envelope published by the booking service.
type cloudEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// bookingPayload accepts both the venue and the listing naming of the upstream
// booking API.
type bookingPayload struct {
	BookingID string `json:"booking_id"`
	ID        string `json:"id"`
	VenueID   string `json:"venue_id"`
	ListingID string `json:"listing_id"`
	DateFrom  string `json:"date_from"`
	DateTo    string `json:"date_to"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
}

func (p bookingPayload) bookingID() string { return firstNonEmpty(p.BookingID, p.ID) }
func (p bookingPayload) venueID() string   { return firstNonEmpty(p.VenueID, p.ListingID) }
func (p bookingPayload) from() string      { return firstNonEmpty(p.DateFrom, p.CheckIn) }
func (p bookingPayload) to() string        { return firstNonEmpty(p.DateTo, p.CheckOut) }

// BookingEventHandler turns booking lifecycle events into calendar commands.
// Malformed or conflicting events are logged and acknowledged; only
// infrastructure failures are returned so the message is retried.
type BookingEventHandler struct {
	Bus    commands.Bus
	Logger *slog.Logger
}

func (h *BookingEventHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.drop(ctx, msg, "", fmt.Errorf("decode envelope: %w", err))
		return nil
	}
	var data bookingPayload
	if err := json.Unmarshal(evt.Data, &data); err != nil {
		h.drop(ctx, msg, evt.ID, fmt.Errorf("decode data: %w", err))
		return nil
	}
	eventID := evt.ID
	if eventID == "" {
		eventID = fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
	}

	var err error
	switch strings.TrimSuffix(evt.Type, ".v1") {
	case bookingCreated, bookingConfirmed:
		_, err = commands.Dispatch[bookings.RecordBookingCommand, dto.Booking](ctx, h.Bus, bookings.RecordBookingCommand{
			VenueID:   data.venueID(),
			BookingID: data.bookingID(),
			DateFrom:  data.from(),
			DateTo:    data.to(),
			EventID:   eventID,
		})
	case bookingCancelled, bookingCanceled, bookingDeclined:
		_, err = commands.Dispatch[bookings.ReleaseBookingCommand, dto.VenueSettings](ctx, h.Bus, bookings.ReleaseBookingCommand{
			VenueID:   data.venueID(),
			BookingID: data.bookingID(),
			EventID:   eventID,
		})
		if errors.Is(err, availability.ErrBookingNotFound) {
			err = nil
		}
	default:
		return nil
	}
	if err != nil && permanent(err) {
		h.drop(ctx, msg, eventID, err)
		return nil
	}
	return err
}

func (h *BookingEventHandler) drop(ctx context.Context, msg *sarama.ConsumerMessage, eventID string, err error) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "booking event skipped",
		slog.String("topic", msg.Topic),
		slog.Int64("offset", msg.Offset),
		slog.String("event_id", eventID),
		slog.String("error", err.Error()))
}

// permanent reports failures a redelivery cannot fix. A replayed result from
// the idempotency store means the first attempt already failed that way.
func permanent(err error) bool {
	var replayed middleware.ReplayedError
	return support.IsPermanent(err) || errors.As(err, &replayed)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
