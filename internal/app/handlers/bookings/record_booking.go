package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/app/middleware"
	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/shared/daterange"
)

const recordBookingKey = "bookings.record"

// RecordBookingCommand registers an existing booking so its nights become
// unavailable. EventID deduplicates broker redeliveries and HTTP retries.
type RecordBookingCommand struct {
	VenueID   string `json:"venue_id" validate:"required"`
	BookingID string `json:"booking_id" validate:"required"`
	DateFrom  string `json:"date_from" validate:"required,isodate"`
	DateTo    string `json:"date_to" validate:"required,isodate"`
	EventID   string `json:"-"`
}

func (c RecordBookingCommand) Key() string { return recordBookingKey }

func (c RecordBookingCommand) IdempotencyKey() string { return c.EventID }

func (c RecordBookingCommand) ResultPrototype() any { return &dto.Booking{} }

type RecordBookingHandler struct {
	Calendars support.Calendars
	Events    support.Events
	Clock     support.Clock
	Logger    *slog.Logger
}

func (h *RecordBookingHandler) Handle(ctx context.Context, cmd RecordBookingCommand) (dto.Booking, error) {
	booking, err := availability.ParseBooking(cmd.BookingID, cmd.DateFrom, cmd.DateTo, h.Clock.Loc())
	if err != nil {
		if errors.Is(err, daterange.ErrInvalidDate) {
			return dto.Booking{}, fmt.Errorf("booking %s: %w", cmd.BookingID, support.ErrInvalidDate)
		}
		return dto.Booking{}, err
	}
	now := h.Clock.Today()
	_, evs, err := h.Calendars.Mutate(ctx, availability.VenueID(cmd.VenueID), func(cal *availability.VenueCalendar) error {
		return cal.AddBooking(booking, now)
	})
	if pubErr := h.Events.Publish(ctx, evs); pubErr != nil {
		return dto.Booking{}, errors.Join(err, pubErr)
	}
	if err != nil {
		if errors.Is(err, availability.ErrOverlappingBooking) {
			h.logger().WarnContext(ctx, "booking overlaps existing stay",
				slog.String("venue_id", cmd.VenueID),
				slog.String("booking_id", cmd.BookingID))
		}
		return dto.Booking{}, err
	}
	return dto.MapBooking(booking), nil
}

func (h *RecordBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[RecordBookingCommand, dto.Booking] = (*RecordBookingHandler)(nil)
var _ middleware.IdempotentCommand = RecordBookingCommand{}
