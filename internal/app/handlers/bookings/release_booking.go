package bookings

import (
	"context"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/app/middleware"
	"venuecal/internal/domain/availability"
)

const releaseBookingKey = "bookings.release"

// ReleaseBookingCommand frees the nights of a cancelled booking.
type ReleaseBookingCommand struct {
	VenueID   string `json:"venue_id" validate:"required"`
	BookingID string `json:"booking_id" validate:"required"`
	EventID   string `json:"-"`
}

func (c ReleaseBookingCommand) Key() string { return releaseBookingKey }

func (c ReleaseBookingCommand) IdempotencyKey() string { return c.EventID }

func (c ReleaseBookingCommand) ResultPrototype() any { return &dto.VenueSettings{} }

type ReleaseBookingHandler struct {
	Calendars support.Calendars
	Events    support.Events
	Clock     support.Clock
}

func (h *ReleaseBookingHandler) Handle(ctx context.Context, cmd ReleaseBookingCommand) (dto.VenueSettings, error) {
	now := h.Clock.Today()
	cal, evs, err := h.Calendars.Mutate(ctx, availability.VenueID(cmd.VenueID), func(cal *availability.VenueCalendar) error {
		return cal.ReleaseBooking(availability.BookingID(cmd.BookingID), now)
	})
	if err != nil {
		return dto.VenueSettings{}, err
	}
	if err := h.Events.Publish(ctx, evs); err != nil {
		return dto.VenueSettings{}, err
	}
	return dto.MapSettings(cal), nil
}

var _ commands.Handler[ReleaseBookingCommand, dto.VenueSettings] = (*ReleaseBookingHandler)(nil)
var _ middleware.IdempotentCommand = ReleaseBookingCommand{}
