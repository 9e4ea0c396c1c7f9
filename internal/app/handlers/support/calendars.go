package support

import (
	"context"
	"errors"
	"fmt"

	"venuecal/internal/app/outbox"
	"venuecal/internal/app/validation"
	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/shared/daterange"
	"venuecal/internal/domain/shared/events"
)

var (
	ErrVenueNotFound   = errors.New("app: venue not found")
	ErrSessionNotFound = errors.New("app: selection session not found")
	ErrInvalidDate     = daterange.ErrInvalidDate
)

const maxSaveAttempts = 3

// PermanentErrors are the failures that retrying the same request cannot fix.
// Replays of a remembered failure unwrap to the matching entry.
var PermanentErrors = []error{
	validation.ErrInvalid,
	ErrInvalidDate,
	ErrVenueNotFound,
	ErrSessionNotFound,
	availability.ErrBookingIDRequired,
	availability.ErrBookingNotFound,
	availability.ErrOverlappingBooking,
	availability.ErrInvalidBooking,
}

func IsPermanent(err error) bool {
	for _, target := range PermanentErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Calendars loads venue calendars, falling back to an empty calendar with the
// service defaults for venues that have never been written.
type Calendars struct {
	Repo     availability.Repository
	Defaults availability.Settings
}

func (c Calendars) Load(ctx context.Context, id availability.VenueID) (*availability.VenueCalendar, error) {
	if id == "" {
		return nil, ErrVenueNotFound
	}
	cal, err := c.Repo.Calendar(ctx, id)
	if errors.Is(err, availability.ErrCalendarNotFound) {
		return availability.NewCalendar(id, c.Defaults), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load calendar %s: %w", id, err)
	}
	return cal, nil
}

// Mutate loads the calendar, applies fn and saves the result, reloading on
// version conflicts. The calendar's events are returned even when fn fails so
// rejected writes can still be reported.
func (c Calendars) Mutate(ctx context.Context, id availability.VenueID, fn func(*availability.VenueCalendar) error) (*availability.VenueCalendar, []events.DomainEvent, error) {
	for attempt := 1; ; attempt++ {
		cal, err := c.Load(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if err := fn(cal); err != nil {
			return cal, cal.PullEvents(), err
		}
		evs := cal.PullEvents()
		err = c.Repo.Save(ctx, cal)
		if errors.Is(err, availability.ErrVersionConflict) && attempt < maxSaveAttempts {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("save calendar %s: %w", id, err)
		}
		return cal, evs, nil
	}
}

// Events hands aggregate events to the outbox.
type Events struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (e Events) Publish(ctx context.Context, evs []events.DomainEvent) error {
	if err := outbox.RecordDomainEvents(ctx, e.Outbox, e.Encoder, evs); err != nil {
		return fmt.Errorf("record events: %w", err)
	}
	return nil
}
