package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"venuecal/internal/domain/shared/daterange"
	"venuecal/internal/domain/shared/events"
	"venuecal/internal/domain/shared/money"
)

var (
	ErrOverlappingBooking = errors.New("availability: booking overlaps with an existing booking")
	ErrBookingNotFound    = errors.New("availability: booking not found")
	ErrCalendarNotFound   = errors.New("availability: calendar not found")
	ErrInvalidBooking     = errors.New("availability: booking checkout must not precede checkin")
	// ErrVersionConflict is returned by repositories when the calendar changed
	// since it was loaded.
	ErrVersionConflict = errors.New("availability: calendar was modified concurrently")
)

// DefaultMinNights is used when a venue has not configured a minimum stay.
const DefaultMinNights = 1

// VenueID identifies a venue listing.
type VenueID string

// Settings carries the per-venue booking policy. ClosedWeekdays are never
// selectable, e.g. a venue that does not take arrivals or stays on Sundays.
type Settings struct {
	MinNights      int
	AllowPast      bool
	NightlyPrice   money.Money
	ClosedWeekdays []time.Weekday
}

// VenueCalendar holds the existing bookings of a venue and the ranges the UI
// should emphasise without blocking them.
type VenueCalendar struct {
	VenueID    VenueID
	Bookings   []Booking
	Highlights []BlockedRange
	Settings   Settings
	Version    int64
	events.EventRecorder
}

type Repository interface {
	Calendar(ctx context.Context, id VenueID) (*VenueCalendar, error)
	Save(ctx context.Context, calendar *VenueCalendar) error
}

func NewCalendar(id VenueID, settings Settings) *VenueCalendar {
	if settings.MinNights < 0 {
		settings.MinNights = 0
	}
	return &VenueCalendar{VenueID: id, Settings: settings}
}

// Configure replaces the booking policy. Negative minimums are clamped to zero.
func (c *VenueCalendar) Configure(settings Settings, now time.Time) {
	if settings.MinNights < 0 {
		settings.MinNights = 0
	}
	c.Settings = settings
	c.Record(CalendarConfiguredEvent(c.VenueID, settings, now))
}

// CanBook reports whether the booking's nights are free of other bookings.
// Re-adding a booking with a known id is treated as a replacement.
func (c *VenueCalendar) CanBook(b Booking) bool {
	stay := b.Stay()
	for _, existing := range c.Bookings {
		if existing.ID == b.ID {
			continue
		}
		if existing.Stay().Overlaps(stay) {
			return false
		}
	}
	return true
}

// AddBooking occupies the booking's nights. A booking with the same id
// replaces the previous version.
func (c *VenueCalendar) AddBooking(b Booking, now time.Time) error {
	if b.DateTo.Before(b.DateFrom) {
		return ErrInvalidBooking
	}
	if !c.CanBook(b) {
		c.Record(CalendarOverbookingPreventedEvent(c.VenueID, b, now))
		return ErrOverlappingBooking
	}
	c.removeBooking(b.ID)
	c.Bookings = append(c.Bookings, b)
	sort.SliceStable(c.Bookings, func(i, j int) bool {
		return c.Bookings[i].DateFrom.Before(c.Bookings[j].DateFrom)
	})
	c.Record(CalendarBlockedEvent(c.VenueID, b, now))
	return nil
}

// ReleaseBooking frees the nights of a cancelled booking.
func (c *VenueCalendar) ReleaseBooking(id BookingID, now time.Time) error {
	removed, ok := c.removeBooking(id)
	if !ok {
		return ErrBookingNotFound
	}
	c.Record(CalendarReleasedEvent(c.VenueID, removed, now))
	return nil
}

// AddHighlight marks a range for visual emphasis only.
func (c *VenueCalendar) AddHighlight(r BlockedRange) {
	c.Highlights = append(c.Highlights, BlockedRange{
		Start: daterange.StartOfDay(r.Start),
		End:   daterange.StartOfDay(r.End),
	})
}

// BlockedRanges returns the occupied nights of every booking.
func (c *VenueCalendar) BlockedRanges() []BlockedRange {
	return BlockedRanges(c.Bookings)
}

// IsBlocked builds the blocked-day predicate for the current bookings. Closed
// weekdays are folded into the caller's custom predicate.
func (c *VenueCalendar) IsBlocked(now time.Time, custom Predicate) Predicate {
	closed := append([]time.Weekday(nil), c.Settings.ClosedWeekdays...)
	if len(closed) > 0 {
		inner := custom
		custom = func(day time.Time) bool {
			for _, wd := range closed {
				if day.Weekday() == wd {
					return true
				}
			}
			return inner != nil && inner(day)
		}
	}
	return BuildIsBlocked(c.BlockedRanges(), custom, c.Settings.AllowPast, now)
}

// IsHighlighted reports whether day lies in any highlight range.
func (c *VenueCalendar) IsHighlighted(day time.Time) bool {
	for _, r := range c.Highlights {
		if r.Contains(day) {
			return true
		}
	}
	return false
}

// MinNights returns the configured minimum stay.
func (c *VenueCalendar) MinNights() int {
	return c.Settings.MinNights
}

func (c *VenueCalendar) removeBooking(id BookingID) (Booking, bool) {
	for i, b := range c.Bookings {
		if b.ID == id {
			c.Bookings = append(c.Bookings[:i], c.Bookings[i+1:]...)
			return b, true
		}
	}
	return Booking{}, false
}
