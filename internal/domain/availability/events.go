package availability

import (
	"time"
)

type CalendarBlocked struct {
	VenueID   string    `json:"venue_id"`
	BookingID string    `json:"booking_id"`
	DateFrom  time.Time `json:"date_from"`
	DateTo    time.Time `json:"date_to"`
	At        time.Time `json:"at"`
}

func (e CalendarBlocked) EventName() string     { return "calendar.blocked" }
func (e CalendarBlocked) AggregateID() string   { return e.VenueID }
func (e CalendarBlocked) OccurredAt() time.Time { return e.At }

type CalendarReleased struct {
	VenueID   string    `json:"venue_id"`
	BookingID string    `json:"booking_id"`
	DateFrom  time.Time `json:"date_from"`
	DateTo    time.Time `json:"date_to"`
	At        time.Time `json:"at"`
}

func (e CalendarReleased) EventName() string     { return "calendar.released" }
func (e CalendarReleased) AggregateID() string   { return e.VenueID }
func (e CalendarReleased) OccurredAt() time.Time { return e.At }

type CalendarOverbookingPrevented struct {
	VenueID   string    `json:"venue_id"`
	BookingID string    `json:"booking_id"`
	DateFrom  time.Time `json:"date_from"`
	DateTo    time.Time `json:"date_to"`
	At        time.Time `json:"at"`
}

func (e CalendarOverbookingPrevented) EventName() string     { return "calendar.overbooking_prevented" }
func (e CalendarOverbookingPrevented) AggregateID() string   { return e.VenueID }
func (e CalendarOverbookingPrevented) OccurredAt() time.Time { return e.At }

type CalendarConfigured struct {
	VenueID           string    `json:"venue_id"`
	MinNights         int       `json:"min_nights"`
	AllowPast         bool      `json:"allow_past"`
	NightlyPriceCents int64     `json:"nightly_price_cents"`
	Currency          string    `json:"currency"`
	At                time.Time `json:"at"`
}

func (e CalendarConfigured) EventName() string     { return "calendar.configured" }
func (e CalendarConfigured) AggregateID() string   { return e.VenueID }
func (e CalendarConfigured) OccurredAt() time.Time { return e.At }

func CalendarBlockedEvent(id VenueID, b Booking, at time.Time) CalendarBlocked {
	return CalendarBlocked{VenueID: string(id), BookingID: string(b.ID), DateFrom: b.DateFrom, DateTo: b.DateTo, At: at.UTC()}
}

func CalendarReleasedEvent(id VenueID, b Booking, at time.Time) CalendarReleased {
	return CalendarReleased{VenueID: string(id), BookingID: string(b.ID), DateFrom: b.DateFrom, DateTo: b.DateTo, At: at.UTC()}
}

func CalendarOverbookingPreventedEvent(id VenueID, b Booking, at time.Time) CalendarOverbookingPrevented {
	return CalendarOverbookingPrevented{VenueID: string(id), BookingID: string(b.ID), DateFrom: b.DateFrom, DateTo: b.DateTo, At: at.UTC()}
}

func CalendarConfiguredEvent(id VenueID, s Settings, at time.Time) CalendarConfigured {
	return CalendarConfigured{
		VenueID:           string(id),
		MinNights:         s.MinNights,
		AllowPast:         s.AllowPast,
		NightlyPriceCents: s.NightlyPrice.Amount,
		Currency:          s.NightlyPrice.Currency,
		At:                at.UTC(),
	}
}
