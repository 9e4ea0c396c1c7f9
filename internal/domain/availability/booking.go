package availability

import (
	"errors"
	"strings"
	"time"

	"venuecal/internal/domain/shared/daterange"
)

var ErrBookingIDRequired = errors.New("availability: booking id is required")

// BookingID identifies an existing booking in the upstream booking API.
type BookingID string

// Booking is an existing stay that occupies nights on a venue.
type Booking struct {
	ID       BookingID
	DateFrom time.Time
	DateTo   time.Time
}

// ParseBooking converts the ISO-8601 check-in/check-out pair of a booking
// record into local calendar days.
func ParseBooking(id, dateFrom, dateTo string, loc *time.Location) (Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Booking{}, ErrBookingIDRequired
	}
	from, err := daterange.ParseInstant(dateFrom, loc)
	if err != nil {
		return Booking{}, err
	}
	to, err := daterange.ParseInstant(dateTo, loc)
	if err != nil {
		return Booking{}, err
	}
	return Booking{ID: BookingID(id), DateFrom: from, DateTo: to}, nil
}

// Blocked returns the occupied nights [DateFrom, DateTo - 1 day]. A zero-night
// booking yields a range whose start is after its end.
func (b Booking) Blocked() BlockedRange {
	return BlockedRange{
		Start: daterange.StartOfDay(b.DateFrom),
		End:   daterange.AddDays(daterange.StartOfDay(b.DateTo), -1),
	}
}

// Stay returns the booking as a half-open stay.
func (b Booking) Stay() daterange.DateRange {
	return daterange.DateRange{CheckIn: daterange.StartOfDay(b.DateFrom), CheckOut: daterange.StartOfDay(b.DateTo)}
}

// BlockedRanges maps bookings to their occupied nights.
func BlockedRanges(bookings []Booking) []BlockedRange {
	out := make([]BlockedRange, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.Blocked())
	}
	return out
}
