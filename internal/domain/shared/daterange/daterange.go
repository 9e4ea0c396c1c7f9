package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: checkout must be after checkin")

// DateRange is a stay [CheckIn, CheckOut): CheckIn is the first occupied
// night and CheckOut the departure day, which stays free.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New truncates both ends to their local day and requires at least one night.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return DateRange{}, ErrInvalidRange
	}
	dr := DateRange{CheckIn: StartOfDay(checkIn), CheckOut: StartOfDay(checkOut)}
	if dr.Empty() {
		return DateRange{}, ErrInvalidRange
	}
	return dr, nil
}

func (dr DateRange) Nights() int {
	if n := DaysDiff(dr.CheckIn, dr.CheckOut); n > 0 {
		return n
	}
	return 0
}

// Empty reports a stay without nights, e.g. a same-day booking.
func (dr DateRange) Empty() bool {
	return !dr.CheckOut.After(dr.CheckIn)
}

// Overlaps reports whether both stays occupy a common night. Back-to-back
// stays, where one checks out the day the other checks in, do not overlap.
func (dr DateRange) Overlaps(other DateRange) bool {
	if dr.Empty() || other.Empty() {
		return false
	}
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = StartOfDay(t)
	return !t.Before(dr.CheckIn) && t.Before(dr.CheckOut)
}

// LastNight is the final occupied day of the stay (checkout minus one day).
func (dr DateRange) LastNight() time.Time {
	return AddDays(dr.CheckOut, -1)
}
