package dto

import (
	"time"

	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/grid"
	"venuecal/internal/domain/shared/daterange"
)

type CalendarDay struct {
	Date        string `json:"date"`
	InMonth     bool   `json:"in_month"`
	Today       bool   `json:"today"`
	Selected    bool   `json:"selected"`
	InRange     bool   `json:"in_range"`
	InPreview   bool   `json:"in_preview"`
	Blocked     bool   `json:"blocked"`
	Highlighted bool   `json:"highlighted"`
}

type CalendarMonth struct {
	VenueID   string        `json:"venue_id"`
	Month     string        `json:"month"`
	MinNights int           `json:"min_nights"`
	Weeks     int           `json:"weeks"`
	Days      []CalendarDay `json:"days"`
	Selection *Selection    `json:"selection,omitempty"`
}

type BlockedRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Booking struct {
	ID       string `json:"id"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

type VenueSettings struct {
	VenueID           string         `json:"venue_id"`
	MinNights         int            `json:"min_nights"`
	AllowPast         bool           `json:"allow_past"`
	NightlyPriceCents int64          `json:"nightly_price_cents"`
	Currency          string         `json:"currency"`
	ClosedWeekdays    []string       `json:"closed_weekdays"`
	Bookings          int            `json:"bookings"`
	Highlights        []BlockedRange `json:"highlights"`
}

type CalendarExport struct {
	VenueID string `json:"venue_id"`
	Month   string `json:"month"`
	Key     string `json:"key"`
	URL     string `json:"url"`
}

func MapCalendarMonth(cal *availability.VenueCalendar, month time.Time, cells []grid.Day) CalendarMonth {
	days := make([]CalendarDay, 0, len(cells))
	for _, c := range cells {
		days = append(days, CalendarDay{
			Date:        c.Date.Format(daterange.DateLayout),
			InMonth:     c.InMonth,
			Today:       c.Today,
			Selected:    c.Selected,
			InRange:     c.InRange,
			InPreview:   c.InPreview,
			Blocked:     c.Blocked,
			Highlighted: c.Highlighted,
		})
	}
	return CalendarMonth{
		VenueID:   string(cal.VenueID),
		Month:     month.Format(daterange.MonthLayout),
		MinNights: cal.MinNights(),
		Weeks:     grid.Weeks,
		Days:      days,
	}
}

func MapBooking(b availability.Booking) Booking {
	return Booking{
		ID:       string(b.ID),
		DateFrom: b.DateFrom.Format(daterange.DateLayout),
		DateTo:   b.DateTo.Format(daterange.DateLayout),
	}
}

func MapSettings(cal *availability.VenueCalendar) VenueSettings {
	closed := make([]string, 0, len(cal.Settings.ClosedWeekdays))
	for _, wd := range cal.Settings.ClosedWeekdays {
		closed = append(closed, availability.WeekdayName(wd))
	}
	highlights := make([]BlockedRange, 0, len(cal.Highlights))
	for _, h := range cal.Highlights {
		highlights = append(highlights, BlockedRange{
			From: h.Start.Format(daterange.DateLayout),
			To:   h.End.Format(daterange.DateLayout),
		})
	}
	return VenueSettings{
		VenueID:           string(cal.VenueID),
		MinNights:         cal.Settings.MinNights,
		AllowPast:         cal.Settings.AllowPast,
		NightlyPriceCents: cal.Settings.NightlyPrice.Amount,
		Currency:          cal.Settings.NightlyPrice.Currency,
		ClosedWeekdays:    closed,
		Bookings:          len(cal.Bookings),
		Highlights:        highlights,
	}
}

func MapBookings(bookings []availability.Booking) []Booking {
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, MapBooking(b))
	}
	return out
}
