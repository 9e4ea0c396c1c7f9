package availability

import (
	"context"
	"fmt"
	"slices"
	"time"

	"venuecal/internal/app/dto"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/app/queries"
	domain "venuecal/internal/domain/availability"
	"venuecal/internal/domain/grid"
	"venuecal/internal/domain/selection"
	"venuecal/internal/domain/shared/daterange"
)

const (
	getMonthKey    = "calendar.month"
	getSettingsKey = "calendar.settings"
	listBookingKey = "bookings.list"
)

// GetMonthQuery renders the 42-day grid of Month. An empty month means the
// current one. SessionID decorates the grid with that picker's selection.
type GetMonthQuery struct {
	VenueID   string `json:"venue_id" validate:"required"`
	Month     string `json:"month" validate:"omitempty,isomonth"`
	SessionID string `json:"session_id"`
}

func (q GetMonthQuery) Key() string { return getMonthKey }

type GetMonthHandler struct {
	Calendars support.Calendars
	Sessions  selection.Repository
	Clock     support.Clock
}

func (h *GetMonthHandler) Handle(ctx context.Context, q GetMonthQuery) (dto.CalendarMonth, error) {
	now := h.Clock.Today()
	month, err := resolveMonth(q.Month, now)
	if err != nil {
		return dto.CalendarMonth{}, err
	}
	cal, err := h.Calendars.Load(ctx, domain.VenueID(q.VenueID))
	if err != nil {
		return dto.CalendarMonth{}, err
	}
	var sess *selection.Session
	if q.SessionID != "" {
		sess, err = support.LoadSession(ctx, h.Sessions, q.SessionID, cal.VenueID)
		if err != nil {
			return dto.CalendarMonth{}, err
		}
	}
	return renderMonth(cal, sess, month, now), nil
}

// renderMonth builds the decorated grid. The blocked predicate is rebuilt
// from the calendar so the cells reflect the latest bookings.
func renderMonth(cal *domain.VenueCalendar, sess *selection.Session, month, now time.Time) dto.CalendarMonth {
	view := grid.View{
		IsBlocked:   cal.IsBlocked(now, nil),
		Highlighted: cal.IsHighlighted,
		Now:         now,
	}
	if sess != nil {
		view.Selection = sess.Machine.Range()
		view.Preview, view.HasPreview = sess.Machine.Preview()
	}
	out := dto.MapCalendarMonth(cal, month, grid.Build(month, view))
	if sess != nil {
		sel := dto.MapSelection(sess)
		out.Selection = &sel
	}
	return out
}

func resolveMonth(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return daterange.StartOfMonth(now), nil
	}
	month, err := daterange.ParseMonth(raw, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("month %q: %w", raw, support.ErrInvalidDate)
	}
	return month, nil
}

func parseDay(raw string, loc *time.Location) (time.Time, error) {
	day, err := daterange.ParseInstant(raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", raw, support.ErrInvalidDate)
	}
	return day, nil
}

// GetSettingsQuery returns the booking policy of a venue.
type GetSettingsQuery struct {
	VenueID string `json:"venue_id" validate:"required"`
}

func (q GetSettingsQuery) Key() string { return getSettingsKey }

type GetSettingsHandler struct {
	Calendars support.Calendars
}

func (h *GetSettingsHandler) Handle(ctx context.Context, q GetSettingsQuery) (dto.VenueSettings, error) {
	cal, err := h.Calendars.Load(ctx, domain.VenueID(q.VenueID))
	if err != nil {
		return dto.VenueSettings{}, err
	}
	return dto.MapSettings(cal), nil
}

// ListBookingsQuery returns the bookings that currently occupy a venue.
type ListBookingsQuery struct {
	VenueID string `json:"venue_id" validate:"required"`
}

func (q ListBookingsQuery) Key() string { return listBookingKey }

type ListBookingsHandler struct {
	Calendars support.Calendars
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) ([]dto.Booking, error) {
	cal, err := h.Calendars.Load(ctx, domain.VenueID(q.VenueID))
	if err != nil {
		return nil, err
	}
	bookings := slices.Clone(cal.Bookings)
	slices.SortStableFunc(bookings, func(a, b domain.Booking) int {
		return a.DateFrom.Compare(b.DateFrom)
	})
	return dto.MapBookings(bookings), nil
}

var _ queries.Handler[GetMonthQuery, dto.CalendarMonth] = (*GetMonthHandler)(nil)
var _ queries.Handler[GetSettingsQuery, dto.VenueSettings] = (*GetSettingsHandler)(nil)
var _ queries.Handler[ListBookingsQuery, []dto.Booking] = (*ListBookingsHandler)(nil)
