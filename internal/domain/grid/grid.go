// Package grid lays out a month as a fixed six-week, Monday-first calendar.
package grid

import (
	"time"

	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/selection"
	"venuecal/internal/domain/shared/daterange"
)

const (
	// Weeks is the number of rows in every month grid.
	Weeks = 6
	// Cells is the fixed number of days in a grid.
	Cells = Weeks * 7
)

// DaysInCalendar returns the 42 days shown for month: the tail of the previous
// month up to the Monday before the first, the whole month, then the head of
// the following month.
func DaysInCalendar(month time.Time) []time.Time {
	first := daterange.StartOfMonth(month)
	offset := (int(first.Weekday()) + 6) % 7
	last := first.AddDate(0, 1, -1)

	days := make([]time.Time, 0, Cells)
	for i := offset; i > 0; i-- {
		days = append(days, daterange.AddDays(first, -i))
	}
	for d := first; !d.After(last); d = daterange.AddDays(d, 1) {
		days = append(days, d)
	}
	next := daterange.AddDays(last, 1)
	for len(days)%7 != 0 || len(days) < Cells {
		days = append(days, next)
		next = daterange.AddDays(next, 1)
	}
	return days[:Cells]
}

// Day is one rendered cell with its display flags.
type Day struct {
	Date        time.Time
	InMonth     bool
	Today       bool
	Selected    bool
	InRange     bool
	InPreview   bool
	Blocked     bool
	Highlighted bool
}

// View is everything the grid needs to decorate the cells.
type View struct {
	Selection   selection.Range
	Preview     selection.Range
	HasPreview  bool
	IsBlocked   availability.Predicate
	Highlighted availability.Predicate
	Now         time.Time
}

// Build returns the decorated cells for month.
func Build(month time.Time, v View) []Day {
	first := daterange.StartOfMonth(month)
	days := DaysInCalendar(first)
	out := make([]Day, 0, len(days))
	for _, d := range days {
		cell := Day{
			Date:     d,
			InMonth:  d.Month() == first.Month() && d.Year() == first.Year(),
			Selected: v.Selection.IsEndpoint(d),
			InRange:  v.Selection.Contains(d),
		}
		if !v.Now.IsZero() {
			cell.Today = daterange.SameDay(d, v.Now)
		}
		if v.HasPreview {
			p := v.Preview
			cell.InPreview = !d.Before(p.Start) && !d.After(p.End)
		}
		if v.IsBlocked != nil {
			cell.Blocked = v.IsBlocked(d)
		}
		if v.Highlighted != nil {
			cell.Highlighted = v.Highlighted(d)
		}
		out = append(out, cell)
	}
	return out
}
