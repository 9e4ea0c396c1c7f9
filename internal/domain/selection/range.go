package selection

import (
	"time"

	"venuecal/internal/domain/shared/daterange"
)

// State is the phase of an in-progress selection.
type State string

const (
	StateEmpty     State = "empty"
	StateStartOnly State = "start_only"
	StateCommitted State = "committed"
)

// Range is the user's selection. A zero time means the bound is unset.
// When both bounds are set Start is never after End.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange builds a selection from optional bounds, swapping an inverted pair.
// An end without a start is discarded.
func NewRange(start, end time.Time) Range {
	if start.IsZero() {
		return Range{}
	}
	start = daterange.StartOfDay(start)
	if end.IsZero() {
		return Range{Start: start}
	}
	end = daterange.StartOfDay(end)
	if end.Before(start) {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

func (r Range) HasStart() bool { return !r.Start.IsZero() }
func (r Range) HasEnd() bool   { return !r.End.IsZero() }

func (r Range) State() State {
	switch {
	case !r.HasStart():
		return StateEmpty
	case !r.HasEnd():
		return StateStartOnly
	default:
		return StateCommitted
	}
}

// Nights is the stay length of a committed range, zero otherwise.
func (r Range) Nights() int {
	if r.State() != StateCommitted {
		return 0
	}
	return daterange.DaysDiff(r.Start, r.End)
}

// Contains reports whether day lies within [Start, End] of a committed range.
func (r Range) Contains(day time.Time) bool {
	if r.State() != StateCommitted {
		return false
	}
	d := daterange.StartOfDay(day)
	return !d.Before(r.Start) && !d.After(r.End)
}

// IsEndpoint reports whether day is one of the selected bounds.
func (r Range) IsEndpoint(day time.Time) bool {
	return (r.HasStart() && daterange.SameDay(day, r.Start)) || (r.HasEnd() && daterange.SameDay(day, r.End))
}
