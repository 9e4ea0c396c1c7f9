package selection

import (
	"time"

	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/shared/daterange"
)

// EventKind enumerates the interactions the picker forwards to the machine.
type EventKind string

const (
	EventPick  EventKind = "pick"
	EventHover EventKind = "hover"
	EventClear EventKind = "clear"
)

// Event is a single user interaction with a day cell.
type Event struct {
	Kind EventKind
	Day  time.Time
}

// Rejection explains why a pick left the selection untouched. It is never
// surfaced to the user; callers may log it.
type Rejection string

const (
	RejectNone           Rejection = ""
	RejectBlockedDay     Rejection = "blocked_day"
	RejectCrossesBlocked Rejection = "crosses_blocked_day"
	RejectTooShort       Rejection = "below_min_nights"
	RejectSameDay        Rejection = "same_day"
	RejectUnknownEvent   Rejection = "unknown_event"
)

// Outcome is the result of applying one event.
type Outcome struct {
	Range     Range
	Changed   bool
	Close     bool
	Rejection Rejection
}

// Machine turns day clicks into a committed check-in/check-out range.
// It is not safe for concurrent use; a single view owns it.
type Machine struct {
	rng       Range
	hover     time.Time
	minNights int
	isBlocked availability.Predicate
}

// NewMachine starts from initial, which may be empty or a resumed selection.
func NewMachine(initial Range, minNights int, isBlocked availability.Predicate) *Machine {
	if isBlocked == nil {
		isBlocked = availability.Never
	}
	return &Machine{
		rng:       NewRange(initial.Start, initial.End),
		minNights: minNights,
		isBlocked: isBlocked,
	}
}

func (m *Machine) Range() Range { return m.rng }

func (m *Machine) State() State { return m.rng.State() }

func (m *Machine) MinNights() int { return m.minNights }

// Clone returns an independent copy sharing the predicate.
func (m *Machine) Clone() *Machine {
	c := *m
	return &c
}

// SetPolicy swaps the minimum stay and the blocked-day predicate after the
// venue's settings or bookings changed. The current range is kept as is.
func (m *Machine) SetPolicy(minNights int, isBlocked availability.Predicate) {
	if isBlocked == nil {
		isBlocked = availability.Never
	}
	m.minNights = minNights
	m.isBlocked = isBlocked
}

// Apply routes an event to its transition.
func (m *Machine) Apply(ev Event) Outcome {
	switch ev.Kind {
	case EventPick:
		return m.Pick(ev.Day)
	case EventHover:
		m.Hover(ev.Day)
		return Outcome{Range: m.rng}
	case EventClear:
		return m.Clear()
	default:
		return Outcome{Range: m.rng, Rejection: RejectUnknownEvent}
	}
}

// Pick handles a click on day.
func (m *Machine) Pick(day time.Time) Outcome {
	day = daterange.StartOfDay(day)
	start := m.rng.Start

	switch {
	case m.rng.State() != StateStartOnly:
		if m.isBlocked(day) {
			return m.reject(RejectBlockedDay)
		}
		m.rng = Range{Start: day}
		m.hover = time.Time{}
		return Outcome{Range: m.rng, Changed: true}

	case day.Before(start):
		if availability.HasBlockedBetween(day, start, m.isBlocked) {
			return m.reject(RejectCrossesBlocked)
		}
		if daterange.DaysDiff(day, start) < m.minNights {
			return m.reject(RejectTooShort)
		}
		return m.commit(Range{Start: day, End: start})

	case daterange.SameDay(day, start):
		if m.minNights > 0 {
			return m.reject(RejectSameDay)
		}
		return m.commit(Range{Start: start, End: day})

	default:
		if availability.HasBlockedBetween(start, day, m.isBlocked) {
			return m.reject(RejectCrossesBlocked)
		}
		if daterange.DaysDiff(start, day) < m.minNights {
			return m.reject(RejectTooShort)
		}
		return m.commit(Range{Start: start, End: day})
	}
}

// Hover records the day under the pointer. It only matters while a start is set.
func (m *Machine) Hover(day time.Time) {
	if day.IsZero() {
		m.hover = time.Time{}
		return
	}
	m.hover = daterange.StartOfDay(day)
}

// Preview returns the order-normalized span between the start and the hovered day.
func (m *Machine) Preview() (Range, bool) {
	if m.rng.State() != StateStartOnly || m.hover.IsZero() {
		return Range{}, false
	}
	return NewRange(m.rng.Start, m.hover), true
}

// Clear resets to the empty selection.
func (m *Machine) Clear() Outcome {
	changed := m.rng.State() != StateEmpty
	m.rng = Range{}
	m.hover = time.Time{}
	return Outcome{Range: m.rng, Changed: changed}
}

func (m *Machine) commit(r Range) Outcome {
	m.rng = r
	m.hover = time.Time{}
	return Outcome{Range: m.rng, Changed: true, Close: true}
}

func (m *Machine) reject(reason Rejection) Outcome {
	return Outcome{Range: m.rng, Rejection: reason}
}
