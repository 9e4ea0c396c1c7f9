package availability

import (
	"time"

	"venuecal/internal/domain/shared/daterange"
)

// BlockedRange is an inclusive span of occupied nights. For a booking the End
// is already the checkout day minus one, so the checkout day stays free.
type BlockedRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether day falls inside [Start, End] at day granularity.
func (r BlockedRange) Contains(day time.Time) bool {
	d := daterange.StartOfDay(day)
	return !d.Before(daterange.StartOfDay(r.Start)) && !d.After(daterange.StartOfDay(r.End))
}

// Predicate reports whether a calendar day cannot be picked.
type Predicate func(day time.Time) bool

// Never blocks nothing.
func Never(time.Time) bool { return false }

// BuildIsBlocked composes the blocked-day predicate from past-day policy, an
// optional caller predicate and the occupied ranges. Ranges whose start lies
// after their end are dropped. now is only used to determine "today".
func BuildIsBlocked(ranges []BlockedRange, custom Predicate, allowPast bool, now time.Time) Predicate {
	normalized := make([]BlockedRange, 0, len(ranges))
	for _, r := range ranges {
		start := daterange.StartOfDay(r.Start)
		end := daterange.StartOfDay(r.End)
		if start.After(end) {
			continue
		}
		normalized = append(normalized, BlockedRange{Start: start, End: end})
	}
	today := daterange.StartOfDay(now)

	return func(day time.Time) bool {
		d := daterange.StartOfDay(day)
		if !allowPast && daterange.Before(d, today) {
			return true
		}
		if custom != nil && custom(d) {
			return true
		}
		for _, r := range normalized {
			if !d.Before(r.Start) && !d.After(r.End) {
				return true
			}
		}
		return false
	}
}

// HasBlockedBetween walks every day after the earlier date up to and including
// the later one. The earlier day is the first night of the stay and is not checked.
func HasBlockedBetween(a, b time.Time, isBlocked Predicate) bool {
	if isBlocked == nil {
		return false
	}
	start, end := daterange.StartOfDay(a), daterange.StartOfDay(b)
	if end.Before(start) {
		start, end = end, start
	}
	days := daterange.DaysDiff(start, end)
	for i := 1; i <= days; i++ {
		if isBlocked(daterange.AddDays(start, i)) {
			return true
		}
	}
	return false
}
