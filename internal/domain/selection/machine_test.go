package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuecal/internal/domain/availability"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

var now = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func bookedMarch10to15() availability.Predicate {
	b := availability.Booking{ID: "b1", DateFrom: day(2024, 3, 10), DateTo: day(2024, 3, 15)}
	return availability.BuildIsBlocked(availability.BlockedRanges([]availability.Booking{b}), nil, false, now)
}

func TestStayCannotCrossBookedNights(t *testing.T) {
	m := NewMachine(Range{}, 1, bookedMarch10to15())

	out := m.Pick(day(2024, 3, 9))
	require.True(t, out.Changed)
	assert.Equal(t, StateStartOnly, m.State())

	out = m.Pick(day(2024, 3, 15))
	assert.Equal(t, RejectCrossesBlocked, out.Rejection)
	assert.False(t, out.Close)
	assert.Equal(t, StateStartOnly, m.State())
}

func TestPickAfterCheckoutDay(t *testing.T) {
	m := NewMachine(Range{}, 1, bookedMarch10to15())

	m.Pick(day(2024, 3, 15))
	out := m.Pick(day(2024, 3, 18))
	require.True(t, out.Close)
	assert.Equal(t, day(2024, 3, 15), out.Range.Start)
	assert.Equal(t, day(2024, 3, 18), out.Range.End)
	assert.Equal(t, 3, out.Range.Nights())
}

func TestPickOnBookedNightIsIgnored(t *testing.T) {
	t.Run("from empty", func(t *testing.T) {
		m := NewMachine(Range{}, 1, bookedMarch10to15())
		out := m.Pick(day(2024, 3, 12))
		assert.Equal(t, RejectBlockedDay, out.Rejection)
		assert.False(t, out.Changed)
		assert.Equal(t, StateEmpty, m.State())
	})

	t.Run("from start only", func(t *testing.T) {
		m := NewMachine(Range{}, 1, bookedMarch10to15())
		m.Pick(day(2024, 3, 5))
		out := m.Pick(day(2024, 3, 12))
		assert.Equal(t, RejectCrossesBlocked, out.Rejection)
		assert.Equal(t, Range{Start: day(2024, 3, 5)}, m.Range())
	})
}

func TestSecondPickBelowMinimumKeepsStart(t *testing.T) {
	m := NewMachine(Range{}, 2, availability.Never)

	m.Pick(day(2024, 4, 1))

	out := m.Pick(day(2024, 4, 1))
	assert.Equal(t, RejectSameDay, out.Rejection)
	assert.Equal(t, StateStartOnly, m.State())

	out = m.Pick(day(2024, 4, 2))
	assert.Equal(t, RejectTooShort, out.Rejection)
	assert.Equal(t, StateStartOnly, m.State())

	out = m.Pick(day(2024, 4, 3))
	require.True(t, out.Close)
	assert.Equal(t, 2, m.Range().Nights())
}

func TestEarlierPickAcrossBookingIsIgnored(t *testing.T) {
	m := NewMachine(Range{}, 1, bookedMarch10to15())

	m.Pick(day(2024, 3, 20))
	out := m.Pick(day(2024, 3, 8))
	assert.Equal(t, RejectCrossesBlocked, out.Rejection)
	assert.Equal(t, StateStartOnly, m.State())
	assert.Equal(t, day(2024, 3, 20), m.Range().Start)
}

func TestFlipCommitsSwappedRange(t *testing.T) {
	m := NewMachine(Range{}, 2, availability.Never)

	m.Pick(day(2024, 5, 10))

	out := m.Pick(day(2024, 5, 9))
	assert.Equal(t, RejectTooShort, out.Rejection)

	out = m.Pick(day(2024, 5, 6))
	require.True(t, out.Close)
	assert.Equal(t, Range{Start: day(2024, 5, 6), End: day(2024, 5, 10)}, m.Range())
}

func TestSameDayCommitWithoutMinimum(t *testing.T) {
	m := NewMachine(Range{}, 0, availability.Never)
	m.Pick(day(2024, 6, 1))
	out := m.Pick(day(2024, 6, 1))
	require.True(t, out.Close)
	assert.Equal(t, StateCommitted, m.State())
	assert.Equal(t, 0, m.Range().Nights())
}

func TestPickAfterCommitRestarts(t *testing.T) {
	m := NewMachine(Range{Start: day(2024, 6, 1), End: day(2024, 6, 4)}, 1, bookedMarch10to15())
	require.Equal(t, StateCommitted, m.State())

	out := m.Pick(day(2024, 3, 11))
	assert.Equal(t, RejectBlockedDay, out.Rejection)
	assert.Equal(t, StateCommitted, m.State())

	out = m.Pick(day(2024, 6, 10))
	assert.True(t, out.Changed)
	assert.False(t, out.Close)
	assert.Equal(t, Range{Start: day(2024, 6, 10)}, m.Range())
}

func TestMinNightsNeverChangesState(t *testing.T) {
	for minNights := 1; minNights <= 5; minNights++ {
		for offset := -minNights + 1; offset < minNights; offset++ {
			m := NewMachine(Range{}, minNights, availability.Never)
			m.Pick(day(2024, 7, 15))
			before := m.Range()
			out := m.Pick(day(2024, 7, 15).AddDate(0, 0, offset))
			assert.False(t, out.Changed, "min=%d offset=%d", minNights, offset)
			assert.Equal(t, before, m.Range())
		}
	}
}

func TestHoverPreview(t *testing.T) {
	m := NewMachine(Range{}, 1, availability.Never)

	m.Hover(day(2024, 3, 12))
	_, ok := m.Preview()
	assert.False(t, ok, "no preview without a start")

	m.Pick(day(2024, 3, 10))
	out := m.Apply(Event{Kind: EventHover, Day: day(2024, 3, 7)})
	assert.False(t, out.Changed)

	preview, ok := m.Preview()
	require.True(t, ok)
	assert.Equal(t, Range{Start: day(2024, 3, 7), End: day(2024, 3, 10)}, preview)
	assert.Equal(t, Range{Start: day(2024, 3, 10)}, m.Range(), "hover never touches the selection")

	m.Pick(day(2024, 3, 13))
	_, ok = m.Preview()
	assert.False(t, ok)
}

func TestClearIsIdempotent(t *testing.T) {
	m := NewMachine(Range{Start: day(2024, 6, 1), End: day(2024, 6, 4)}, 1, nil)

	first := m.Apply(Event{Kind: EventClear})
	assert.True(t, first.Changed)
	second := m.Clear()
	assert.False(t, second.Changed)
	assert.Equal(t, Range{}, m.Range())
	assert.Equal(t, StateEmpty, m.State())
}

func TestApplyUnknownEvent(t *testing.T) {
	m := NewMachine(Range{}, 1, nil)
	out := m.Apply(Event{Kind: "drag", Day: day(2024, 6, 1)})
	assert.Equal(t, RejectUnknownEvent, out.Rejection)
	assert.Equal(t, StateEmpty, m.State())
}

func TestNewRange(t *testing.T) {
	assert.Equal(t, Range{}, NewRange(time.Time{}, day(2024, 1, 2)))
	assert.Equal(t, Range{Start: day(2024, 1, 1), End: day(2024, 1, 5)}, NewRange(day(2024, 1, 5), day(2024, 1, 1)))
	assert.Equal(t, Range{Start: day(2024, 1, 1)}, NewRange(time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC), time.Time{}))
}

func TestSetPolicyAppliesToNextPick(t *testing.T) {
	m := NewMachine(Range{}, 1, availability.Never)
	m.Pick(day(2024, 6, 1))

	m.SetPolicy(3, bookedMarch10to15())
	assert.Equal(t, 3, m.MinNights())
	out := m.Pick(day(2024, 6, 2))
	assert.Equal(t, RejectTooShort, out.Rejection)
	assert.Equal(t, StateStartOnly, m.State(), "policy changes keep the current range")

	out = m.Pick(day(2024, 6, 4))
	assert.True(t, out.Close)

	m.SetPolicy(1, nil)
	assert.True(t, m.Pick(day(2024, 3, 12)).Changed, "nil predicate blocks nothing")
}
