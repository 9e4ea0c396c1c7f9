package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuecal/internal/domain/availability"
)

func TestSessionRecordsCommitAndClear(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession("s1", "venue-1", NewMachine(Range{}, 1, availability.Never), at)

	s.Apply(Event{Kind: EventPick, Day: day(2024, 4, 1)}, at)
	s.Apply(Event{Kind: EventHover, Day: day(2024, 4, 3)}, at)
	out := s.Apply(Event{Kind: EventPick, Day: day(2024, 4, 3)}, at)
	require.True(t, out.Close)
	s.Apply(Event{Kind: EventClear}, at)
	s.Apply(Event{Kind: EventClear}, at)

	evs := s.PullEvents()
	require.Len(t, evs, 2)
	committed, ok := evs[0].(SelectionCommitted)
	require.True(t, ok)
	assert.Equal(t, 2, committed.Nights)
	assert.Equal(t, "venue-1", committed.AggregateID())
	assert.Equal(t, "selection.cleared", evs[1].EventName())
}
