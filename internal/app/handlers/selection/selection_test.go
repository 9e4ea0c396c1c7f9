package selection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuecal/internal/app/handlers/support"
	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/shared/money"
	"venuecal/internal/infra/storage/memory"
)

type fixture struct {
	calendars support.Calendars
	sessions  *memory.SessionRepository
	outbox    *memory.Outbox
	open      *OpenSessionHandler
	apply     *ApplyEventHandler
	get       *GetSessionHandler
	close     *CloseSessionHandler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	clock := support.Clock{
		Now:      func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) },
		Location: time.UTC,
	}
	repo := memory.NewCalendarRepository()
	cal := availability.NewCalendar("venue-1", availability.Settings{MinNights: 1, NightlyPrice: money.Must(10000, "USD")})
	require.NoError(t, cal.AddBooking(availability.Booking{
		ID:       "b1",
		DateFrom: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}, clock.Today()))
	require.NoError(t, repo.Save(context.Background(), cal))

	f := fixture{
		calendars: support.Calendars{Repo: repo, Defaults: availability.Settings{MinNights: 1}},
		sessions:  memory.NewSessionRepository(),
		outbox:    memory.NewOutbox(0),
	}
	events := support.Events{Outbox: f.outbox}
	f.open = &OpenSessionHandler{Calendars: f.calendars, Sessions: f.sessions, Clock: clock, IDGenerator: func() string { return "sess-1" }}
	f.apply = &ApplyEventHandler{Calendars: f.calendars, Sessions: f.sessions, Events: events, Clock: clock}
	f.get = &GetSessionHandler{Sessions: f.sessions}
	f.close = &CloseSessionHandler{Sessions: f.sessions}
	return f
}

func TestPickStayAfterCheckoutDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	opened, err := f.open.Handle(ctx, OpenSessionCommand{VenueID: "venue-1"})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", opened.SessionID)
	assert.Equal(t, "empty", opened.State)

	view, err := f.apply.Handle(ctx, ApplyEventCommand{SessionID: "sess-1", Kind: "pick", Day: "2024-03-15"})
	require.NoError(t, err)
	assert.True(t, view.Changed)
	assert.False(t, view.Close)
	assert.Equal(t, "2024-03-15", view.Start)

	view, err = f.apply.Handle(ctx, ApplyEventCommand{SessionID: "sess-1", Kind: "pick", Day: "2024-03-18T12:00:00Z"})
	require.NoError(t, err)
	assert.True(t, view.Close)
	assert.Equal(t, "2024-03-18", view.End)
	assert.Equal(t, 3, view.Nights)

	records := f.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "selection.committed", records[0].Name)
	assert.Equal(t, "venue-1", records[0].Aggregate)
}

func TestPickAcrossBookingIsIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.open.Handle(ctx, OpenSessionCommand{VenueID: "venue-1"})
	require.NoError(t, err)

	_, err = f.apply.Handle(ctx, ApplyEventCommand{SessionID: "sess-1", Kind: "pick", Day: "2024-03-09"})
	require.NoError(t, err)
	view, err := f.apply.Handle(ctx, ApplyEventCommand{SessionID: "sess-1", Kind: "pick", Day: "2024-03-15"})
	require.NoError(t, err)

	assert.False(t, view.Changed)
	assert.False(t, view.Close)
	assert.Equal(t, "start_only", view.State)
	assert.Equal(t, "2024-03-09", view.Start)
	assert.Empty(t, f.outbox.Records())
}

func TestHoverAndClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.open.Handle(ctx, OpenSessionCommand{VenueID: "venue-1"})
	require.NoError(t, err)

	_, err = f.apply.Handle(ctx, ApplyEventCommand{SessionID: "sess-1", Kind: "pick", Day: "2024-03-20"})
	require.NoError(t, err)
	view, err := f.apply.Handle(ctx, ApplyEventCommand{SessionID: "sess-1", Kind: "hover", Day: "2024-03-17"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-17", view.PreviewStart)
	assert.Equal(t, "2024-03-20", view.PreviewEnd)

	view, err = f.apply.Handle(ctx, ApplyEventCommand{SessionID: "sess-1", Kind: "clear"})
	require.NoError(t, err)
	assert.Equal(t, "empty", view.State)
	assert.Empty(t, view.PreviewStart)

	got, err := f.get.Handle(ctx, GetSessionQuery{SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Equal(t, "empty", got.State)

	records := f.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "selection.cleared", records[0].Name)
}

func TestNewBookingIsSeenByOpenSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.open.Handle(ctx, OpenSessionCommand{VenueID: "venue-1"})
	require.NoError(t, err)

	_, _, err = f.calendars.Mutate(ctx, "venue-1", func(cal *availability.VenueCalendar) error {
		return cal.AddBooking(availability.Booking{
			ID:       "b2",
			DateFrom: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			DateTo:   time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC),
		}, time.Now())
	})
	require.NoError(t, err)

	view, err := f.apply.Handle(ctx, ApplyEventCommand{SessionID: "sess-1", Kind: "pick", Day: "2024-03-21"})
	require.NoError(t, err)
	assert.False(t, view.Changed)
	assert.Equal(t, "empty", view.State)
}

func TestReconfiguredMinimumReachesOpenSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	opened, err := f.open.Handle(ctx, OpenSessionCommand{VenueID: "venue-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, opened.MinNights)

	_, _, err = f.calendars.Mutate(ctx, "venue-1", func(cal *availability.VenueCalendar) error {
		settings := cal.Settings
		settings.MinNights = 3
		cal.Configure(settings, time.Now())
		return nil
	})
	require.NoError(t, err)

	_, err = f.apply.Handle(ctx, ApplyEventCommand{SessionID: "sess-1", Kind: "pick", Day: "2024-03-20"})
	require.NoError(t, err)
	view, err := f.apply.Handle(ctx, ApplyEventCommand{SessionID: "sess-1", Kind: "pick", Day: "2024-03-21"})
	require.NoError(t, err)
	assert.False(t, view.Changed)
	assert.False(t, view.Close)
	assert.Equal(t, "start_only", view.State)
	assert.Equal(t, 3, view.MinNights)

	view, err = f.apply.Handle(ctx, ApplyEventCommand{SessionID: "sess-1", Kind: "pick", Day: "2024-03-23"})
	require.NoError(t, err)
	assert.True(t, view.Close)
	assert.Equal(t, 3, view.Nights)
}

func TestOpenResumesRange(t *testing.T) {
	f := newFixture(t)
	view, err := f.open.Handle(context.Background(), OpenSessionCommand{VenueID: "venue-1", Start: "2024-04-05", End: "2024-04-02"})
	require.NoError(t, err)
	assert.Equal(t, "committed", view.State)
	assert.Equal(t, "2024-04-02", view.Start)
	assert.Equal(t, "2024-04-05", view.End)

	_, err = f.open.Handle(context.Background(), OpenSessionCommand{VenueID: "venue-1", End: "2024-04-02"})
	assert.ErrorIs(t, err, support.ErrInvalidDate)
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.apply.Handle(ctx, ApplyEventCommand{SessionID: "missing", Kind: "pick", Day: "2024-03-20"})
	assert.ErrorIs(t, err, support.ErrSessionNotFound)

	_, err = f.get.Handle(ctx, GetSessionQuery{SessionID: "missing"})
	assert.ErrorIs(t, err, support.ErrSessionNotFound)

	_, err = f.close.Handle(ctx, CloseSessionCommand{SessionID: "missing"})
	assert.ErrorIs(t, err, support.ErrSessionNotFound)
}

func TestCloseDiscardsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.open.Handle(ctx, OpenSessionCommand{VenueID: "venue-1"})
	require.NoError(t, err)
	require.Equal(t, 1, f.sessions.Len())

	_, err = f.close.Handle(ctx, CloseSessionCommand{SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestPickRequiresDay(t *testing.T) {
	f := newFixture(t)
	_, err := f.open.Handle(context.Background(), OpenSessionCommand{VenueID: "venue-1"})
	require.NoError(t, err)

	_, err = f.apply.Handle(context.Background(), ApplyEventCommand{SessionID: "sess-1", Kind: "pick"})
	assert.ErrorIs(t, err, support.ErrInvalidDate)
}
