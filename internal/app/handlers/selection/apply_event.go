package selection

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/app/queries"
	domain "venuecal/internal/domain/selection"
	"venuecal/internal/domain/shared/daterange"
	"venuecal/internal/domain/shared/events"
)

const (
	applyEventKey = "selection.apply"
	getSessionKey = "selection.get"
)

// ApplyEventCommand forwards one picker interaction. Day is required for
// picks; an empty hover day clears the preview.
type ApplyEventCommand struct {
	SessionID string `json:"session_id" validate:"required"`
	Kind      string `json:"kind" validate:"required,selectionevent"`
	Day       string `json:"day" validate:"omitempty,isodate"`
}

func (c ApplyEventCommand) Key() string { return applyEventKey }

type ApplyEventHandler struct {
	Calendars support.Calendars
	Sessions  domain.Repository
	Events    support.Events
	Clock     support.Clock
	Logger    *slog.Logger
}

func (h *ApplyEventHandler) Handle(ctx context.Context, cmd ApplyEventCommand) (dto.Selection, error) {
	ev, err := h.event(cmd)
	if err != nil {
		return dto.Selection{}, err
	}
	now := h.Clock.Today()

	var (
		view    dto.Selection
		pending []events.DomainEvent
	)
	err = h.Sessions.Update(ctx, domain.SessionID(cmd.SessionID), func(sess *domain.Session) error {
		cal, err := h.Calendars.Load(ctx, sess.VenueID)
		if err != nil {
			return err
		}
		sess.Machine.SetPolicy(cal.MinNights(), cal.IsBlocked(now, nil))
		out := sess.Apply(ev, now)
		if out.Rejection != domain.RejectNone {
			h.logger().DebugContext(ctx, "selection pick rejected",
				slog.String("session_id", cmd.SessionID),
				slog.String("day", cmd.Day),
				slog.String("reason", string(out.Rejection)))
		}
		view = dto.MapOutcome(sess, out)
		pending = sess.PullEvents()
		return nil
	})
	if err != nil {
		return dto.Selection{}, support.SessionError(cmd.SessionID, err)
	}
	if err := h.Events.Publish(ctx, pending); err != nil {
		return dto.Selection{}, err
	}
	return view, nil
}

func (h *ApplyEventHandler) event(cmd ApplyEventCommand) (domain.Event, error) {
	ev := domain.Event{Kind: domain.EventKind(cmd.Kind)}
	if ev.Kind == domain.EventClear || (ev.Kind == domain.EventHover && cmd.Day == "") {
		return ev, nil
	}
	day, err := parseDay(cmd.Day, h.Clock.Loc())
	if err != nil {
		return ev, err
	}
	ev.Day = day
	return ev, nil
}

func (h *ApplyEventHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func parseDay(raw string, loc *time.Location) (time.Time, error) {
	day, err := daterange.ParseInstant(raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("day %q: %w", raw, support.ErrInvalidDate)
	}
	return day, nil
}

// GetSessionQuery returns the current state of a picker.
type GetSessionQuery struct {
	SessionID string `json:"session_id" validate:"required"`
}

func (q GetSessionQuery) Key() string { return getSessionKey }

type GetSessionHandler struct {
	Sessions domain.Repository
}

func (h *GetSessionHandler) Handle(ctx context.Context, q GetSessionQuery) (dto.Selection, error) {
	sess, err := support.LoadSession(ctx, h.Sessions, q.SessionID, "")
	if err != nil {
		return dto.Selection{}, err
	}
	return dto.MapSelection(sess), nil
}

var _ commands.Handler[ApplyEventCommand, dto.Selection] = (*ApplyEventHandler)(nil)
var _ queries.Handler[GetSessionQuery, dto.Selection] = (*GetSessionHandler)(nil)
