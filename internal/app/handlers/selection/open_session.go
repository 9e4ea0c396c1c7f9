package selection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/domain/availability"
	domain "venuecal/internal/domain/selection"
	"venuecal/internal/domain/shared/daterange"
)

const (
	openSessionKey  = "selection.open"
	closeSessionKey = "selection.close"
)

// OpenSessionCommand starts a picker for a venue, optionally resuming a
// previously chosen range.
type OpenSessionCommand struct {
	VenueID string `json:"venue_id" validate:"required"`
	Start   string `json:"start" validate:"omitempty,isodate"`
	End     string `json:"end" validate:"omitempty,isodate"`
}

func (c OpenSessionCommand) Key() string { return openSessionKey }

type OpenSessionHandler struct {
	Calendars   support.Calendars
	Sessions    domain.Repository
	Clock       support.Clock
	IDGenerator func() string
}

func (h *OpenSessionHandler) Handle(ctx context.Context, cmd OpenSessionCommand) (dto.Selection, error) {
	loc := h.Clock.Loc()
	initial, err := parseInitial(cmd.Start, cmd.End, loc)
	if err != nil {
		return dto.Selection{}, err
	}
	cal, err := h.Calendars.Load(ctx, availability.VenueID(cmd.VenueID))
	if err != nil {
		return dto.Selection{}, err
	}
	now := h.Clock.Today()
	machine := domain.NewMachine(initial, cal.MinNights(), cal.IsBlocked(now, nil))
	sess := domain.NewSession(domain.SessionID(h.newID()), cal.VenueID, machine, now)
	if err := h.Sessions.Create(ctx, sess); err != nil {
		return dto.Selection{}, fmt.Errorf("create session: %w", err)
	}
	return dto.MapSelection(sess), nil
}

func (h *OpenSessionHandler) newID() string {
	if h.IDGenerator != nil {
		return h.IDGenerator()
	}
	return uuid.NewString()
}

func parseInitial(start, end string, loc *time.Location) (domain.Range, error) {
	var rng domain.Range
	if start == "" {
		if end != "" {
			return rng, fmt.Errorf("end without start: %w", support.ErrInvalidDate)
		}
		return rng, nil
	}
	s, err := daterange.ParseInstant(start, loc)
	if err != nil {
		return rng, fmt.Errorf("start %q: %w", start, support.ErrInvalidDate)
	}
	if end == "" {
		return domain.Range{Start: s}, nil
	}
	e, err := daterange.ParseInstant(end, loc)
	if err != nil {
		return rng, fmt.Errorf("end %q: %w", end, support.ErrInvalidDate)
	}
	return domain.NewRange(s, e), nil
}

// CloseSessionCommand discards a picker when its view goes away.
type CloseSessionCommand struct {
	SessionID string `json:"session_id" validate:"required"`
}

func (c CloseSessionCommand) Key() string { return closeSessionKey }

type CloseSessionHandler struct {
	Sessions domain.Repository
}

func (h *CloseSessionHandler) Handle(ctx context.Context, cmd CloseSessionCommand) (struct{}, error) {
	if err := h.Sessions.Delete(ctx, domain.SessionID(cmd.SessionID)); err != nil {
		return struct{}{}, support.SessionError(cmd.SessionID, err)
	}
	return struct{}{}, nil
}

var _ commands.Handler[OpenSessionCommand, dto.Selection] = (*OpenSessionHandler)(nil)
var _ commands.Handler[CloseSessionCommand, struct{}] = (*CloseSessionHandler)(nil)
