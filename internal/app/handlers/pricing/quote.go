package pricing

import (
	"context"
	"errors"
	"fmt"

	"venuecal/internal/app/dto"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/app/queries"
	"venuecal/internal/domain/availability"
	domain "venuecal/internal/domain/pricing"
	"venuecal/internal/domain/selection"
	"venuecal/internal/domain/shared/daterange"
)

const quoteKey = "pricing.quote"

var ErrRangeRequired = errors.New("pricing: session or check-in/check-out required")

// QuoteQuery prices either the range committed in a picker session or an
// explicit check-in/check-out pair. An incomplete range yields a zero quote.
type QuoteQuery struct {
	VenueID   string `json:"venue_id" validate:"required"`
	SessionID string `json:"session_id"`
	CheckIn   string `json:"check_in" validate:"omitempty,isodate"`
	CheckOut  string `json:"check_out" validate:"omitempty,isodate"`
}

func (q QuoteQuery) Key() string { return quoteKey }

type QuoteHandler struct {
	Calendars support.Calendars
	Sessions  selection.Repository
	Clock     support.Clock
	Terms     domain.Terms
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (dto.PriceQuote, error) {
	cal, err := h.Calendars.Load(ctx, availability.VenueID(q.VenueID))
	if err != nil {
		return dto.PriceQuote{}, err
	}
	rng, err := h.stay(ctx, q, cal.VenueID)
	if err != nil {
		return dto.PriceQuote{}, err
	}
	summary := domain.Summarize(cal.Settings.NightlyPrice, rng.Start, rng.End, h.Terms)
	return dto.MapQuote(q.VenueID, summary, rng), nil
}

func (h *QuoteHandler) stay(ctx context.Context, q QuoteQuery, venue availability.VenueID) (selection.Range, error) {
	if q.SessionID != "" {
		sess, err := support.LoadSession(ctx, h.Sessions, q.SessionID, venue)
		if err != nil {
			return selection.Range{}, err
		}
		return sess.Machine.Range(), nil
	}
	if q.CheckIn == "" || q.CheckOut == "" {
		return selection.Range{}, ErrRangeRequired
	}
	loc := h.Clock.Loc()
	in, err := daterange.ParseInstant(q.CheckIn, loc)
	if err != nil {
		return selection.Range{}, fmt.Errorf("check_in %q: %w", q.CheckIn, support.ErrInvalidDate)
	}
	out, err := daterange.ParseInstant(q.CheckOut, loc)
	if err != nil {
		return selection.Range{}, fmt.Errorf("check_out %q: %w", q.CheckOut, support.ErrInvalidDate)
	}
	return selection.Range{Start: in, End: out}, nil
}

var _ queries.Handler[QuoteQuery, dto.PriceQuote] = (*QuoteHandler)(nil)
