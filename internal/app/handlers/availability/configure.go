package availability

import (
	"context"
	"fmt"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/app/validation"
	domain "venuecal/internal/domain/availability"
	"venuecal/internal/domain/shared/money"
)

const (
	configureKey = "calendar.configure"
	highlightKey = "calendar.highlight"
)

// ConfigureCalendarCommand replaces a venue's booking policy. A nil MinNights
// keeps the service default.
type ConfigureCalendarCommand struct {
	VenueID           string   `json:"venue_id" validate:"required"`
	MinNights         *int     `json:"min_nights" validate:"omitempty,gte=0,lte=365"`
	AllowPast         bool     `json:"allow_past"`
	NightlyPriceCents int64    `json:"nightly_price_cents" validate:"gte=0"`
	Currency          string   `json:"currency" validate:"omitempty,len=3,alpha"`
	ClosedWeekdays    []string `json:"closed_weekdays" validate:"dive,oneof=mon tue wed thu fri sat sun"`
}

func (c ConfigureCalendarCommand) Key() string { return configureKey }

type ConfigureCalendarHandler struct {
	Calendars support.Calendars
	Events    support.Events
	Clock     support.Clock
}

func (h *ConfigureCalendarHandler) Handle(ctx context.Context, cmd ConfigureCalendarCommand) (dto.VenueSettings, error) {
	settings, err := h.settings(cmd)
	if err != nil {
		return dto.VenueSettings{}, err
	}
	now := h.Clock.Today()
	cal, evs, err := h.Calendars.Mutate(ctx, domain.VenueID(cmd.VenueID), func(cal *domain.VenueCalendar) error {
		cal.Configure(settings, now)
		return nil
	})
	if err != nil {
		return dto.VenueSettings{}, err
	}
	if err := h.Events.Publish(ctx, evs); err != nil {
		return dto.VenueSettings{}, err
	}
	return dto.MapSettings(cal), nil
}

func (h *ConfigureCalendarHandler) settings(cmd ConfigureCalendarCommand) (domain.Settings, error) {
	defaults := h.Calendars.Defaults
	settings := domain.Settings{
		MinNights: defaults.MinNights,
		AllowPast: cmd.AllowPast,
	}
	if cmd.MinNights != nil {
		settings.MinNights = *cmd.MinNights
	}
	currency := cmd.Currency
	if currency == "" {
		currency = defaults.NightlyPrice.Currency
	}
	price, err := money.New(cmd.NightlyPriceCents, currency)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("%w: %v", validation.ErrInvalid, err)
	}
	settings.NightlyPrice = price
	closed, err := domain.ParseWeekdays(cmd.ClosedWeekdays)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("%w: %v", validation.ErrInvalid, err)
	}
	settings.ClosedWeekdays = closed
	return settings, nil
}

// HighlightRangeCommand marks [From, To] for emphasis without blocking it.
type HighlightRangeCommand struct {
	VenueID string `json:"venue_id" validate:"required"`
	From    string `json:"from" validate:"required,isodate"`
	To      string `json:"to" validate:"required,isodate"`
}

func (c HighlightRangeCommand) Key() string { return highlightKey }

type HighlightRangeHandler struct {
	Calendars support.Calendars
	Clock     support.Clock
}

func (h *HighlightRangeHandler) Handle(ctx context.Context, cmd HighlightRangeCommand) (dto.VenueSettings, error) {
	loc := h.Clock.Loc()
	from, err := parseDay(cmd.From, loc)
	if err != nil {
		return dto.VenueSettings{}, err
	}
	to, err := parseDay(cmd.To, loc)
	if err != nil {
		return dto.VenueSettings{}, err
	}
	if to.Before(from) {
		from, to = to, from
	}
	cal, _, err := h.Calendars.Mutate(ctx, domain.VenueID(cmd.VenueID), func(cal *domain.VenueCalendar) error {
		cal.AddHighlight(domain.BlockedRange{Start: from, End: to})
		return nil
	})
	if err != nil {
		return dto.VenueSettings{}, err
	}
	return dto.MapSettings(cal), nil
}

var _ commands.Handler[ConfigureCalendarCommand, dto.VenueSettings] = (*ConfigureCalendarHandler)(nil)
var _ commands.Handler[HighlightRangeCommand, dto.VenueSettings] = (*HighlightRangeHandler)(nil)
