// Package wiring registers every application handler on the command and
// query buses and wraps them with the standard middleware pipeline.
package wiring

import (
	"log/slog"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	"venuecal/internal/app/handlers/availability"
	"venuecal/internal/app/handlers/bookings"
	"venuecal/internal/app/handlers/pricing"
	"venuecal/internal/app/handlers/selection"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/app/middleware"
	"venuecal/internal/app/outbox"
	"venuecal/internal/app/policies"
	"venuecal/internal/app/queries"
	domainavailability "venuecal/internal/domain/availability"
	domainpricing "venuecal/internal/domain/pricing"
	domainselection "venuecal/internal/domain/selection"
)

// Deps carries the adapters chosen by the composition root. Snapshots,
// Validator and Idempotency are optional.
type Deps struct {
	Calendars    domainavailability.Repository
	Sessions     domainselection.Repository
	Outbox       outbox.Outbox
	Idempotency  middleware.IdempotencyStore
	Snapshots    policies.SnapshotStore
	Validator    middleware.Validator
	Defaults     domainavailability.Settings
	Terms        domainpricing.Terms
	Clock        support.Clock
	ExportPrefix string
	Logger       *slog.Logger
	IDGenerator  func() string
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
	// CommandKeys and QueryKeys list the registered handlers, for startup logging.
	CommandKeys []string
	QueryKeys   []string
}

func Build(d Deps) Buses {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	calendars := support.Calendars{Repo: d.Calendars, Defaults: d.Defaults}
	events := support.Events{Outbox: d.Outbox, Encoder: outbox.JSONEventEncoder{}}

	cmdBus := commands.NewInMemoryBus()
	commands.RegisterHandler[bookings.RecordBookingCommand, dto.Booking](cmdBus, bookings.RecordBookingCommand{}.Key(),
		&bookings.RecordBookingHandler{Calendars: calendars, Events: events, Clock: d.Clock, Logger: logger})
	commands.RegisterHandler[bookings.ReleaseBookingCommand, dto.VenueSettings](cmdBus, bookings.ReleaseBookingCommand{}.Key(),
		&bookings.ReleaseBookingHandler{Calendars: calendars, Events: events, Clock: d.Clock})
	commands.RegisterHandler[availability.ConfigureCalendarCommand, dto.VenueSettings](cmdBus, availability.ConfigureCalendarCommand{}.Key(),
		&availability.ConfigureCalendarHandler{Calendars: calendars, Events: events, Clock: d.Clock})
	commands.RegisterHandler[availability.HighlightRangeCommand, dto.VenueSettings](cmdBus, availability.HighlightRangeCommand{}.Key(),
		&availability.HighlightRangeHandler{Calendars: calendars, Clock: d.Clock})
	commands.RegisterHandler[availability.ExportMonthCommand, dto.CalendarExport](cmdBus, availability.ExportMonthCommand{}.Key(),
		&availability.ExportMonthHandler{Calendars: calendars, Snapshots: d.Snapshots, Clock: d.Clock, Prefix: d.ExportPrefix, Logger: logger})
	commands.RegisterHandler[selection.OpenSessionCommand, dto.Selection](cmdBus, selection.OpenSessionCommand{}.Key(),
		&selection.OpenSessionHandler{Calendars: calendars, Sessions: d.Sessions, Clock: d.Clock, IDGenerator: d.IDGenerator})
	commands.RegisterHandler[selection.ApplyEventCommand, dto.Selection](cmdBus, selection.ApplyEventCommand{}.Key(),
		&selection.ApplyEventHandler{Calendars: calendars, Sessions: d.Sessions, Events: events, Clock: d.Clock, Logger: logger})
	commands.RegisterHandler[selection.CloseSessionCommand, struct{}](cmdBus, selection.CloseSessionCommand{}.Key(),
		&selection.CloseSessionHandler{Sessions: d.Sessions})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[availability.GetMonthQuery, dto.CalendarMonth](queryBus, availability.GetMonthQuery{}.Key(),
		&availability.GetMonthHandler{Calendars: calendars, Sessions: d.Sessions, Clock: d.Clock})
	queries.RegisterHandler[availability.GetSettingsQuery, dto.VenueSettings](queryBus, availability.GetSettingsQuery{}.Key(),
		&availability.GetSettingsHandler{Calendars: calendars})
	queries.RegisterHandler[availability.ListBookingsQuery, []dto.Booking](queryBus, availability.ListBookingsQuery{}.Key(),
		&availability.ListBookingsHandler{Calendars: calendars})
	queries.RegisterHandler[pricing.QuoteQuery, dto.PriceQuote](queryBus, pricing.QuoteQuery{}.Key(),
		&pricing.QuoteHandler{Calendars: calendars, Sessions: d.Sessions, Clock: d.Clock, Terms: d.Terms})
	queries.RegisterHandler[selection.GetSessionQuery, dto.Selection](queryBus, selection.GetSessionQuery{}.Key(),
		&selection.GetSessionHandler{Sessions: d.Sessions})

	cmdMW := []middleware.CommandMiddleware{middleware.Logging(logger)}
	queryMW := []middleware.QueryMiddleware{middleware.QueryLogging(logger)}
	if d.Validator != nil {
		cmdMW = append(cmdMW, middleware.Validation(d.Validator))
		queryMW = append(queryMW, middleware.QueryValidation(d.Validator))
	}
	if d.Idempotency != nil {
		cmdMW = append(cmdMW, middleware.Idempotency(d.Idempotency, nil,
			middleware.RememberErrors(support.IsPermanent),
			middleware.ReplayErrors(support.PermanentErrors...)))
	}
	return Buses{
		Commands:    middleware.ChainCommands(cmdBus, cmdMW...),
		Queries:     middleware.ChainQueries(queryBus, queryMW...),
		CommandKeys: cmdBus.Keys(),
		QueryKeys:   queryBus.Keys(),
	}
}
