package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	availabilityapp "venuecal/internal/app/handlers/availability"
	bookingsapp "venuecal/internal/app/handlers/bookings"
)

// venueFixture seeds a venue's settings and existing bookings at startup.
type venueFixture struct {
	ID                string           `json:"id"`
	MinNights         *int             `json:"min_nights"`
	AllowPast         bool             `json:"allow_past"`
	NightlyPriceCents int64            `json:"nightly_price_cents"`
	Currency          string           `json:"currency"`
	ClosedWeekdays    []string         `json:"closed_weekdays"`
	Bookings          []bookingFixture `json:"bookings"`
}

type bookingFixture struct {
	ID       string `json:"id"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

func loadVenueFixtures(ctx context.Context, bus commands.Bus, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("venue fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("venue fixtures file empty", "path", path)
		return nil
	}
	var fixtures []venueFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	for _, fx := range fixtures {
		cmd := availabilityapp.ConfigureCalendarCommand{
			VenueID:           fx.ID,
			MinNights:         fx.MinNights,
			AllowPast:         fx.AllowPast,
			NightlyPriceCents: fx.NightlyPriceCents,
			Currency:          fx.Currency,
			ClosedWeekdays:    fx.ClosedWeekdays,
		}
		if _, err := commands.Dispatch[availabilityapp.ConfigureCalendarCommand, dto.VenueSettings](ctx, bus, cmd); err != nil {
			logger.Error("fixture invalid", "venue_id", fx.ID, "error", err)
			continue
		}
		for _, b := range fx.Bookings {
			record := bookingsapp.RecordBookingCommand{
				VenueID:   fx.ID,
				BookingID: b.ID,
				DateFrom:  b.DateFrom,
				DateTo:    b.DateTo,
				EventID:   "fixture:" + fx.ID + ":" + b.ID,
			}
			if _, err := commands.Dispatch[bookingsapp.RecordBookingCommand, dto.Booking](ctx, bus, record); err != nil {
				logger.Warn("fixture booking skipped", "venue_id", fx.ID, "booking_id", b.ID, "error", err)
			}
		}
		logger.Info("venue fixture imported", "venue_id", fx.ID, "bookings", len(fx.Bookings))
	}
	return nil
}

func defaultFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "venues.json"),
		filepath.Join("..", "..", "data", "venues.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
