package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/app/policies"
	domain "venuecal/internal/domain/availability"
)

const exportKey = "calendar.export"

var ErrExportDisabled = errors.New("calendar: snapshot storage is not configured")

// ExportMonthCommand stores the rendered month grid as a JSON snapshot.
type ExportMonthCommand struct {
	VenueID string `json:"venue_id" validate:"required"`
	Month   string `json:"month" validate:"omitempty,isomonth"`
}

func (c ExportMonthCommand) Key() string { return exportKey }

type ExportMonthHandler struct {
	Calendars support.Calendars
	Snapshots policies.SnapshotStore
	Clock     support.Clock
	Prefix    string
	Logger    *slog.Logger
}

func (h *ExportMonthHandler) Handle(ctx context.Context, cmd ExportMonthCommand) (dto.CalendarExport, error) {
	if h.Snapshots == nil {
		return dto.CalendarExport{}, ErrExportDisabled
	}
	now := h.Clock.Today()
	month, err := resolveMonth(cmd.Month, now)
	if err != nil {
		return dto.CalendarExport{}, err
	}
	cal, err := h.Calendars.Load(ctx, domain.VenueID(cmd.VenueID))
	if err != nil {
		return dto.CalendarExport{}, err
	}
	view := renderMonth(cal, nil, month, now)
	body, err := json.Marshal(view)
	if err != nil {
		return dto.CalendarExport{}, fmt.Errorf("encode snapshot: %w", err)
	}
	key := path.Join(h.Prefix, "calendars", cmd.VenueID, view.Month+".json")
	url, err := h.Snapshots.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json")
	if err != nil {
		return dto.CalendarExport{}, fmt.Errorf("upload snapshot: %w", err)
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "calendar snapshot exported",
			slog.String("venue_id", cmd.VenueID),
			slog.String("key", key))
	}
	return dto.CalendarExport{VenueID: cmd.VenueID, Month: view.Month, Key: key, URL: url}, nil
}

var _ commands.Handler[ExportMonthCommand, dto.CalendarExport] = (*ExportMonthHandler)(nil)
