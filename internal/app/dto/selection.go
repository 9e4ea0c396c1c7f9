package dto

import (
	"venuecal/internal/domain/selection"
	"venuecal/internal/domain/shared/daterange"
)

type Selection struct {
	SessionID    string `json:"session_id"`
	VenueID      string `json:"venue_id"`
	State        string `json:"state"`
	Start        string `json:"start,omitempty"`
	End          string `json:"end,omitempty"`
	PreviewStart string `json:"preview_start,omitempty"`
	PreviewEnd   string `json:"preview_end,omitempty"`
	Nights       int    `json:"nights"`
	MinNights    int    `json:"min_nights"`
	Close        bool   `json:"close"`
	Changed      bool   `json:"changed"`
}

func MapSelection(s *selection.Session) Selection {
	rng := s.Machine.Range()
	out := Selection{
		SessionID: string(s.ID),
		VenueID:   string(s.VenueID),
		State:     string(rng.State()),
		Nights:    rng.Nights(),
		MinNights: s.Machine.MinNights(),
	}
	if rng.HasStart() {
		out.Start = rng.Start.Format(daterange.DateLayout)
	}
	if rng.HasEnd() {
		out.End = rng.End.Format(daterange.DateLayout)
	}
	if preview, ok := s.Machine.Preview(); ok {
		out.PreviewStart = preview.Start.Format(daterange.DateLayout)
		out.PreviewEnd = preview.End.Format(daterange.DateLayout)
	}
	return out
}

// MapOutcome decorates the session view with the result of the last event.
func MapOutcome(s *selection.Session, out selection.Outcome) Selection {
	view := MapSelection(s)
	view.Close = out.Close
	view.Changed = out.Changed
	return view
}
