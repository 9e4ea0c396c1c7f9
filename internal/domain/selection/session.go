package selection

import (
	"context"
	"errors"
	"time"

	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/shared/events"
)

var ErrSessionNotFound = errors.New("selection: session not found")

// SessionID identifies one open date picker.
type SessionID string

// Session binds a selection machine to the venue whose calendar it reads. It
// lives as long as the view that opened it.
type Session struct {
	ID        SessionID
	VenueID   availability.VenueID
	Machine   *Machine
	CreatedAt time.Time
	UpdatedAt time.Time
	events.EventRecorder
}

// Repository stores open sessions. Update runs fn while holding the session
// exclusively, so a single session never sees concurrent transitions.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id SessionID) (*Session, error)
	Update(ctx context.Context, id SessionID, fn func(*Session) error) error
	Delete(ctx context.Context, id SessionID) error
}

func NewSession(id SessionID, venue availability.VenueID, m *Machine, now time.Time) *Session {
	return &Session{ID: id, VenueID: venue, Machine: m, CreatedAt: now.UTC(), UpdatedAt: now.UTC()}
}

// Snapshot copies the session for readers outside the repository lock.
// Pending events stay with the original.
func (s *Session) Snapshot() *Session {
	return &Session{
		ID:        s.ID,
		VenueID:   s.VenueID,
		Machine:   s.Machine.Clone(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Apply feeds ev to the machine and records commit and clear events.
func (s *Session) Apply(ev Event, now time.Time) Outcome {
	out := s.Machine.Apply(ev)
	if !out.Changed {
		return out
	}
	s.UpdatedAt = now.UTC()
	switch {
	case out.Close:
		s.Record(SelectionCommitted{
			SessionID: string(s.ID),
			VenueID:   string(s.VenueID),
			Start:     out.Range.Start,
			End:       out.Range.End,
			Nights:    out.Range.Nights(),
			At:        now.UTC(),
		})
	case ev.Kind == EventClear:
		s.Record(SelectionCleared{SessionID: string(s.ID), VenueID: string(s.VenueID), At: now.UTC()})
	}
	return out
}

type SelectionCommitted struct {
	SessionID string    `json:"session_id"`
	VenueID   string    `json:"venue_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Nights    int       `json:"nights"`
	At        time.Time `json:"at"`
}

func (e SelectionCommitted) EventName() string     { return "selection.committed" }
func (e SelectionCommitted) AggregateID() string   { return e.VenueID }
func (e SelectionCommitted) OccurredAt() time.Time { return e.At }

type SelectionCleared struct {
	SessionID string    `json:"session_id"`
	VenueID   string    `json:"venue_id"`
	At        time.Time `json:"at"`
}

func (e SelectionCleared) EventName() string     { return "selection.cleared" }
func (e SelectionCleared) AggregateID() string   { return e.VenueID }
func (e SelectionCleared) OccurredAt() time.Time { return e.At }
