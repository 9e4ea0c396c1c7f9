package memory

import (
	"context"
	"sync"
	"time"

	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/selection"
)

// CalendarRepository keeps venue calendars in memory. Callers receive copies,
// so a calendar only changes through Save.
type CalendarRepository struct {
	mu        sync.RWMutex
	calendars map[availability.VenueID]*availability.VenueCalendar
}

func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{
		calendars: make(map[availability.VenueID]*availability.VenueCalendar),
	}
}

// Calendar returns a copy of the stored calendar or availability.ErrCalendarNotFound.
func (r *CalendarRepository) Calendar(ctx context.Context, id availability.VenueID) (*availability.VenueCalendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cal, ok := r.calendars[id]
	if !ok {
		return nil, availability.ErrCalendarNotFound
	}
	return cloneCalendar(cal), nil
}

// Save stores the calendar when its version matches the stored one.
func (r *CalendarRepository) Save(ctx context.Context, calendar *availability.VenueCalendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.calendars[calendar.VenueID]
	if ok && current.Version != calendar.Version {
		return availability.ErrVersionConflict
	}
	if !ok && calendar.Version != 0 {
		return availability.ErrVersionConflict
	}
	calendar.Version++
	r.calendars[calendar.VenueID] = cloneCalendar(calendar)
	return nil
}

func cloneCalendar(cal *availability.VenueCalendar) *availability.VenueCalendar {
	settings := cal.Settings
	settings.ClosedWeekdays = append([]time.Weekday(nil), cal.Settings.ClosedWeekdays...)
	return &availability.VenueCalendar{
		VenueID:    cal.VenueID,
		Bookings:   append([]availability.Booking(nil), cal.Bookings...),
		Highlights: append([]availability.BlockedRange(nil), cal.Highlights...),
		Settings:   settings,
		Version:    cal.Version,
	}
}

// SessionRepository holds open picker sessions. Each session has its own lock
// so transitions on different pickers never wait on each other.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[selection.SessionID]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session *selection.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[selection.SessionID]*sessionEntry)}
}

func (r *SessionRepository) Create(ctx context.Context, s *selection.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = &sessionEntry{session: s}
	return nil
}

// Get returns a snapshot of the session.
func (r *SessionRepository) Get(ctx context.Context, id selection.SessionID) (*selection.Session, error) {
	entry, ok := r.entry(id)
	if !ok {
		return nil, selection.ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Snapshot(), nil
}

func (r *SessionRepository) Update(ctx context.Context, id selection.SessionID, fn func(*selection.Session) error) error {
	entry, ok := r.entry(id)
	if !ok {
		return selection.ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

func (r *SessionRepository) Delete(ctx context.Context, id selection.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return selection.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len reports the number of open sessions.
func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *SessionRepository) entry(id selection.SessionID) (*sessionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[id]
	return entry, ok
}

var (
	_ availability.Repository = (*CalendarRepository)(nil)
	_ selection.Repository    = (*SessionRepository)(nil)
)
