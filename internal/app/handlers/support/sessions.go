package support

import (
	"context"
	"errors"
	"fmt"

	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/selection"
)

// LoadSession fetches a picker session. When venue is set the session must
// belong to it.
func LoadSession(ctx context.Context, repo selection.Repository, id string, venue availability.VenueID) (*selection.Session, error) {
	if id == "" || repo == nil {
		return nil, ErrSessionNotFound
	}
	sess, err := repo.Get(ctx, selection.SessionID(id))
	if err != nil {
		return nil, SessionError(id, err)
	}
	if venue != "" && sess.VenueID != venue {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return sess, nil
}

// SessionError maps the repository miss onto the application error.
func SessionError(id string, err error) error {
	if errors.Is(err, selection.ErrSessionNotFound) {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return err
}
