package clock

import (
	"context"
	"errors"
	"time"

	"github.com/oakmontlabs/timepunch/internal/repository"
)

const maxManualDuration = 24 * time.Hour

// CreateSessionInput supplies both clock times directly, bypassing the
// live clock. ProjectID and Notes are optional.
type CreateSessionInput struct {
	UserID    string
	ClockIn   time.Time
	ClockOut  time.Time
	ProjectID *string
	Notes     *string
}

// UpdateSessionInput patches an existing session. Nil time fields keep
// the stored value; ProjectID/Notes only apply when their Set flag is
// true, so a caller can explicitly null them out.
type UpdateSessionInput struct {
	UserID       string
	SessionID    string
	ClockIn      *time.Time
	ClockOut     *time.Time
	ProjectID    *string
	ProjectIDSet bool
	Notes        *string
	NotesSet     bool
}

// CreateSession records a manually entered session. Duration is simply
// clock-out minus clock-in: manual entries carry no break record, so
// unlike live clock-outs nothing is deducted.
func (e *Engine) CreateSession(ctx context.Context, input CreateSessionInput) (*repository.Session, error) {
	if err := e.ValidateManualTimes(input.ClockIn, input.ClockOut); err != nil {
		return nil, err
	}
	return e.store.CreateSession(ctx, repository.CreateSessionInput{
		UserID:     input.UserID,
		ClockIn:    input.ClockIn,
		ClockOut:   input.ClockOut,
		DurationMS: input.ClockOut.Sub(input.ClockIn).Milliseconds(),
		ProjectID:  input.ProjectID,
		Notes:      input.Notes,
	})
}

// UpdateSession rewrites a session's times and recomputes its duration
// from the merged clock-in/out under the same validation as creation.
func (e *Engine) UpdateSession(ctx context.Context, input UpdateSessionInput) (*repository.Session, error) {
	existing, err := e.store.GetSession(ctx, input.UserID, input.SessionID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrSessionNotFound
	}

	clockIn := existing.ClockIn
	if input.ClockIn != nil {
		clockIn = *input.ClockIn
	}
	clockOut := existing.ClockOut
	if input.ClockOut != nil {
		clockOut = *input.ClockOut
	}
	if err := e.ValidateManualTimes(clockIn, clockOut); err != nil {
		return nil, err
	}

	projectID := existing.ProjectID
	if input.ProjectIDSet {
		projectID = input.ProjectID
	}
	notes := existing.Notes
	if input.NotesSet {
		notes = input.Notes
	}

	updated, err := e.store.UpdateSession(ctx, repository.UpdateSessionInput{
		UserID:     input.UserID,
		SessionID:  input.SessionID,
		ClockIn:    clockIn,
		ClockOut:   clockOut,
		DurationMS: clockOut.Sub(clockIn).Milliseconds(),
		ProjectID:  projectID,
		Notes:      notes,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (e *Engine) DeleteSession(ctx context.Context, userID, sessionID string) error {
	err := e.store.DeleteSession(ctx, userID, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

func (e *Engine) GetSession(ctx context.Context, userID, sessionID string) (*repository.Session, error) {
	session, err := e.store.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (e *Engine) ListSessions(ctx context.Context, f repository.SessionFilter) ([]repository.Session, error) {
	return e.store.ListSessions(ctx, f)
}

// ValidateManualTimes enforces the manual-entry policy: strictly
// ordered times, nothing in the future, at most 24 hours long (exactly
// 24h is allowed), clock-in at most a year old. Live clock-outs are
// deliberately not subject to the duration cap.
func (e *Engine) ValidateManualTimes(clockIn, clockOut time.Time) error {
	if !clockOut.After(clockIn) {
		return ErrInvalidRange
	}
	now := e.now()
	if clockIn.After(now) || clockOut.After(now) {
		return ErrFutureTime
	}
	if clockOut.Sub(clockIn) > maxManualDuration {
		return ErrDurationTooLong
	}
	if clockIn.Before(now.AddDate(-1, 0, 0)) {
		return ErrTooFarInPast
	}
	return nil
}
