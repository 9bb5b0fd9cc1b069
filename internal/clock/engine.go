package clock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oakmontlabs/timepunch/internal/repository"
)

// Store is the slice of the repository the engine depends on.
type Store interface {
	repository.ActiveSessionRepository
	repository.SessionRepository
}

// Engine owns a user's clock-in/break/clock-out lifecycle. The single
// source of truth is the active_sessions row keyed by user id; the
// engine holds no cross-request state, so the storage constraints carry
// all concurrency guarantees.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// BreakState is what ToggleBreak reports back: the side the toggle
// landed on, plus the matching timestamp or accumulated total.
type BreakState struct {
	IsOnBreak   bool
	BreakStart  *time.Time
	BreakTimeMS int64
}

// ClockIn opens an active session for the user. The insert into the
// user-keyed active row is the race gate: losing a concurrent duplicate
// surfaces as ErrAlreadyClockedIn, with no prior existence check.
func (e *Engine) ClockIn(ctx context.Context, userID string, projectID *string) (*repository.ActiveSession, error) {
	active, err := e.store.CreateActiveSession(ctx, repository.CreateActiveSessionInput{
		UserID:    userID,
		ClockIn:   e.now(),
		ProjectID: projectID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, err
	}
	slog.Info("clocked in", "user_id", userID, "clock_in", active.ClockIn)
	return active, nil
}

// ToggleBreak flips the break state of the user's active session.
// Ending a break folds the elapsed interval into the accumulated total;
// the total never decreases while the session is active.
func (e *Engine) ToggleBreak(ctx context.Context, userID string) (*BreakState, error) {
	active, err := e.store.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrNotClockedIn
	}

	now := e.now()
	var state BreakState
	if active.IsOnBreak {
		state = BreakState{IsOnBreak: false, BreakTimeMS: effectiveBreakMS(active, now)}
	} else {
		state = BreakState{IsOnBreak: true, BreakStart: &now, BreakTimeMS: active.BreakTimeMS}
	}

	err = e.store.UpdateActiveBreak(ctx, repository.UpdateActiveBreakInput{
		UserID:      userID,
		IsOnBreak:   state.IsOnBreak,
		BreakStart:  state.BreakStart,
		BreakTimeMS: state.BreakTimeMS,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotClockedIn
		}
		return nil, err
	}
	slog.Info("break toggled", "user_id", userID, "on_break", state.IsOnBreak, "break_time_ms", state.BreakTimeMS)
	return &state, nil
}

// ClockOut closes the active session into an immutable completed one.
// Duration is wall time minus all break time, including a still-open
// break folded in as of the clock-out instant. The store swaps the
// active row for the completed row in one transaction; if the row is
// already gone a duplicate clock-out fails with ErrNotClockedIn.
func (e *Engine) ClockOut(ctx context.Context, userID string, notes *string) (*repository.Session, error) {
	active, err := e.store.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrNotClockedIn
	}

	now := e.now()
	duration := now.Sub(active.ClockIn).Milliseconds() - effectiveBreakMS(active, now)

	session, err := e.store.CloseActiveSession(ctx, repository.CloseActiveSessionInput{
		UserID:     userID,
		ClockIn:    active.ClockIn,
		ClockOut:   now,
		DurationMS: duration,
		ProjectID:  active.ProjectID,
		Notes:      notes,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotClockedIn
		}
		return nil, err
	}
	slog.Info("clocked out", "user_id", userID, "duration_ms", session.DurationMS)
	return session, nil
}

// Active returns the user's in-progress session, or nil when idle.
func (e *Engine) Active(ctx context.Context, userID string) (*repository.ActiveSession, error) {
	return e.store.GetActiveSession(ctx, userID)
}

// effectiveBreakMS is the total break time of an active session as of
// the given instant: all closed intervals plus the open one, if any.
// Both the break-close path and clock-out go through here so the two
// never disagree on the arithmetic.
func effectiveBreakMS(active *repository.ActiveSession, asOf time.Time) int64 {
	total := active.BreakTimeMS
	if active.IsOnBreak && active.BreakStart != nil {
		total += asOf.Sub(*active.BreakStart).Milliseconds()
	}
	return total
}
