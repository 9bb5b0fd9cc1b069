package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidateManualTimes(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	e, _ := testEngine(newMemStore(), now)

	tests := []struct {
		name     string
		clockIn  time.Time
		clockOut time.Time
		wantErr  error
	}{
		{
			name:     "valid",
			clockIn:  now.Add(-8 * time.Hour),
			clockOut: now.Add(-time.Hour),
		},
		{
			name:     "clock out equals clock in",
			clockIn:  now.Add(-time.Hour),
			clockOut: now.Add(-time.Hour),
			wantErr:  ErrInvalidRange,
		},
		{
			name:     "clock out before clock in",
			clockIn:  now.Add(-time.Hour),
			clockOut: now.Add(-2 * time.Hour),
			wantErr:  ErrInvalidRange,
		},
		{
			name:     "clock out in the future",
			clockIn:  now.Add(-time.Hour),
			clockOut: now.Add(time.Minute),
			wantErr:  ErrFutureTime,
		},
		{
			name:     "exactly 24 hours allowed",
			clockIn:  now.Add(-25 * time.Hour),
			clockOut: now.Add(-time.Hour),
		},
		{
			name:     "over 24 hours",
			clockIn:  now.Add(-25*time.Hour - time.Millisecond),
			clockOut: now.Add(-time.Hour),
			wantErr:  ErrDurationTooLong,
		},
		{
			name:     "clock in over a year old",
			clockIn:  now.AddDate(-1, 0, 0).Add(-time.Minute),
			clockOut: now.AddDate(-1, 0, 0).Add(time.Hour),
			wantErr:  ErrTooFarInPast,
		},
		{
			name:     "range check wins over future check",
			clockIn:  now.Add(time.Hour),
			clockOut: now.Add(time.Hour),
			wantErr:  ErrInvalidRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.ValidateManualTimes(tt.clockIn, tt.clockOut)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateManualTimes() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSessionIgnoresBreaks(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	e, _ := testEngine(newMemStore(), now)

	session, err := e.CreateSession(context.Background(), CreateSessionInput{
		UserID:   "u1",
		ClockIn:  now.Add(-8 * time.Hour),
		ClockOut: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	// Manual entries carry no break record; duration is the raw span.
	if want := (7 * time.Hour).Milliseconds(); session.DurationMS != want {
		t.Errorf("DurationMS = %d, want %d", session.DurationMS, want)
	}
}

func TestUpdateSessionRecomputesDuration(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	e, _ := testEngine(newMemStore(), now)
	ctx := context.Background()

	session, err := e.CreateSession(ctx, CreateSessionInput{
		UserID:   "u1",
		ClockIn:  now.Add(-8 * time.Hour),
		ClockOut: now.Add(-4 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	newOut := now.Add(-2 * time.Hour)
	updated, err := e.UpdateSession(ctx, UpdateSessionInput{
		UserID:    "u1",
		SessionID: session.ID,
		ClockOut:  &newOut,
	})
	if err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	if want := (6 * time.Hour).Milliseconds(); updated.DurationMS != want {
		t.Errorf("DurationMS = %d, want %d", updated.DurationMS, want)
	}
	if !updated.ClockIn.Equal(session.ClockIn) {
		t.Errorf("ClockIn changed: %v, want %v", updated.ClockIn, session.ClockIn)
	}
}

func TestUpdateSessionValidatesMergedTimes(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	e, _ := testEngine(newMemStore(), now)
	ctx := context.Background()

	session, err := e.CreateSession(ctx, CreateSessionInput{
		UserID:   "u1",
		ClockIn:  now.Add(-8 * time.Hour),
		ClockOut: now.Add(-4 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	badIn := now.Add(-3 * time.Hour)
	_, err = e.UpdateSession(ctx, UpdateSessionInput{
		UserID:    "u1",
		SessionID: session.ID,
		ClockIn:   &badIn,
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("UpdateSession err = %v, want ErrInvalidRange", err)
	}
}

func TestUpdateSessionClearsProject(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	e, _ := testEngine(newMemStore(), now)
	ctx := context.Background()

	projectID := "proj-1"
	session, err := e.CreateSession(ctx, CreateSessionInput{
		UserID:    "u1",
		ClockIn:   now.Add(-3 * time.Hour),
		ClockOut:  now.Add(-time.Hour),
		ProjectID: &projectID,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	updated, err := e.UpdateSession(ctx, UpdateSessionInput{
		UserID:       "u1",
		SessionID:    session.ID,
		ProjectIDSet: true,
	})
	if err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	if updated.ProjectID != nil {
		t.Errorf("ProjectID = %v, want nil", *updated.ProjectID)
	}
}

func TestSessionNotFoundErrors(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	e, _ := testEngine(newMemStore(), now)
	ctx := context.Background()

	if _, err := e.GetSession(ctx, "u1", "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession err = %v, want ErrSessionNotFound", err)
	}
	if err := e.DeleteSession(ctx, "u1", "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("DeleteSession err = %v, want ErrSessionNotFound", err)
	}
	in := now.Add(-2 * time.Hour)
	out := now.Add(-time.Hour)
	_, err := e.UpdateSession(ctx, UpdateSessionInput{
		UserID: "u1", SessionID: "missing", ClockIn: &in, ClockOut: &out,
	})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("UpdateSession err = %v, want ErrSessionNotFound", err)
	}
}
