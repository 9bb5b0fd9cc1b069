package clock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/oakmontlabs/timepunch/internal/repository"
)

// memStore is an in-memory Store with the same atomicity contract as
// the Postgres implementation: insert-if-absent on the active row and
// a conditional delete-then-insert on close.
type memStore struct {
	mu       sync.Mutex
	active   map[string]*repository.ActiveSession
	sessions map[string]*repository.Session
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		active:   make(map[string]*repository.ActiveSession),
		sessions: make(map[string]*repository.Session),
	}
}

func (m *memStore) CreateActiveSession(_ context.Context, input repository.CreateActiveSessionInput) (*repository.ActiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.active[input.UserID]; exists {
		return nil, repository.ErrDuplicate
	}
	a := &repository.ActiveSession{
		UserID:    input.UserID,
		ClockIn:   input.ClockIn,
		ProjectID: input.ProjectID,
	}
	m.active[input.UserID] = a
	copied := *a
	return &copied, nil
}

func (m *memStore) GetActiveSession(_ context.Context, userID string) (*repository.ActiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.active[userID]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (m *memStore) UpdateActiveBreak(_ context.Context, input repository.UpdateActiveBreakInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.active[input.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	a.IsOnBreak = input.IsOnBreak
	a.BreakStart = input.BreakStart
	a.BreakTimeMS = input.BreakTimeMS
	return nil
}

func (m *memStore) CloseActiveSession(_ context.Context, input repository.CloseActiveSessionInput) (*repository.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[input.UserID]; !ok {
		return nil, repository.ErrNotFound
	}
	delete(m.active, input.UserID)
	m.nextID++
	s := &repository.Session{
		ID:         fmt.Sprintf("session-%d", m.nextID),
		UserID:     input.UserID,
		ClockIn:    input.ClockIn,
		ClockOut:   input.ClockOut,
		DurationMS: input.DurationMS,
		ProjectID:  input.ProjectID,
		Notes:      input.Notes,
	}
	m.sessions[s.ID] = s
	copied := *s
	return &copied, nil
}

func (m *memStore) CreateSession(_ context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s := &repository.Session{
		ID:         fmt.Sprintf("session-%d", m.nextID),
		UserID:     input.UserID,
		ClockIn:    input.ClockIn,
		ClockOut:   input.ClockOut,
		DurationMS: input.DurationMS,
		ProjectID:  input.ProjectID,
		Notes:      input.Notes,
	}
	m.sessions[s.ID] = s
	copied := *s
	return &copied, nil
}

func (m *memStore) GetSession(_ context.Context, userID, id string) (*repository.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (m *memStore) ListSessions(_ context.Context, f repository.SessionFilter) ([]repository.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Session
	for _, s := range m.sessions {
		if s.UserID != f.UserID {
			continue
		}
		if f.From != nil && s.ClockIn.Before(*f.From) {
			continue
		}
		if f.To != nil && s.ClockIn.After(*f.To) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *memStore) UpdateSession(_ context.Context, input repository.UpdateSessionInput) (*repository.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[input.SessionID]
	if !ok || s.UserID != input.UserID {
		return nil, repository.ErrNotFound
	}
	s.ClockIn = input.ClockIn
	s.ClockOut = input.ClockOut
	s.DurationMS = input.DurationMS
	s.ProjectID = input.ProjectID
	s.Notes = input.Notes
	copied := *s
	return &copied, nil
}

func (m *memStore) DeleteSession(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// testEngine returns an engine whose clock starts at base and advances
// only through the returned step function.
func testEngine(store Store, base time.Time) (*Engine, func(d time.Duration)) {
	current := base
	e := NewEngine(store)
	e.now = func() time.Time { return current }
	return e, func(d time.Duration) { current = current.Add(d) }
}

var testBase = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestClockInOutWithoutBreaks(t *testing.T) {
	store := newMemStore()
	e, advance := testEngine(store, testBase)
	ctx := context.Background()

	if _, err := e.ClockIn(ctx, "u1", nil); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	advance(8 * time.Hour)
	session, err := e.ClockOut(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if want := (8 * time.Hour).Milliseconds(); session.DurationMS != want {
		t.Errorf("DurationMS = %d, want %d", session.DurationMS, want)
	}
}

func TestClockOutDeductsClosedBreak(t *testing.T) {
	store := newMemStore()
	e, advance := testEngine(store, testBase)
	ctx := context.Background()

	if _, err := e.ClockIn(ctx, "u1", nil); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	advance(2 * time.Hour)
	if _, err := e.ToggleBreak(ctx, "u1"); err != nil {
		t.Fatalf("start break: %v", err)
	}
	advance(30 * time.Minute)
	state, err := e.ToggleBreak(ctx, "u1")
	if err != nil {
		t.Fatalf("end break: %v", err)
	}
	if state.IsOnBreak {
		t.Error("expected break to be over")
	}
	if want := (30 * time.Minute).Milliseconds(); state.BreakTimeMS != want {
		t.Errorf("BreakTimeMS = %d, want %d", state.BreakTimeMS, want)
	}
	advance(90 * time.Minute)
	session, err := e.ClockOut(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if want := (3*time.Hour + 30*time.Minute).Milliseconds(); session.DurationMS != want {
		t.Errorf("DurationMS = %d, want %d", session.DurationMS, want)
	}
}

func TestClockOutFoldsOpenBreak(t *testing.T) {
	store := newMemStore()
	e, advance := testEngine(store, testBase)
	ctx := context.Background()

	if _, err := e.ClockIn(ctx, "u1", nil); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	advance(4 * time.Hour)
	if _, err := e.ToggleBreak(ctx, "u1"); err != nil {
		t.Fatalf("start break: %v", err)
	}
	advance(time.Hour)
	session, err := e.ClockOut(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	// 5h wall time minus the hour-long break still open at clock-out.
	if want := (4 * time.Hour).Milliseconds(); session.DurationMS != want {
		t.Errorf("DurationMS = %d, want %d", session.DurationMS, want)
	}
}

func TestMultipleBreaksAccumulate(t *testing.T) {
	store := newMemStore()
	e, advance := testEngine(store, testBase)
	ctx := context.Background()

	if _, err := e.ClockIn(ctx, "u1", nil); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	for i := 0; i < 3; i++ {
		advance(time.Hour)
		if _, err := e.ToggleBreak(ctx, "u1"); err != nil {
			t.Fatalf("start break %d: %v", i, err)
		}
		advance(10 * time.Minute)
		if _, err := e.ToggleBreak(ctx, "u1"); err != nil {
			t.Fatalf("end break %d: %v", i, err)
		}
	}
	advance(time.Hour)
	session, err := e.ClockOut(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if want := (4 * time.Hour).Milliseconds(); session.DurationMS != want {
		t.Errorf("DurationMS = %d, want %d", session.DurationMS, want)
	}
}

func TestClockInTwiceFails(t *testing.T) {
	store := newMemStore()
	e, _ := testEngine(store, testBase)
	ctx := context.Background()

	if _, err := e.ClockIn(ctx, "u1", nil); err != nil {
		t.Fatalf("first ClockIn: %v", err)
	}
	_, err := e.ClockIn(ctx, "u1", nil)
	if !errors.Is(err, ErrAlreadyClockedIn) {
		t.Errorf("second ClockIn err = %v, want ErrAlreadyClockedIn", err)
	}
}

func TestClockOutWhileIdleFails(t *testing.T) {
	store := newMemStore()
	e, _ := testEngine(store, testBase)

	_, err := e.ClockOut(context.Background(), "u1", nil)
	if !errors.Is(err, ErrNotClockedIn) {
		t.Errorf("ClockOut err = %v, want ErrNotClockedIn", err)
	}
}

func TestToggleBreakWhileIdleFails(t *testing.T) {
	store := newMemStore()
	e, _ := testEngine(store, testBase)

	_, err := e.ToggleBreak(context.Background(), "u1")
	if !errors.Is(err, ErrNotClockedIn) {
		t.Errorf("ToggleBreak err = %v, want ErrNotClockedIn", err)
	}
}

func TestConcurrentClockInSingleWinner(t *testing.T) {
	store := newMemStore()
	e, _ := testEngine(store, testBase)
	ctx := context.Background()

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ClockIn(ctx, "u1", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	won := 0
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAlreadyClockedIn):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Errorf("winners = %d, want exactly 1", won)
	}
}

func TestClockInRecordsProject(t *testing.T) {
	store := newMemStore()
	e, advance := testEngine(store, testBase)
	ctx := context.Background()

	projectID := "proj-1"
	if _, err := e.ClockIn(ctx, "u1", &projectID); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	advance(time.Hour)
	session, err := e.ClockOut(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if session.ProjectID == nil || *session.ProjectID != projectID {
		t.Errorf("ProjectID = %v, want %q", session.ProjectID, projectID)
	}
}

// yieldingStore hands over the active row on read, then lets a rival
// clock the user out before the close lands.
type yieldingStore struct {
	*memStore
	onRead func()
}

func (s *yieldingStore) GetActiveSession(ctx context.Context, userID string) (*repository.ActiveSession, error) {
	a, err := s.memStore.GetActiveSession(ctx, userID)
	if a != nil && s.onRead != nil {
		hook := s.onRead
		s.onRead = nil
		hook()
	}
	return a, err
}

func TestRapidDoubleClockOutSecondFails(t *testing.T) {
	store := newMemStore()
	wrapped := &yieldingStore{memStore: store}
	e, advance := testEngine(wrapped, testBase)
	rival := NewEngine(store)
	rival.now = e.now
	ctx := context.Background()

	if _, err := e.ClockIn(ctx, "u1", nil); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	advance(3 * time.Hour)

	var rivalSession *repository.Session
	var rivalErr error
	wrapped.onRead = func() {
		rivalSession, rivalErr = rival.ClockOut(ctx, "u1", nil)
	}

	_, err := e.ClockOut(ctx, "u1", nil)
	if !errors.Is(err, ErrNotClockedIn) {
		t.Errorf("losing ClockOut err = %v, want ErrNotClockedIn", err)
	}
	if rivalErr != nil {
		t.Fatalf("winning ClockOut: %v", rivalErr)
	}
	if want := (3 * time.Hour).Milliseconds(); rivalSession.DurationMS != want {
		t.Errorf("DurationMS = %d, want %d", rivalSession.DurationMS, want)
	}
	if len(store.sessions) != 1 {
		t.Errorf("completed sessions = %d, want exactly 1", len(store.sessions))
	}
}
