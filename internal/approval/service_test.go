package approval

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/oakmontlabs/timepunch/internal/clock"
	"github.com/oakmontlabs/timepunch/internal/mailer"
	"github.com/oakmontlabs/timepunch/internal/repository"
)

type mockStore struct {
	users    map[string]*repository.User
	sessions map[string]*repository.Session
	links    map[string]map[string]bool
	requests map[string]*repository.ChangeRequest
	nextID   int
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    make(map[string]*repository.User),
		sessions: make(map[string]*repository.Session),
		links:    make(map[string]map[string]bool),
		requests: make(map[string]*repository.ChangeRequest),
	}
}

func (m *mockStore) CreateUser(_ context.Context, _ repository.CreateUserInput) (*repository.User, error) {
	return nil, nil
}

func (m *mockStore) GetUserByID(_ context.Context, id string) (*repository.User, error) {
	return m.users[id], nil
}

func (m *mockStore) GetUserByLogin(_ context.Context, _ string) (*repository.User, error) {
	return nil, nil
}

func (m *mockStore) GetUserByEmail(_ context.Context, _ string) (*repository.User, error) {
	return nil, nil
}

func (m *mockStore) UpdatePasswordHash(_ context.Context, _, _ string) error { return nil }

func (m *mockStore) CreateActiveSession(_ context.Context, _ repository.CreateActiveSessionInput) (*repository.ActiveSession, error) {
	return nil, nil
}

func (m *mockStore) GetActiveSession(_ context.Context, _ string) (*repository.ActiveSession, error) {
	return nil, nil
}

func (m *mockStore) UpdateActiveBreak(_ context.Context, _ repository.UpdateActiveBreakInput) error {
	return nil
}

func (m *mockStore) CloseActiveSession(_ context.Context, _ repository.CloseActiveSessionInput) (*repository.Session, error) {
	return nil, nil
}

func (m *mockStore) CreateSession(_ context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	m.nextID++
	s := &repository.Session{
		ID:         fmt.Sprintf("session-%d", m.nextID),
		UserID:     input.UserID,
		ClockIn:    input.ClockIn,
		ClockOut:   input.ClockOut,
		DurationMS: input.DurationMS,
	}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *mockStore) GetSession(_ context.Context, userID, id string) (*repository.Session, error) {
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (m *mockStore) ListSessions(_ context.Context, _ repository.SessionFilter) ([]repository.Session, error) {
	return nil, nil
}

func (m *mockStore) UpdateSession(_ context.Context, input repository.UpdateSessionInput) (*repository.Session, error) {
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

func (m *mockStore) DeleteSession(_ context.Context, _, _ string) error { return nil }

func (m *mockStore) CreateLink(_ context.Context, adminID, employeeID string) (*repository.EmployeeLink, error) {
	if m.links[adminID] == nil {
		m.links[adminID] = make(map[string]bool)
	}
	m.links[adminID][employeeID] = true
	return &repository.EmployeeLink{AdminID: adminID, EmployeeID: employeeID}, nil
}

func (m *mockStore) DeleteLink(_ context.Context, _, _ string) error { return nil }

func (m *mockStore) LinkExists(_ context.Context, adminID, employeeID string) (bool, error) {
	return m.links[adminID][employeeID], nil
}

func (m *mockStore) ListEmployees(_ context.Context, adminID string) ([]repository.User, error) {
	var out []repository.User
	for employeeID := range m.links[adminID] {
		if u, ok := m.users[employeeID]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockStore) ListAdmins(_ context.Context, employeeID string) ([]repository.User, error) {
	var out []repository.User
	for adminID, employees := range m.links {
		if !employees[employeeID] {
			continue
		}
		if u, ok := m.users[adminID]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockStore) CreateChangeRequest(_ context.Context, input repository.CreateChangeRequestInput) (*repository.ChangeRequest, error) {
	m.nextID++
	r := &repository.ChangeRequest{
		ID:                fmt.Sprintf("request-%d", m.nextID),
		SenderID:          input.SenderID,
		RecipientID:       input.RecipientID,
		SessionID:         input.SessionID,
		RequestedClockIn:  input.RequestedClockIn,
		RequestedClockOut: input.RequestedClockOut,
		Message:           input.Message,
		Status:            repository.ChangeRequestPending,
	}
	m.requests[r.ID] = r
	copied := *r
	return &copied, nil
}

func (m *mockStore) GetChangeRequest(_ context.Context, id string) (*repository.ChangeRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (m *mockStore) ListChangeRequestsBySender(_ context.Context, senderID string, _ int) ([]repository.ChangeRequest, error) {
	var out []repository.ChangeRequest
	for _, r := range m.requests {
		if r.SenderID == senderID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockStore) ListChangeRequestsBySenders(_ context.Context, senderIDs []string, _ int) ([]repository.ChangeRequest, error) {
	wanted := make(map[string]bool, len(senderIDs))
	for _, id := range senderIDs {
		wanted[id] = true
	}
	var out []repository.ChangeRequest
	for _, r := range m.requests {
		if wanted[r.SenderID] {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockStore) ResolveChangeRequest(_ context.Context, input repository.ResolveChangeRequestInput) error {
	r, ok := m.requests[input.RequestID]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = input.Status
	r.ResponseMessage = input.ResponseMessage
	return nil
}

func (m *mockStore) CountPendingBySenders(_ context.Context, senderIDs []string) (int, error) {
	wanted := make(map[string]bool, len(senderIDs))
	for _, id := range senderIDs {
		wanted[id] = true
	}
	count := 0
	for _, r := range m.requests {
		if wanted[r.SenderID] && r.Status == repository.ChangeRequestPending {
			count++
		}
	}
	return count, nil
}

type mockMailer struct {
	sent []mailer.Message
}

func (m *mockMailer) Send(_ context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	store   *mockStore
	mail    *mockMailer
	svc     *Service
	session *repository.Session
}

// newFixture wires an admin linked to an employee who owns one session
// finished two hours ago.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMockStore()
	store.users["admin-1"] = &repository.User{ID: "admin-1", Username: "boss", Email: "boss@example.com", IsAdmin: true}
	store.users["emp-1"] = &repository.User{ID: "emp-1", Username: "worker", Email: "worker@example.com"}
	if _, err := store.CreateLink(context.Background(), "admin-1", "emp-1"); err != nil {
		t.Fatalf("link: %v", err)
	}

	now := time.Now()
	session, err := store.CreateSession(context.Background(), repository.CreateSessionInput{
		UserID:     "emp-1",
		ClockIn:    now.Add(-8 * time.Hour),
		ClockOut:   now.Add(-2 * time.Hour),
		DurationMS: (6 * time.Hour).Milliseconds(),
	})
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	mail := &mockMailer{}
	svc := NewService(store, clock.NewEngine(store), mail, "noreply@example.com")
	return &fixture{store: store, mail: mail, svc: svc, session: session}
}

func TestCreateRequiresOwnedSession(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	_, err := f.svc.Create(context.Background(), CreateInput{
		SenderID:          "someone-else",
		SessionID:         f.session.ID,
		RequestedClockIn:  now.Add(-7 * time.Hour),
		RequestedClockOut: now.Add(-time.Hour),
	})
	if !errors.Is(err, ErrSessionNotOwned) {
		t.Errorf("err = %v, want ErrSessionNotOwned", err)
	}
}

func TestCreateValidatesRequestedTimes(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	_, err := f.svc.Create(context.Background(), CreateInput{
		SenderID:          "emp-1",
		SessionID:         f.session.ID,
		RequestedClockIn:  now.Add(-time.Hour),
		RequestedClockOut: now.Add(-2 * time.Hour),
	})
	if !errors.Is(err, clock.ErrInvalidRange) {
		t.Errorf("err = %v, want clock.ErrInvalidRange", err)
	}
}

func TestCreateRejectsUnlinkedRecipient(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	stranger := "admin-2"

	_, err := f.svc.Create(context.Background(), CreateInput{
		SenderID:          "emp-1",
		RecipientID:       &stranger,
		SessionID:         f.session.ID,
		RequestedClockIn:  now.Add(-7 * time.Hour),
		RequestedClockOut: now.Add(-time.Hour),
	})
	if !errors.Is(err, ErrRecipientInvalid) {
		t.Errorf("err = %v, want ErrRecipientInvalid", err)
	}
}

func TestApproveAppliesRequestedTimes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	requestedIn := now.Add(-7 * time.Hour)
	requestedOut := now.Add(-time.Hour)
	request, err := f.svc.Create(ctx, CreateInput{
		SenderID:          "emp-1",
		SessionID:         f.session.ID,
		RequestedClockIn:  requestedIn,
		RequestedClockOut: requestedOut,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	resolved, err := f.svc.Resolve(ctx, "admin-1", request.ID, repository.ChangeRequestApproved, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status != repository.ChangeRequestApproved {
		t.Errorf("Status = %s, want approved", resolved.Status)
	}

	session := f.store.sessions[f.session.ID]
	if !session.ClockIn.Equal(requestedIn) || !session.ClockOut.Equal(requestedOut) {
		t.Errorf("session times not rewritten: %v - %v", session.ClockIn, session.ClockOut)
	}
	if want := (6 * time.Hour).Milliseconds(); session.DurationMS != want {
		t.Errorf("DurationMS = %d, want recomputed %d", session.DurationMS, want)
	}
	if len(f.mail.sent) != 1 {
		t.Errorf("sent %d notification mails, want 1", len(f.mail.sent))
	}
}

func TestRejectLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	request, err := f.svc.Create(ctx, CreateInput{
		SenderID:          "emp-1",
		SessionID:         f.session.ID,
		RequestedClockIn:  now.Add(-7 * time.Hour),
		RequestedClockOut: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	resolved, err := f.svc.Resolve(ctx, "admin-1", request.ID, repository.ChangeRequestRejected, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status != repository.ChangeRequestRejected {
		t.Errorf("Status = %s, want rejected", resolved.Status)
	}
	session := f.store.sessions[f.session.ID]
	if !session.ClockIn.Equal(f.session.ClockIn) {
		t.Error("rejected request changed the session")
	}
}

func TestResolveRequiresLinkToSender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	f.store.users["admin-2"] = &repository.User{ID: "admin-2", Username: "outsider", IsAdmin: true}

	request, err := f.svc.Create(ctx, CreateInput{
		SenderID:          "emp-1",
		SessionID:         f.session.ID,
		RequestedClockIn:  now.Add(-7 * time.Hour),
		RequestedClockOut: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Resolve(ctx, "admin-2", request.ID, repository.ChangeRequestApproved, nil); !errors.Is(err, ErrNotLinked) {
		t.Errorf("err = %v, want ErrNotLinked", err)
	}
}

func TestResolveTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	request, err := f.svc.Create(ctx, CreateInput{
		SenderID:          "emp-1",
		SessionID:         f.session.ID,
		RequestedClockIn:  now.Add(-7 * time.Hour),
		RequestedClockOut: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Resolve(ctx, "admin-1", request.ID, repository.ChangeRequestRejected, nil); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if _, err := f.svc.Resolve(ctx, "admin-1", request.ID, repository.ChangeRequestApproved, nil); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("second Resolve err = %v, want ErrAlreadyResolved", err)
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    repository.ChangeRequestStatus
		wantErr bool
	}{
		{"approved", repository.ChangeRequestApproved, false},
		{"rejected", repository.ChangeRequestRejected, false},
		{"denied", repository.ChangeRequestRejected, false},
		{"pending", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeStatus(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidStatus) {
				t.Errorf("NormalizeStatus(%q) err = %v, want ErrInvalidStatus", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("NormalizeStatus(%q) = %v, %v; want %v", tt.raw, got, err, tt.want)
		}
	}
}

func TestAdminsReturnsLinkedRecipients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.users["admin-2"] = &repository.User{ID: "admin-2", Username: "outsider", IsAdmin: true}

	admins, err := f.svc.Admins(ctx, "emp-1")
	if err != nil {
		t.Fatalf("Admins: %v", err)
	}
	if len(admins) != 1 || admins[0].ID != "admin-1" {
		t.Errorf("Admins = %+v, want just admin-1", admins)
	}

	admins, err = f.svc.Admins(ctx, "nobody")
	if err != nil {
		t.Fatalf("Admins: %v", err)
	}
	if len(admins) != 0 {
		t.Errorf("Admins for unlinked user = %+v, want none", admins)
	}
}

func TestPendingCountTracksLinkedSenders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	request, err := f.svc.Create(ctx, CreateInput{
		SenderID:          "emp-1",
		SessionID:         f.session.ID,
		RequestedClockIn:  now.Add(-7 * time.Hour),
		RequestedClockOut: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	count, err := f.svc.PendingCount(ctx, "admin-1")
	if err != nil {
		t.Fatalf("PendingCount: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	if _, err := f.svc.Resolve(ctx, "admin-1", request.ID, repository.ChangeRequestRejected, nil); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	count, err = f.svc.PendingCount(ctx, "admin-1")
	if err != nil {
		t.Fatalf("PendingCount: %v", err)
	}
	if count != 0 {
		t.Errorf("count after resolve = %d, want 0", count)
	}
}
