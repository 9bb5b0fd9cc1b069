package repository

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint (one active session per user, one project name per user,
// one weekly report per user and week, linked admin/employee pairs).
var ErrDuplicate = errors.New("duplicate row")

// ErrNotFound is returned by conditional updates and deletes that
// matched zero rows. Lookups signal a miss with a nil result instead.
var ErrNotFound = errors.New("row not found")

type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
}

type UserRepository interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByLogin(ctx context.Context, usernameOrEmail string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

type SettingsRepository interface {
	GetSettings(ctx context.Context, userID string) (*Settings, error)
	CreateSettings(ctx context.Context, s Settings) (*Settings, error)
	UpdateSettings(ctx context.Context, userID string, hourlyRate *float64, textSize *string) (*Settings, error)
	GetSettingsByEmployeeCode(ctx context.Context, code string) (*Settings, error)
	ListSettingsMissingEmployeeCode(ctx context.Context) ([]Settings, error)
	SetEmployeeCode(ctx context.Context, userID, code string) error
}

type CreateProjectInput struct {
	UserID string
	Name   string
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, input CreateProjectInput) (*Project, error)
	GetProject(ctx context.Context, userID, id string) (*Project, error)
	ListProjects(ctx context.Context, userID string) ([]Project, error)
	RenameProject(ctx context.Context, userID, id, name string) (*Project, error)
	// DeleteProject nulls project references on sessions; it never
	// cascades into session rows.
	DeleteProject(ctx context.Context, userID, id string) error
}

type CreateActiveSessionInput struct {
	UserID    string
	ClockIn   time.Time
	ProjectID *string
}

type UpdateActiveBreakInput struct {
	UserID      string
	IsOnBreak   bool
	BreakStart  *time.Time
	BreakTimeMS int64
}

// CloseActiveSessionInput carries the values the clock engine computed
// from the active row it read. The store must delete the active row and
// insert the completed session in one transaction.
type CloseActiveSessionInput struct {
	UserID     string
	ClockIn    time.Time
	ClockOut   time.Time
	DurationMS int64
	ProjectID  *string
	Notes      *string
}

type ActiveSessionRepository interface {
	// CreateActiveSession is the atomic clock-in gate: it returns
	// ErrDuplicate when an active session already exists for the user.
	// Callers must not SELECT-then-insert around it.
	CreateActiveSession(ctx context.Context, input CreateActiveSessionInput) (*ActiveSession, error)
	GetActiveSession(ctx context.Context, userID string) (*ActiveSession, error)
	// UpdateActiveBreak returns ErrNotFound when no active session
	// exists for the user.
	UpdateActiveBreak(ctx context.Context, input UpdateActiveBreakInput) error
	// CloseActiveSession atomically replaces the active row with a
	// completed session. It returns ErrNotFound when the active row is
	// already gone (e.g. a concurrent clock-out won).
	CloseActiveSession(ctx context.Context, input CloseActiveSessionInput) (*Session, error)
}

type CreateSessionInput struct {
	UserID     string
	ClockIn    time.Time
	ClockOut   time.Time
	DurationMS int64
	ProjectID  *string
	Notes      *string
}

type UpdateSessionInput struct {
	UserID     string
	SessionID  string
	ClockIn    time.Time
	ClockOut   time.Time
	DurationMS int64
	ProjectID  *string
	Notes      *string
}

type SessionFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type SessionRepository interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	GetSession(ctx context.Context, userID, id string) (*Session, error)
	ListSessions(ctx context.Context, f SessionFilter) ([]Session, error)
	UpdateSession(ctx context.Context, input UpdateSessionInput) (*Session, error)
	DeleteSession(ctx context.Context, userID, id string) error
}

type CreateWeeklyReportInput struct {
	UserID       string
	WeekID       string
	WeekStart    time.Time
	WeekEnd      time.Time
	TotalMS      int64
	SessionCount int
	Earnings     float64
}

type ReportRepository interface {
	GetWeeklyReport(ctx context.Context, userID, weekID string) (*WeeklyReport, error)
	// CreateWeeklyReport returns ErrDuplicate when a report already
	// exists for (userID, weekID).
	CreateWeeklyReport(ctx context.Context, input CreateWeeklyReportInput) (*WeeklyReport, error)
	ListWeeklyReports(ctx context.Context, userID string, limit int) ([]WeeklyReport, error)
}

type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	// GetRefreshToken returns nil for unknown or expired tokens.
	GetRefreshToken(ctx context.Context, token string, now time.Time) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)

	CreateResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	// ConsumeResetToken marks an unused, unexpired token as used and
	// returns it; nil when no such token exists.
	ConsumeResetToken(ctx context.Context, token string, now time.Time) (*ResetToken, error)
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type LinkRepository interface {
	// CreateLink returns ErrDuplicate when the admin/employee pair is
	// already linked.
	CreateLink(ctx context.Context, adminID, employeeID string) (*EmployeeLink, error)
	DeleteLink(ctx context.Context, adminID, employeeID string) error
	LinkExists(ctx context.Context, adminID, employeeID string) (bool, error)
	ListEmployees(ctx context.Context, adminID string) ([]User, error)
	ListAdmins(ctx context.Context, employeeID string) ([]User, error)
}

type CreateChangeRequestInput struct {
	SenderID          string
	RecipientID       *string
	SessionID         string
	RequestedClockIn  time.Time
	RequestedClockOut time.Time
	Message           *string
}

type ResolveChangeRequestInput struct {
	RequestID       string
	Status          ChangeRequestStatus
	ResponseMessage *string
}

type ChangeRequestRepository interface {
	CreateChangeRequest(ctx context.Context, input CreateChangeRequestInput) (*ChangeRequest, error)
	GetChangeRequest(ctx context.Context, id string) (*ChangeRequest, error)
	ListChangeRequestsBySender(ctx context.Context, senderID string, limit int) ([]ChangeRequest, error)
	ListChangeRequestsBySenders(ctx context.Context, senderIDs []string, limit int) ([]ChangeRequest, error)
	ResolveChangeRequest(ctx context.Context, input ResolveChangeRequestInput) error
	CountPendingBySenders(ctx context.Context, senderIDs []string) (int, error)
}

type Repository interface {
	UserRepository
	SettingsRepository
	ProjectRepository
	ActiveSessionRepository
	SessionRepository
	ReportRepository
	TokenRepository
	LinkRepository
	ChangeRequestRepository
}
