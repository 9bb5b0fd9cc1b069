package repository

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Settings holds per-user preferences. EmployeeCode is nil for admin
// accounts, which cannot be linked as employees.
type Settings struct {
	UserID       string
	HourlyRate   float64
	TextSize     string
	EmployeeCode *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Project struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

// ActiveSession is the single in-progress clock-in record for a user.
// The store keys it by UserID, so at most one can exist per user.
// BreakTimeMS accumulates closed break intervals; an open break is
// tracked by IsOnBreak/BreakStart and folded in when it closes.
type ActiveSession struct {
	UserID      string
	ClockIn     time.Time
	ProjectID   *string
	BreakTimeMS int64
	IsOnBreak   bool
	BreakStart  *time.Time
	CreatedAt   time.Time

	// ProjectName is populated on reads that join projects.
	ProjectName *string
}

// Session is an immutable completed work interval. DurationMS is the
// billable time: for live clock-outs it is wall time minus breaks, for
// manual entries it is simply clock-out minus clock-in.
type Session struct {
	ID         string
	UserID     string
	ClockIn    time.Time
	ClockOut   time.Time
	DurationMS int64
	ProjectID  *string
	Notes      *string
	CreatedAt  time.Time

	// ProjectName is populated on reads that join projects.
	ProjectName *string
}

type WeeklyReport struct {
	ID           string
	UserID       string
	WeekID       string
	WeekStart    time.Time
	WeekEnd      time.Time
	TotalMS      int64
	SessionCount int
	Earnings     float64
	GeneratedAt  time.Time
}

type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type ResetToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

type EmployeeLink struct {
	ID         string
	AdminID    string
	EmployeeID string
	CreatedAt  time.Time
}

type ChangeRequestStatus string

const (
	ChangeRequestPending  ChangeRequestStatus = "pending"
	ChangeRequestApproved ChangeRequestStatus = "approved"
	ChangeRequestRejected ChangeRequestStatus = "rejected"
)

// ChangeRequest is an employee's request to retroactively rewrite a
// completed session's clock-in/out times, resolved by a linked admin.
type ChangeRequest struct {
	ID                string
	SenderID          string
	RecipientID       *string
	SessionID         string
	RequestedClockIn  time.Time
	RequestedClockOut time.Time
	Message           *string
	Status            ChangeRequestStatus
	ResponseMessage   *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// SenderName is populated on reads that join users.
	SenderName string
}
