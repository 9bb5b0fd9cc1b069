package admin

import (
	"context"
	"errors"
	"time"

	"github.com/oakmontlabs/timepunch/internal/reports"
	"github.com/oakmontlabs/timepunch/internal/repository"
)

var (
	ErrNotAdmin         = errors.New("user is not an admin")
	ErrNotLinked        = errors.New("employee is not linked to this admin")
	ErrUnknownCode      = errors.New("no employee matches that code")
	ErrCannotLinkAdmin  = errors.New("admin accounts cannot be supervised")
	ErrAlreadyLinked    = errors.New("employee already linked")
	ErrCannotLinkSelf   = errors.New("cannot link your own account")
	ErrEmployeeNotFound = errors.New("employee not found")
)

type Store interface {
	repository.UserRepository
	repository.SettingsRepository
	repository.ActiveSessionRepository
	repository.SessionRepository
	repository.LinkRepository
}

// Service implements admin supervision: linking employees by code and
// reading a linked employee's clock state and reports.
type Service struct {
	store   Store
	reports *reports.Service
}

func NewService(store Store, rep *reports.Service) *Service {
	return &Service{store: store, reports: rep}
}

// Employee is a supervised user together with their live clock state.
type Employee struct {
	repository.User
	Active *repository.ActiveSession `json:"active"`
}

func (s *Service) requireAdmin(ctx context.Context, adminID string) (*repository.User, error) {
	user, err := s.store.GetUserByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsAdmin {
		return nil, ErrNotAdmin
	}
	return user, nil
}

func (s *Service) requireLink(ctx context.Context, adminID, employeeID string) error {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	linked, err := s.store.LinkExists(ctx, adminID, employeeID)
	if err != nil {
		return err
	}
	if !linked {
		return ErrNotLinked
	}
	return nil
}

// LinkByCode attaches the employee holding the given code to the admin.
func (s *Service) LinkByCode(ctx context.Context, adminID, code string) (*repository.User, error) {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	settings, err := s.store.GetSettingsByEmployeeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, ErrUnknownCode
	}
	employee, err := s.store.GetUserByID(ctx, settings.UserID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, ErrUnknownCode
	}
	if employee.ID == adminID {
		return nil, ErrCannotLinkSelf
	}
	if employee.IsAdmin {
		return nil, ErrCannotLinkAdmin
	}
	if _, err := s.store.CreateLink(ctx, adminID, employee.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyLinked
		}
		return nil, err
	}
	return employee, nil
}

// Unlink detaches an employee from the admin. Unknown pairs are not an
// error; the end state is the same.
func (s *Service) Unlink(ctx context.Context, adminID, employeeID string) error {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	err := s.store.DeleteLink(ctx, adminID, employeeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// ListEmployees returns the admin's linked employees with their live
// clock state attached.
func (s *Service) ListEmployees(ctx context.Context, adminID string) ([]Employee, error) {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	users, err := s.store.ListEmployees(ctx, adminID)
	if err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(users))
	for _, u := range users {
		active, err := s.store.GetActiveSession(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Employee{User: u, Active: active})
	}
	return out, nil
}

// EmployeeActive returns the linked employee's active session, nil when
// clocked out.
func (s *Service) EmployeeActive(ctx context.Context, adminID, employeeID string) (*repository.ActiveSession, error) {
	if err := s.requireLink(ctx, adminID, employeeID); err != nil {
		return nil, err
	}
	return s.store.GetActiveSession(ctx, employeeID)
}

func (s *Service) EmployeeSessions(ctx context.Context, adminID string, f repository.SessionFilter) ([]repository.Session, error) {
	if err := s.requireLink(ctx, adminID, f.UserID); err != nil {
		return nil, err
	}
	return s.store.ListSessions(ctx, f)
}

func (s *Service) EmployeeToday(ctx context.Context, adminID, employeeID string) (*reports.DayReport, error) {
	if err := s.requireLink(ctx, adminID, employeeID); err != nil {
		return nil, err
	}
	return s.reports.Today(ctx, employeeID)
}

func (s *Service) EmployeeWeekly(ctx context.Context, adminID, employeeID string, ref time.Time) (*reports.WeekReport, error) {
	if err := s.requireLink(ctx, adminID, employeeID); err != nil {
		return nil, err
	}
	return s.reports.Weekly(ctx, employeeID, ref)
}

func (s *Service) EmployeeProjectBreakdown(ctx context.Context, adminID, employeeID string, from, to *time.Time) (*reports.ProjectBreakdown, error) {
	if err := s.requireLink(ctx, adminID, employeeID); err != nil {
		return nil, err
	}
	return s.reports.ProjectBreakdown(ctx, employeeID, from, to)
}
