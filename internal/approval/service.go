package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oakmontlabs/timepunch/internal/clock"
	"github.com/oakmontlabs/timepunch/internal/mailer"
	"github.com/oakmontlabs/timepunch/internal/repository"
)

var (
	ErrRequestNotFound  = errors.New("change request not found")
	ErrSessionNotOwned  = errors.New("session does not belong to sender")
	ErrAlreadyResolved  = errors.New("change request already resolved")
	ErrNotLinked        = errors.New("sender is not a linked employee")
	ErrInvalidStatus    = errors.New("status must be approved or rejected")
	ErrRecipientInvalid = errors.New("recipient is not a linked admin")
)

const listLimit = 100

type Store interface {
	repository.SessionRepository
	repository.LinkRepository
	repository.ChangeRequestRepository
	repository.UserRepository
}

// Service runs the hour-change workflow: employees file requests to
// rewrite a completed session's times, linked admins approve or reject
// them, and an approval applies the rewrite through the clock engine so
// the same manual-entry validation holds.
type Service struct {
	store  Store
	engine *clock.Engine
	mail   mailer.Sender
	from   string
}

func NewService(store Store, engine *clock.Engine, mail mailer.Sender, fromAddr string) *Service {
	return &Service{store: store, engine: engine, mail: mail, from: fromAddr}
}

type CreateInput struct {
	SenderID          string
	RecipientID       *string
	SessionID         string
	RequestedClockIn  time.Time
	RequestedClockOut time.Time
	Message           *string
}

// Create files a change request against one of the sender's own
// sessions. The requested times are validated up front so an admin is
// never asked to approve something that could not be applied.
func (s *Service) Create(ctx context.Context, input CreateInput) (*repository.ChangeRequest, error) {
	session, err := s.store.GetSession(ctx, input.SenderID, input.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotOwned
	}
	if err := s.engine.ValidateManualTimes(input.RequestedClockIn, input.RequestedClockOut); err != nil {
		return nil, err
	}
	if input.RecipientID != nil {
		linked, err := s.store.LinkExists(ctx, *input.RecipientID, input.SenderID)
		if err != nil {
			return nil, err
		}
		if !linked {
			return nil, ErrRecipientInvalid
		}
	}
	return s.store.CreateChangeRequest(ctx, repository.CreateChangeRequestInput{
		SenderID:          input.SenderID,
		RecipientID:       input.RecipientID,
		SessionID:         input.SessionID,
		RequestedClockIn:  input.RequestedClockIn,
		RequestedClockOut: input.RequestedClockOut,
		Message:           input.Message,
	})
}

// Admins returns the admins linked to the sender, so a new request can
// name one of them as its recipient.
func (s *Service) Admins(ctx context.Context, senderID string) ([]repository.User, error) {
	return s.store.ListAdmins(ctx, senderID)
}

// ListMine returns the sender's own requests, newest first.
func (s *Service) ListMine(ctx context.Context, senderID string) ([]repository.ChangeRequest, error) {
	return s.store.ListChangeRequestsBySender(ctx, senderID, listLimit)
}

// ListForAdmin returns requests filed by any employee linked to the
// admin, newest first.
func (s *Service) ListForAdmin(ctx context.Context, adminID string) ([]repository.ChangeRequest, error) {
	senderIDs, err := s.linkedEmployeeIDs(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if len(senderIDs) == 0 {
		return []repository.ChangeRequest{}, nil
	}
	return s.store.ListChangeRequestsBySenders(ctx, senderIDs, listLimit)
}

// PendingCount returns how many unresolved requests the admin's linked
// employees have filed.
func (s *Service) PendingCount(ctx context.Context, adminID string) (int, error) {
	senderIDs, err := s.linkedEmployeeIDs(ctx, adminID)
	if err != nil {
		return 0, err
	}
	if len(senderIDs) == 0 {
		return 0, nil
	}
	return s.store.CountPendingBySenders(ctx, senderIDs)
}

// NormalizeStatus maps the wire status to the stored one. "denied" is
// accepted as a synonym for rejected.
func NormalizeStatus(raw string) (repository.ChangeRequestStatus, error) {
	switch raw {
	case "approved":
		return repository.ChangeRequestApproved, nil
	case "rejected", "denied":
		return repository.ChangeRequestRejected, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Resolve approves or rejects a pending request. The admin must be
// linked to the sender. Approval rewrites the session through the clock
// engine before the request is marked resolved, so a failed rewrite
// leaves the request pending.
func (s *Service) Resolve(ctx context.Context, adminID, requestID string, status repository.ChangeRequestStatus, responseMessage *string) (*repository.ChangeRequest, error) {
	if status != repository.ChangeRequestApproved && status != repository.ChangeRequestRejected {
		return nil, ErrInvalidStatus
	}
	request, err := s.store.GetChangeRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	if request.Status != repository.ChangeRequestPending {
		return nil, ErrAlreadyResolved
	}
	linked, err := s.store.LinkExists(ctx, adminID, request.SenderID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, ErrNotLinked
	}

	if status == repository.ChangeRequestApproved {
		clockIn := request.RequestedClockIn
		clockOut := request.RequestedClockOut
		_, err := s.engine.UpdateSession(ctx, clock.UpdateSessionInput{
			UserID:    request.SenderID,
			SessionID: request.SessionID,
			ClockIn:   &clockIn,
			ClockOut:  &clockOut,
		})
		if err != nil {
			return nil, err
		}
	}

	err = s.store.ResolveChangeRequest(ctx, repository.ResolveChangeRequestInput{
		RequestID:       requestID,
		Status:          status,
		ResponseMessage: responseMessage,
	})
	if err != nil {
		return nil, err
	}
	s.notifySender(ctx, request, status)
	return s.store.GetChangeRequest(ctx, requestID)
}

func (s *Service) notifySender(ctx context.Context, request *repository.ChangeRequest, status repository.ChangeRequestStatus) {
	sender, err := s.store.GetUserByID(ctx, request.SenderID)
	if err != nil || sender == nil {
		return
	}
	err = s.mail.Send(ctx, mailer.Message{
		To:      sender.Email,
		From:    s.from,
		Subject: fmt.Sprintf("Your hour change request was %s", status),
		Body: fmt.Sprintf(
			"Your request to change the session times to %s - %s was %s.",
			request.RequestedClockIn.Format("2006-01-02 15:04"),
			request.RequestedClockOut.Format("2006-01-02 15:04"),
			status,
		),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to send change request notification", "error", err)
	}
}

func (s *Service) linkedEmployeeIDs(ctx context.Context, adminID string) ([]string, error) {
	employees, err := s.store.ListEmployees(ctx, adminID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, e.ID)
	}
	return ids, nil
}
