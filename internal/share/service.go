package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/oakmontlabs/timepunch/internal/mailer"
	"github.com/oakmontlabs/timepunch/internal/reports"
	"github.com/oakmontlabs/timepunch/internal/repository"
)

var ErrInvalidEmail = errors.New("recipient email is invalid")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Store is the slice of the repository the share service reads from.
type Store interface {
	repository.UserRepository
	repository.SessionRepository
}

// Service mails a user's daily or weekly summary to an arbitrary
// recipient. Aggregates come from the reports service; this package
// only composes the message and hands it to the mailer.
type Service struct {
	store   Store
	reports *reports.Service
	mail    mailer.Sender
	from    string
}

func NewService(store Store, rep *reports.Service, mail mailer.Sender, fromAddr string) *Service {
	return &Service{store: store, reports: rep, mail: mail, from: fromAddr}
}

// Preview is a composed report mail that has not been addressed yet.
type Preview struct {
	Subject string
	Body    string
}

// SendDaily mails the day summary for the day containing ref.
func (s *Service) SendDaily(ctx context.Context, userID, email string, ref time.Time) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	p, err := s.PreviewDaily(ctx, userID, ref)
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, mailer.Message{To: email, From: s.from, Subject: p.Subject, Body: p.Body}); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}
	slog.InfoContext(ctx, "daily report shared", "user_id", userID)
	return nil
}

// SendWeekly mails the week summary for the week containing ref.
func (s *Service) SendWeekly(ctx context.Context, userID, email string, ref time.Time) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	p, err := s.PreviewWeekly(ctx, userID, ref)
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, mailer.Message{To: email, From: s.from, Subject: p.Subject, Body: p.Body}); err != nil {
		return fmt.Errorf("send weekly report: %w", err)
	}
	slog.InfoContext(ctx, "weekly report shared", "user_id", userID)
	return nil
}

// PreviewDaily composes the daily mail without sending it.
func (s *Service) PreviewDaily(ctx context.Context, userID string, ref time.Time) (*Preview, error) {
	report, err := s.reports.Daily(ctx, userID, ref)
	if err != nil {
		return nil, err
	}
	w := reports.DayWindow(ref)
	sessions, err := s.sessionsIn(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	username, err := s.username(ctx, userID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Daily time report for %s - %s\n\n", username, w.Start.Format("Monday, January 2, 2006"))
	fmt.Fprintf(&b, "Sessions: %d\n", report.SessionCount)
	fmt.Fprintf(&b, "Total: %s\n", fmtDuration(report.TotalMS))
	fmt.Fprintf(&b, "Earnings: %.2f\n", report.Earnings)
	if len(sessions) > 0 {
		b.WriteString("\n")
		writeSessionLines(&b, sessions)
	}

	return &Preview{
		Subject: fmt.Sprintf("Daily Time Report - %s", w.Start.Format("January 2, 2006")),
		Body:    b.String(),
	}, nil
}

// PreviewWeekly composes the weekly mail without sending it.
func (s *Service) PreviewWeekly(ctx context.Context, userID string, ref time.Time) (*Preview, error) {
	report, err := s.reports.Weekly(ctx, userID, ref)
	if err != nil {
		return nil, err
	}
	w := reports.WeekWindow(ref)
	breakdown, err := s.reports.ProjectBreakdown(ctx, userID, &w.Start, &w.End)
	if err != nil {
		return nil, err
	}
	username, err := s.username(ctx, userID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly time report for %s - %s to %s\n\n",
		username,
		report.WeekStart.Format("January 2"),
		report.WeekEnd.Format("January 2, 2006"))
	fmt.Fprintf(&b, "Sessions: %d\n", report.SessionCount)
	fmt.Fprintf(&b, "Total: %s\n", fmtDuration(report.TotalMS))
	fmt.Fprintf(&b, "Earnings: %.2f\n", report.Earnings)

	b.WriteString("\nBy day:\n")
	for i, ms := range report.DailyMS {
		fmt.Fprintf(&b, "  %-9s %s\n", time.Weekday(i).String(), fmtDuration(ms))
	}

	b.WriteString("\nBy project:\n")
	for _, p := range breakdown.Projects {
		if p.SessionCount == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s: %s (%d sessions)\n", p.Name, fmtDuration(p.TotalMS), p.SessionCount)
	}
	if breakdown.NoProject.SessionCount > 0 {
		np := breakdown.NoProject
		fmt.Fprintf(&b, "  %s: %s (%d sessions)\n", np.Name, fmtDuration(np.TotalMS), np.SessionCount)
	}

	return &Preview{
		Subject: fmt.Sprintf("Weekly Time Report - Week of %s", report.WeekStart.Format("January 2, 2006")),
		Body:    b.String(),
	}, nil
}

func (s *Service) sessionsIn(ctx context.Context, userID string, w reports.Window) ([]repository.Session, error) {
	sessions, err := s.store.ListSessions(ctx, repository.SessionFilter{
		UserID: userID,
		From:   &w.Start,
		To:     &w.End,
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ClockIn.Before(sessions[j].ClockIn)
	})
	return sessions, nil
}

func (s *Service) username(ctx context.Context, userID string) (string, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "Unknown", nil
	}
	return user.Username, nil
}

func writeSessionLines(b *strings.Builder, sessions []repository.Session) {
	for _, sess := range sessions {
		name := "No Project"
		if sess.ProjectName != nil {
			name = *sess.ProjectName
		}
		fmt.Fprintf(b, "  %s - %s  %s  %s\n",
			sess.ClockIn.Format("15:04"),
			sess.ClockOut.Format("15:04"),
			fmtDuration(sess.DurationMS),
			name)
	}
}

func fmtDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
}
