package reports

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/oakmontlabs/timepunch/internal/repository"
)

const (
	msPerHour     = 3_600_000
	pastWeekLimit = 12
)

// Store is the slice of the repository the reports service reads from.
type Store interface {
	repository.SessionRepository
	repository.SettingsRepository
	repository.ProjectRepository
	repository.ReportRepository
}

// Service aggregates a user's completed sessions over calendar
// windows. Only completed sessions count; a running active session
// never contributes to totals or earnings.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

type DayReport struct {
	Date         time.Time
	SessionCount int
	TotalMS      int64
	Earnings     float64
}

type WeekReport struct {
	WeekStart    time.Time
	WeekEnd      time.Time
	SessionCount int
	TotalMS      int64
	Earnings     float64
	// DailyMS buckets session durations by clock-in weekday,
	// index 0 = Sunday.
	DailyMS [7]int64
}

type MonthReport struct {
	MonthStart   time.Time
	MonthEnd     time.Time
	SessionCount int
	TotalMS      int64
	Earnings     float64
}

type ProjectTotal struct {
	ProjectID    *string
	Name         string
	TotalMS      int64
	SessionCount int
}

type ProjectBreakdown struct {
	Projects  []ProjectTotal
	NoProject ProjectTotal
}

func (s *Service) Today(ctx context.Context, userID string) (*DayReport, error) {
	return s.Daily(ctx, userID, s.now())
}

// Daily reports the calendar day containing ref.
func (s *Service) Daily(ctx context.Context, userID string, ref time.Time) (*DayReport, error) {
	w := DayWindow(ref)
	sessions, err := s.sessionsIn(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	rate, err := s.hourlyRate(ctx, userID)
	if err != nil {
		return nil, err
	}
	total := sumDurations(sessions)
	return &DayReport{
		Date:         w.Start,
		SessionCount: len(sessions),
		TotalMS:      total,
		Earnings:     earnings(total, rate),
	}, nil
}

func (s *Service) Weekly(ctx context.Context, userID string, ref time.Time) (*WeekReport, error) {
	w := WeekWindow(ref)
	sessions, err := s.sessionsIn(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	rate, err := s.hourlyRate(ctx, userID)
	if err != nil {
		return nil, err
	}
	total := sumDurations(sessions)
	return &WeekReport{
		WeekStart:    w.Start,
		WeekEnd:      w.End,
		SessionCount: len(sessions),
		TotalMS:      total,
		Earnings:     earnings(total, rate),
		DailyMS:      dailyBuckets(sessions),
	}, nil
}

func (s *Service) Monthly(ctx context.Context, userID string, ref time.Time) (*MonthReport, error) {
	w := MonthWindow(ref)
	sessions, err := s.sessionsIn(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	rate, err := s.hourlyRate(ctx, userID)
	if err != nil {
		return nil, err
	}
	total := sumDurations(sessions)
	return &MonthReport{
		MonthStart:   w.Start,
		MonthEnd:     w.End,
		SessionCount: len(sessions),
		TotalMS:      total,
		Earnings:     earnings(total, rate),
	}, nil
}

// ProjectBreakdown groups the user's sessions by project, descending by
// total duration. Every project appears even with no sessions in range;
// sessions without a project land in the separate NoProject bucket.
func (s *Service) ProjectBreakdown(ctx context.Context, userID string, from, to *time.Time) (*ProjectBreakdown, error) {
	sessions, err := s.store.ListSessions(ctx, repository.SessionFilter{UserID: userID, From: from, To: to})
	if err != nil {
		return nil, err
	}
	projects, err := s.store.ListProjects(ctx, userID)
	if err != nil {
		return nil, err
	}

	byProject := make(map[string]*ProjectTotal, len(projects))
	totals := make([]ProjectTotal, len(projects))
	for i, p := range projects {
		id := p.ID
		totals[i] = ProjectTotal{ProjectID: &id, Name: p.Name}
		byProject[p.ID] = &totals[i]
	}

	var noProject ProjectTotal
	noProject.Name = "No Project"
	for _, sess := range sessions {
		if sess.ProjectID == nil {
			noProject.TotalMS += sess.DurationMS
			noProject.SessionCount++
			continue
		}
		if t, ok := byProject[*sess.ProjectID]; ok {
			t.TotalMS += sess.DurationMS
			t.SessionCount++
		}
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].TotalMS > totals[j].TotalMS
	})
	return &ProjectBreakdown{Projects: totals, NoProject: noProject}, nil
}

func (s *Service) PastWeeks(ctx context.Context, userID string) ([]repository.WeeklyReport, error) {
	return s.store.ListWeeklyReports(ctx, userID, pastWeekLimit)
}

// GenerateWeekly computes and persists the snapshot for the week
// containing ref, at most once per (user, week). A snapshot that
// already exists is returned untouched, so repeated calls are
// idempotent even when they race: the unique index decides the winner
// and the loser re-reads.
func (s *Service) GenerateWeekly(ctx context.Context, userID string, ref time.Time) (*repository.WeeklyReport, error) {
	w := WeekWindow(ref)
	weekID := WeekID(ref)

	existing, err := s.store.GetWeeklyReport(ctx, userID, weekID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	sessions, err := s.sessionsIn(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	rate, err := s.hourlyRate(ctx, userID)
	if err != nil {
		return nil, err
	}
	total := sumDurations(sessions)

	report, err := s.store.CreateWeeklyReport(ctx, repository.CreateWeeklyReportInput{
		UserID:       userID,
		WeekID:       weekID,
		WeekStart:    w.Start,
		WeekEnd:      w.End,
		TotalMS:      total,
		SessionCount: len(sessions),
		Earnings:     earnings(total, rate),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.store.GetWeeklyReport(ctx, userID, weekID)
		}
		return nil, err
	}
	slog.Info("weekly report generated", "user_id", userID, "week_id", weekID, "total_ms", total)
	return report, nil
}

func (s *Service) sessionsIn(ctx context.Context, userID string, w Window) ([]repository.Session, error) {
	return s.store.ListSessions(ctx, repository.SessionFilter{
		UserID: userID,
		From:   &w.Start,
		To:     &w.End,
	})
}

func (s *Service) hourlyRate(ctx context.Context, userID string) (float64, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return 0, err
	}
	if settings == nil {
		return 0, nil
	}
	return settings.HourlyRate, nil
}

func sumDurations(sessions []repository.Session) int64 {
	var total int64
	for _, s := range sessions {
		total += s.DurationMS
	}
	return total
}

// dailyBuckets sums durations per clock-in weekday. A session spanning
// midnight counts entirely against the day it started.
func dailyBuckets(sessions []repository.Session) [7]int64 {
	var buckets [7]int64
	for _, s := range sessions {
		buckets[weekdayIndex(s.ClockIn)] += s.DurationMS
	}
	return buckets
}

// earnings converts billable milliseconds into money at an hourly
// rate. No rounding happens here; presentation decides that.
func earnings(totalMS int64, hourlyRate float64) float64 {
	return float64(totalMS) / msPerHour * hourlyRate
}
