package httpapi

import (
	"time"

	"github.com/oakmontlabs/timepunch/internal/admin"
	"github.com/oakmontlabs/timepunch/internal/reports"
	"github.com/oakmontlabs/timepunch/internal/repository"
	"github.com/oakmontlabs/timepunch/internal/share"
)

// View types shape domain models for the wire. Times are RFC 3339,
// durations are integer milliseconds.

type userView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserView(u *repository.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

type tokenView struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type authView struct {
	User   userView  `json:"user"`
	Tokens tokenView `json:"tokens"`
}

type settingsView struct {
	HourlyRate   float64 `json:"hourlyRate"`
	TextSize     string  `json:"textSize"`
	EmployeeCode *string `json:"employeeCode"`
}

func toSettingsView(s *repository.Settings) settingsView {
	return settingsView{
		HourlyRate:   s.HourlyRate,
		TextSize:     s.TextSize,
		EmployeeCode: s.EmployeeCode,
	}
}

type projectView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toProjectView(p *repository.Project) projectView {
	return projectView{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}

func toProjectViews(ps []repository.Project) []projectView {
	out := make([]projectView, 0, len(ps))
	for i := range ps {
		out = append(out, toProjectView(&ps[i]))
	}
	return out
}

type activeSessionView struct {
	ClockIn     time.Time  `json:"clockIn"`
	ProjectID   *string    `json:"projectId"`
	ProjectName *string    `json:"projectName"`
	BreakTimeMS int64      `json:"breakTimeMs"`
	IsOnBreak   bool       `json:"isOnBreak"`
	BreakStart  *time.Time `json:"breakStart"`
}

func toActiveSessionView(a *repository.ActiveSession) *activeSessionView {
	if a == nil {
		return nil
	}
	return &activeSessionView{
		ClockIn:     a.ClockIn,
		ProjectID:   a.ProjectID,
		ProjectName: a.ProjectName,
		BreakTimeMS: a.BreakTimeMS,
		IsOnBreak:   a.IsOnBreak,
		BreakStart:  a.BreakStart,
	}
}

type sessionView struct {
	ID          string    `json:"id"`
	ClockIn     time.Time `json:"clockIn"`
	ClockOut    time.Time `json:"clockOut"`
	DurationMS  int64     `json:"durationMs"`
	ProjectID   *string   `json:"projectId"`
	ProjectName *string   `json:"projectName"`
	Notes       *string   `json:"notes"`
}

func toSessionView(s *repository.Session) sessionView {
	return sessionView{
		ID:          s.ID,
		ClockIn:     s.ClockIn,
		ClockOut:    s.ClockOut,
		DurationMS:  s.DurationMS,
		ProjectID:   s.ProjectID,
		ProjectName: s.ProjectName,
		Notes:       s.Notes,
	}
}

func toSessionViews(ss []repository.Session) []sessionView {
	out := make([]sessionView, 0, len(ss))
	for i := range ss {
		out = append(out, toSessionView(&ss[i]))
	}
	return out
}

type breakView struct {
	IsOnBreak   bool       `json:"isOnBreak"`
	BreakStart  *time.Time `json:"breakStart"`
	BreakTimeMS int64      `json:"breakTimeMs"`
}

type dayReportView struct {
	Date         time.Time `json:"date"`
	TotalMS      int64     `json:"totalMs"`
	SessionCount int       `json:"sessionCount"`
	Earnings     float64   `json:"earnings"`
}

func toDayReportView(d *reports.DayReport) dayReportView {
	return dayReportView{
		Date:         d.Date,
		TotalMS:      d.TotalMS,
		SessionCount: d.SessionCount,
		Earnings:     d.Earnings,
	}
}

type weekReportView struct {
	WeekID       string    `json:"weekId"`
	WeekStart    time.Time `json:"weekStart"`
	WeekEnd      time.Time `json:"weekEnd"`
	TotalMS      int64     `json:"totalMs"`
	SessionCount int       `json:"sessionCount"`
	Earnings     float64   `json:"earnings"`
	DailyMS      [7]int64  `json:"dailyMs"`
}

func toWeekReportView(w *reports.WeekReport) weekReportView {
	return weekReportView{
		WeekID:       reports.WeekID(w.WeekStart),
		WeekStart:    w.WeekStart,
		WeekEnd:      w.WeekEnd,
		TotalMS:      w.TotalMS,
		SessionCount: w.SessionCount,
		Earnings:     w.Earnings,
		DailyMS:      w.DailyMS,
	}
}

type monthReportView struct {
	MonthStart   time.Time `json:"monthStart"`
	MonthEnd     time.Time `json:"monthEnd"`
	TotalMS      int64     `json:"totalMs"`
	SessionCount int       `json:"sessionCount"`
	Earnings     float64   `json:"earnings"`
}

func toMonthReportView(m *reports.MonthReport) monthReportView {
	return monthReportView{
		MonthStart:   m.MonthStart,
		MonthEnd:     m.MonthEnd,
		TotalMS:      m.TotalMS,
		SessionCount: m.SessionCount,
		Earnings:     m.Earnings,
	}
}

type projectTotalView struct {
	ProjectID    *string `json:"projectId"`
	ProjectName  string  `json:"projectName"`
	TotalMS      int64   `json:"totalMs"`
	SessionCount int     `json:"sessionCount"`
}

type projectBreakdownView struct {
	Projects  []projectTotalView `json:"projects"`
	NoProject projectTotalView   `json:"noProject"`
}

func toProjectBreakdownView(b *reports.ProjectBreakdown) projectBreakdownView {
	out := projectBreakdownView{
		Projects: make([]projectTotalView, 0, len(b.Projects)),
		NoProject: projectTotalView{
			ProjectName:  b.NoProject.Name,
			TotalMS:      b.NoProject.TotalMS,
			SessionCount: b.NoProject.SessionCount,
		},
	}
	for _, p := range b.Projects {
		out.Projects = append(out.Projects, projectTotalView{
			ProjectID:    p.ProjectID,
			ProjectName:  p.Name,
			TotalMS:      p.TotalMS,
			SessionCount: p.SessionCount,
		})
	}
	return out
}

type weeklyReportRowView struct {
	WeekID       string    `json:"weekId"`
	WeekStart    time.Time `json:"weekStart"`
	WeekEnd      time.Time `json:"weekEnd"`
	TotalMS      int64     `json:"totalMs"`
	SessionCount int       `json:"sessionCount"`
	Earnings     float64   `json:"earnings"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

func toWeeklyReportRowView(r *repository.WeeklyReport) weeklyReportRowView {
	return weeklyReportRowView{
		WeekID:       r.WeekID,
		WeekStart:    r.WeekStart,
		WeekEnd:      r.WeekEnd,
		TotalMS:      r.TotalMS,
		SessionCount: r.SessionCount,
		Earnings:     r.Earnings,
		GeneratedAt:  r.GeneratedAt,
	}
}

type employeeView struct {
	ID       string             `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
	Active   *activeSessionView `json:"active"`
}

func toEmployeeView(e *admin.Employee) employeeView {
	return employeeView{
		ID:       e.ID,
		Username: e.Username,
		Email:    e.Email,
		Active:   toActiveSessionView(e.Active),
	}
}

type changeRequestView struct {
	ID                string    `json:"id"`
	SenderID          string    `json:"senderId"`
	SenderName        string    `json:"senderName,omitempty"`
	SessionID         string    `json:"sessionId"`
	RequestedClockIn  time.Time `json:"requestedClockIn"`
	RequestedClockOut time.Time `json:"requestedClockOut"`
	Message           *string   `json:"message"`
	Status            string    `json:"status"`
	ResponseMessage   *string   `json:"responseMessage"`
	CreatedAt         time.Time `json:"createdAt"`
}

func toChangeRequestView(c *repository.ChangeRequest) changeRequestView {
	return changeRequestView{
		ID:                c.ID,
		SenderID:          c.SenderID,
		SenderName:        c.SenderName,
		SessionID:         c.SessionID,
		RequestedClockIn:  c.RequestedClockIn,
		RequestedClockOut: c.RequestedClockOut,
		Message:           c.Message,
		Status:            string(c.Status),
		ResponseMessage:   c.ResponseMessage,
		CreatedAt:         c.CreatedAt,
	}
}

func toChangeRequestViews(cs []repository.ChangeRequest) []changeRequestView {
	out := make([]changeRequestView, 0, len(cs))
	for i := range cs {
		out = append(out, toChangeRequestView(&cs[i]))
	}
	return out
}

type previewView struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func toPreviewView(p *share.Preview) previewView {
	return previewView{Subject: p.Subject, Body: p.Body}
}
