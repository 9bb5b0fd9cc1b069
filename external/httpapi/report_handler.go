package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oakmontlabs/timepunch/internal/reports"
)

type reportHandler struct {
	reports *reports.Service
	now     func() time.Time
}

func (h *reportHandler) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/today", h.today)
	r.Get("/weekly", h.weekly)
	r.Get("/monthly", h.monthly)
	r.Get("/projects", h.projects)
	r.Get("/weeks", h.pastWeeks)
	r.Post("/weeks/generate", h.generateWeekly)
	return r
}

// refTime returns the "date" query parameter, defaulting to the
// handler's clock, so a client can ask for any past week or month.
func (h *reportHandler) refTime(r *http.Request) (time.Time, error) {
	return parseRef(r.URL.Query().Get("date"), h.now)
}

// parseRef accepts an RFC 3339 timestamp or a bare local date, falling
// back to the injected clock when the value is empty.
func parseRef(v string, now func() time.Time) (time.Time, error) {
	if v == "" {
		return now(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", v, time.Local)
}

func (h *reportHandler) today(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	report, err := h.reports.Today(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayReportView(report))
}

func (h *reportHandler) weekly(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	ref, err := h.refTime(r)
	if err != nil {
		badRequest(w, "date must be RFC 3339 or YYYY-MM-DD")
		return
	}
	report, err := h.reports.Weekly(r.Context(), identity.UserID, ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekReportView(report))
}

func (h *reportHandler) monthly(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	ref, err := h.refTime(r)
	if err != nil {
		badRequest(w, "date must be RFC 3339 or YYYY-MM-DD")
		return
	}
	report, err := h.reports.Monthly(r.Context(), identity.UserID, ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthReportView(report))
}

func (h *reportHandler) projects(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var from, to *time.Time
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(w, errInvalidQueryTime.Error())
			return
		}
		from = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(w, errInvalidQueryTime.Error())
			return
		}
		to = &t
	}
	breakdown, err := h.reports.ProjectBreakdown(r.Context(), identity.UserID, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectBreakdownView(breakdown))
}

func (h *reportHandler) pastWeeks(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	rows, err := h.reports.PastWeeks(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]weeklyReportRowView, 0, len(rows))
	for i := range rows {
		out = append(out, toWeeklyReportRowView(&rows[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *reportHandler) generateWeekly(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	ref, err := h.refTime(r)
	if err != nil {
		badRequest(w, "date must be RFC 3339 or YYYY-MM-DD")
		return
	}
	row, err := h.reports.GenerateWeekly(r.Context(), identity.UserID, ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWeeklyReportRowView(row))
}
