package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oakmontlabs/timepunch/internal/admin"
	"github.com/oakmontlabs/timepunch/internal/approval"
)

type adminHandler struct {
	admin    *admin.Service
	approval *approval.Service
	now      func() time.Time
}

func (h *adminHandler) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/employees", h.listEmployees)
	r.Post("/employees", h.linkEmployee)
	r.Delete("/employees/{id}", h.unlinkEmployee)
	r.Get("/employees/{id}/active", h.employeeActive)
	r.Get("/employees/{id}/sessions", h.employeeSessions)
	r.Get("/employees/{id}/reports/today", h.employeeToday)
	r.Get("/employees/{id}/reports/weekly", h.employeeWeekly)
	r.Get("/employees/{id}/reports/projects", h.employeeProjects)
	r.Get("/requests", h.listRequests)
	r.Get("/requests/pending-count", h.pendingCount)
	r.Post("/requests/{id}/resolve", h.resolveRequest)
	return r
}

func (h *adminHandler) listEmployees(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	employees, err := h.admin.ListEmployees(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]employeeView, 0, len(employees))
	for i := range employees {
		out = append(out, toEmployeeView(&employees[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *adminHandler) linkEmployee(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var req struct {
		EmployeeCode string `json:"employeeCode"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	employee, err := h.admin.LinkByCode(r.Context(), identity.UserID, req.EmployeeCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(employee))
}

func (h *adminHandler) unlinkEmployee(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if err := h.admin.Unlink(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *adminHandler) employeeActive(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	active, err := h.admin.EmployeeActive(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActiveSessionView(active))
}

func (h *adminHandler) employeeSessions(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	filter, err := parseSessionFilter(r, chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	sessions, err := h.admin.EmployeeSessions(r.Context(), identity.UserID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionViews(sessions))
}

func (h *adminHandler) employeeToday(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	report, err := h.admin.EmployeeToday(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayReportView(report))
}

func (h *adminHandler) employeeWeekly(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	ref, err := parseRef(r.URL.Query().Get("date"), h.now)
	if err != nil {
		badRequest(w, "date must be RFC 3339 or YYYY-MM-DD")
		return
	}
	report, err := h.admin.EmployeeWeekly(r.Context(), identity.UserID, chi.URLParam(r, "id"), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekReportView(report))
}

func (h *adminHandler) employeeProjects(w http.ResponseWriter, r *http.Request) {
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
	breakdown, err := h.admin.EmployeeProjectBreakdown(r.Context(), identity.UserID, chi.URLParam(r, "id"), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectBreakdownView(breakdown))
}

func (h *adminHandler) listRequests(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	requests, err := h.approval.ListForAdmin(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChangeRequestViews(requests))
}

func (h *adminHandler) pendingCount(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	count, err := h.approval.PendingCount(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"pending": count})
}

func (h *adminHandler) resolveRequest(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var req struct {
		Status          string  `json:"status"`
		ResponseMessage *string `json:"responseMessage"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	status, err := approval.NormalizeStatus(req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resolved, err := h.approval.Resolve(r.Context(), identity.UserID, chi.URLParam(r, "id"), status, req.ResponseMessage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChangeRequestView(resolved))
}
