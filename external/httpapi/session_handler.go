package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oakmontlabs/timepunch/internal/clock"
	"github.com/oakmontlabs/timepunch/internal/repository"
)

type sessionHandler struct {
	engine *clock.Engine
}

func (h *sessionHandler) routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/clock-in", h.clockIn)
	r.Post("/clock-out", h.clockOut)
	r.Post("/break", h.toggleBreak)
	r.Get("/active", h.active)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

func (h *sessionHandler) clockIn(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var req struct {
		ProjectID *string `json:"projectId"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "invalid request body")
			return
		}
	}
	active, err := h.engine.ClockIn(r.Context(), identity.UserID, req.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActiveSessionView(active))
}

func (h *sessionHandler) clockOut(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var req struct {
		Notes *string `json:"notes"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "invalid request body")
			return
		}
	}
	session, err := h.engine.ClockOut(r.Context(), identity.UserID, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(session))
}

func (h *sessionHandler) toggleBreak(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	state, err := h.engine.ToggleBreak(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, breakView{
		IsOnBreak:   state.IsOnBreak,
		BreakStart:  state.BreakStart,
		BreakTimeMS: state.BreakTimeMS,
	})
}

func (h *sessionHandler) active(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	active, err := h.engine.Active(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActiveSessionView(active))
}

func (h *sessionHandler) list(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	filter, err := parseSessionFilter(r, identity.UserID)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	sessions, err := h.engine.ListSessions(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionViews(sessions))
}

func (h *sessionHandler) create(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var req struct {
		ClockIn   time.Time `json:"clockIn"`
		ClockOut  time.Time `json:"clockOut"`
		ProjectID *string   `json:"projectId"`
		Notes     *string   `json:"notes"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	session, err := h.engine.CreateSession(r.Context(), clock.CreateSessionInput{
		UserID:    identity.UserID,
		ClockIn:   req.ClockIn,
		ClockOut:  req.ClockOut,
		ProjectID: req.ProjectID,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionView(session))
}

func (h *sessionHandler) get(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	session, err := h.engine.GetSession(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(session))
}

// update distinguishes absent fields from explicit nulls for projectId
// and notes by decoding into raw pointers twice: presence is tracked
// with a map probe so PATCH can clear either field.
func (h *sessionHandler) update(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var probe map[string]any
	var req struct {
		ClockIn   *time.Time `json:"clockIn"`
		ClockOut  *time.Time `json:"clockOut"`
		ProjectID *string    `json:"projectId"`
		Notes     *string    `json:"notes"`
	}
	raw, err := readAll(r)
	if err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if err := unmarshalBoth(raw, &probe, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	_, projectSet := probe["projectId"]
	_, notesSet := probe["notes"]

	session, err := h.engine.UpdateSession(r.Context(), clock.UpdateSessionInput{
		UserID:       identity.UserID,
		SessionID:    chi.URLParam(r, "id"),
		ClockIn:      req.ClockIn,
		ClockOut:     req.ClockOut,
		ProjectID:    req.ProjectID,
		ProjectIDSet: projectSet,
		Notes:        req.Notes,
		NotesSet:     notesSet,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(session))
}

func (h *sessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if err := h.engine.DeleteSession(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseSessionFilter(r *http.Request, userID string) (repository.SessionFilter, error) {
	filter := repository.SessionFilter{UserID: userID, Limit: 50}
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errInvalidQueryTime
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errInvalidQueryTime
		}
		filter.To = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			return filter, errInvalidQueryLimit
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errInvalidQueryLimit
		}
		filter.Offset = n
	}
	return filter, nil
}
