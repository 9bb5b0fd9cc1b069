package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oakmontlabs/timepunch/internal/project"
)

type projectHandler struct {
	projects *project.Service
}

func (h *projectHandler) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Patch("/{id}", h.rename)
	r.Delete("/{id}", h.delete)
	return r
}

func (h *projectHandler) list(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	projects, err := h.projects.List(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectViews(projects))
}

func (h *projectHandler) create(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	created, err := h.projects.Create(r.Context(), identity.UserID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectView(created))
}

func (h *projectHandler) rename(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	renamed, err := h.projects.Rename(r.Context(), identity.UserID, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectView(renamed))
}

func (h *projectHandler) delete(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if err := h.projects.Delete(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
