package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oakmontlabs/timepunch/internal/settings"
)

type settingsHandler struct {
	settings *settings.Service
}

func (h *settingsHandler) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.get)
	r.Patch("/", h.update)
	return r
}

func (h *settingsHandler) get(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	current, err := h.settings.Get(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsView(current))
}

func (h *settingsHandler) update(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var req struct {
		HourlyRate *float64 `json:"hourlyRate"`
		TextSize   *string  `json:"textSize"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	updated, err := h.settings.Update(r.Context(), identity.UserID, req.HourlyRate, req.TextSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsView(updated))
}
