package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oakmontlabs/timepunch/internal/share"
)

// shareHandler mails report summaries to an address of the user's
// choosing; the preview routes return the composed mail unsent.
type shareHandler struct {
	share *share.Service
	now   func() time.Time
}

func (h *shareHandler) routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/daily", h.daily)
	r.Post("/weekly", h.weekly)
	r.Get("/daily/preview", h.previewDaily)
	r.Get("/weekly/preview", h.previewWeekly)
	return r
}

type shareRequest struct {
	Email string `json:"email"`
	Date  string `json:"date"`
}

func (h *shareHandler) daily(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var req shareRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	ref, err := parseRef(req.Date, h.now)
	if err != nil {
		badRequest(w, "date must be RFC 3339 or YYYY-MM-DD")
		return
	}
	if err := h.share.SendDaily(r.Context(), identity.UserID, req.Email, ref); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Daily report sent successfully",
		"sentTo":  req.Email,
	})
}

func (h *shareHandler) weekly(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var req shareRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	ref, err := parseRef(req.Date, h.now)
	if err != nil {
		badRequest(w, "date must be RFC 3339 or YYYY-MM-DD")
		return
	}
	if err := h.share.SendWeekly(r.Context(), identity.UserID, req.Email, ref); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Weekly report sent successfully",
		"sentTo":  req.Email,
	})
}

func (h *shareHandler) previewDaily(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	ref, err := parseRef(r.URL.Query().Get("date"), h.now)
	if err != nil {
		badRequest(w, "date must be RFC 3339 or YYYY-MM-DD")
		return
	}
	preview, err := h.share.PreviewDaily(r.Context(), identity.UserID, ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreviewView(preview))
}

func (h *shareHandler) previewWeekly(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	ref, err := parseRef(r.URL.Query().Get("date"), h.now)
	if err != nil {
		badRequest(w, "date must be RFC 3339 or YYYY-MM-DD")
		return
	}
	preview, err := h.share.PreviewWeekly(r.Context(), identity.UserID, ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreviewView(preview))
}
