package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oakmontlabs/timepunch/internal/approval"
)

// approvalHandler covers the employee side of the hour-change
// workflow; the admin side lives under /admin.
type approvalHandler struct {
	approval *approval.Service
}

func (h *approvalHandler) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/admins", h.admins)
	return r
}

func (h *approvalHandler) admins(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	admins, err := h.approval.Admins(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]userView, 0, len(admins))
	for i := range admins {
		out = append(out, toUserView(&admins[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *approvalHandler) list(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	requests, err := h.approval.ListMine(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChangeRequestViews(requests))
}

func (h *approvalHandler) create(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	var req struct {
		SessionID         string    `json:"sessionId"`
		RecipientID       *string   `json:"recipientId"`
		RequestedClockIn  time.Time `json:"requestedClockIn"`
		RequestedClockOut time.Time `json:"requestedClockOut"`
		Message           *string   `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	created, err := h.approval.Create(r.Context(), approval.CreateInput{
		SenderID:          identity.UserID,
		RecipientID:       req.RecipientID,
		SessionID:         req.SessionID,
		RequestedClockIn:  req.RequestedClockIn,
		RequestedClockOut: req.RequestedClockOut,
		Message:           req.Message,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChangeRequestView(created))
}
