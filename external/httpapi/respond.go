package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/oakmontlabs/timepunch/internal/admin"
	"github.com/oakmontlabs/timepunch/internal/approval"
	"github.com/oakmontlabs/timepunch/internal/auth"
	"github.com/oakmontlabs/timepunch/internal/clock"
	"github.com/oakmontlabs/timepunch/internal/project"
	"github.com/oakmontlabs/timepunch/internal/settings"
	"github.com/oakmontlabs/timepunch/internal/share"
)

type envelope struct {
	Data  any       `json:"data,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data}); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		err = errors.New("internal error")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(envelope{Error: &apiError{Code: code, Message: err.Error()}})
}

// classify maps a service error to an HTTP status and a stable machine
// code. Anything unrecognized is a 500.
func classify(err error) (int, string) {
	if kind, ok := clock.KindOf(err); ok {
		switch kind {
		case clock.KindAlreadyClockedIn:
			return http.StatusConflict, string(kind)
		case clock.KindNotFound:
			return http.StatusNotFound, string(kind)
		default:
			return http.StatusBadRequest, string(kind)
		}
	}

	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, "validation_failed"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict, "user_exists"
	case errors.Is(err, auth.ErrInvalidResetToken):
		return http.StatusBadRequest, "invalid_reset_token"

	case errors.Is(err, project.ErrNameRequired):
		return http.StatusBadRequest, "name_required"
	case errors.Is(err, project.ErrNameTaken):
		return http.StatusConflict, "name_taken"
	case errors.Is(err, project.ErrNotFound):
		return http.StatusNotFound, "project_not_found"

	case errors.Is(err, settings.ErrInvalidRate):
		return http.StatusBadRequest, "invalid_rate"
	case errors.Is(err, settings.ErrInvalidTextSize):
		return http.StatusBadRequest, "invalid_text_size"

	case errors.Is(err, admin.ErrNotAdmin):
		return http.StatusForbidden, "not_admin"
	case errors.Is(err, admin.ErrNotLinked), errors.Is(err, approval.ErrNotLinked):
		return http.StatusForbidden, "not_linked"
	case errors.Is(err, admin.ErrUnknownCode):
		return http.StatusNotFound, "unknown_employee_code"
	case errors.Is(err, admin.ErrCannotLinkAdmin):
		return http.StatusBadRequest, "cannot_link_admin"
	case errors.Is(err, admin.ErrCannotLinkSelf):
		return http.StatusBadRequest, "cannot_link_self"
	case errors.Is(err, admin.ErrAlreadyLinked):
		return http.StatusConflict, "already_linked"

	case errors.Is(err, approval.ErrRequestNotFound):
		return http.StatusNotFound, "request_not_found"
	case errors.Is(err, approval.ErrSessionNotOwned):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, approval.ErrAlreadyResolved):
		return http.StatusConflict, "already_resolved"
	case errors.Is(err, approval.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid_status"
	case errors.Is(err, approval.ErrRecipientInvalid):
		return http.StatusBadRequest, "invalid_recipient"

	case errors.Is(err, share.ErrInvalidEmail):
		return http.StatusBadRequest, "invalid_email"
	}
	return http.StatusInternalServerError, "internal_error"
}

func badRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(envelope{Error: &apiError{Code: "bad_request", Message: message}})
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

var (
	errInvalidQueryTime  = errors.New("from/to must be RFC 3339 timestamps")
	errInvalidQueryLimit = errors.New("limit must be 1-200 and offset non-negative")
)

func readAll(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, 1<<20))
}

// unmarshalBoth decodes the same payload into a field-presence probe
// map and a typed struct, so PATCH handlers can tell "absent" from
// "explicitly null".
func unmarshalBoth(raw []byte, probe *map[string]any, dst any) error {
	if err := json.Unmarshal(raw, probe); err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
