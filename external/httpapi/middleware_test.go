package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oakmontlabs/timepunch/internal/auth"
)

func TestRequireAuth(t *testing.T) {
	verify := func(token string) (*auth.Identity, error) {
		if token == "good-token" {
			return &auth.Identity{UserID: "u1", Username: "alice"}, nil
		}
		return nil, auth.ErrUnauthorized
	}

	var seen *auth.Identity
	handler := requireAuth(verify)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = identityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"good token", "Bearer good-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if seen == nil || seen.UserID != "u1" {
					t.Errorf("identity = %+v, want u1", seen)
				}
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"plain", "10.0.0.1:9999", "", "10.0.0.1"},
		{"forwarded single", "10.0.0.1:9999", "203.0.113.7", "203.0.113.7"},
		{"forwarded chain", "10.0.0.1:9999", "203.0.113.7, 10.0.0.2", "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyUnknownErrorIs500(t *testing.T) {
	status, code := classify(errors.New("database caught fire"))
	if status != http.StatusInternalServerError || code != "internal_error" {
		t.Errorf("classify = %d %q, want 500 internal_error", status, code)
	}
}
