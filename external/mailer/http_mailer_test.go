package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oakmontlabs/timepunch/internal/mailer"
)

func testMessage() mailer.Message {
	return mailer.Message{
		To:      "worker@example.com",
		From:    "noreply@example.com",
		Subject: "Password reset",
		Body:    "token inside",
	}
}

func TestSend_EmptyDeliveryURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSend_Success(t *testing.T) {
	var got map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	if err := sender.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got["to"] != "worker@example.com" {
		t.Fatalf("unexpected recipient: %s", got["to"])
	}
	if got["subject"] != "Password reset" {
		t.Fatalf("unexpected subject: %s", got["subject"])
	}
}

func TestSend_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	if err := sender.Send(context.Background(), testMessage()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
