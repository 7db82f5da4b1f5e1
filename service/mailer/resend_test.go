package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestResendMailerSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer re_test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	m, err := NewResendMailer("re_test", "DocuFlow <noreply@example.com>", srv.URL, zap.NewNop())
	if err != nil {
		t.Fatalf("NewResendMailer: %v", err)
	}
	err = m.Send(context.Background(), Message{
		To:      []string{"ap@example.com"},
		Subject: "Invoice INV-1 due today",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["subject"] != "Invoice INV-1 due today" || got["from"] != "DocuFlow <noreply@example.com>" {
		t.Errorf("unexpected payload: %v", got)
	}
}

func TestResendMailerValidation(t *testing.T) {
	if _, err := NewResendMailer("", "x", "", zap.NewNop()); err == nil {
		t.Error("expected error for empty api key")
	}
	m, _ := NewResendMailer("re_test", "x", "http://127.0.0.1:1", zap.NewNop())
	if err := m.Send(context.Background(), Message{Subject: "s"}); err == nil {
		t.Error("expected error for missing recipients")
	}
}
