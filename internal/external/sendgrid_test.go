package external

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"droughtwatch/internal/types"
)

func TestSendGridClient_Send_Success(t *testing.T) {
	var captured sendGridMailPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sg_key" {
			t.Errorf("missing bearer auth")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("invalid payload: %v", err)
		}
		w.Header().Set("X-Message-Id", "msg_abc")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewSendGridClient(srv.Client(), SendGridClientConfig{
		APIKey:    "sg_key",
		FromEmail: "alerts@droughtwatch.example",
		FromName:  "Drought Monitor",
		BaseURL:   srv.URL,
	})

	msgID, err := client.Send(context.Background(), SendInput{
		To:       "farmer@example.com",
		ToName:   "Thandi",
		Subject:  "Drought alert: heatwave watch",
		BodyText: "Your trigger fired.",
		BodyHTML: "<p>Your trigger fired.</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgID != "msg_abc" {
		t.Errorf("expected provider message id msg_abc, got %q", msgID)
	}

	if captured.Subject != "Drought alert: heatwave watch" {
		t.Errorf("unexpected subject: %s", captured.Subject)
	}
	if len(captured.Content) != 2 || captured.Content[0].Type != "text/plain" {
		t.Errorf("expected text/plain before text/html, got %+v", captured.Content)
	}
	if captured.From.Email != "alerts@droughtwatch.example" {
		t.Errorf("unexpected from: %s", captured.From.Email)
	}
}

func TestSendGridClient_Send_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errors":[{"message":"recipient suppressed"}]}`))
	}))
	defer srv.Close()

	client := NewSendGridClient(srv.Client(), SendGridClientConfig{
		APIKey:  "sg_key",
		BaseURL: srv.URL,
	})

	_, err := client.Send(context.Background(), SendInput{To: "blocked@example.com", Subject: "x"})
	if err == nil {
		t.Fatal("expected an error")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeUpstreamEmail {
		t.Errorf("expected %s, got %s", types.ErrCodeUpstreamEmail, appErr.Code)
	}
}
