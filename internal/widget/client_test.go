package widget

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chatrelay/internal/models"
)

func TestClient_SendPostsTranscript(t *testing.T) {
	var got models.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON content type")
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"content":"Hi"}}]}`))
	}))
	defer srv.Close()

	msgs := []models.ChatMessage{
		{Role: models.RoleSystem, Content: "sys"},
		{Role: models.RoleUser, Content: "hello"},
	}
	body, err := NewClient(time.Second).Send(context.Background(), srv.URL, msgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ExtractReply(body) != "Hi" {
		t.Errorf("unexpected body %s", body)
	}
	if len(got.Messages) != 2 || got.Messages[1].Content != "hello" {
		t.Errorf("transcript not sent in full: %+v", got.Messages)
	}
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"OpenAI API error","status":429,"details":"rate limited"}`))
	}))
	defer srv.Close()

	_, err := NewClient(time.Second).Send(context.Background(), srv.URL, nil)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.Status != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", httpErr.Status)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("expected body in message, got %q", err.Error())
	}
}

func TestClient_UnreachableProxy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(time.Second).Send(context.Background(), url, nil)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if transportErr.Timeout {
		t.Errorf("connection refused should not be a timeout")
	}
	if !strings.Contains(err.Error(), "not deployed or not running") {
		t.Errorf("expected actionable message, got %q", err.Error())
	}
}

func TestClient_FileEndpoint(t *testing.T) {
	_, err := NewClient(time.Second).Send(context.Background(), "file:///tmp/index.html", nil)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if !strings.Contains(err.Error(), "local file") {
		t.Errorf("expected local file hint, got %q", err.Error())
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(50*time.Millisecond).Send(context.Background(), srv.URL, nil)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) || !transportErr.Timeout {
		t.Fatalf("expected timeout TransportError, got %v", err)
	}
}
