package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatrelay/internal/handlers"
	"chatrelay/internal/relay"
)

type recordingRelayer struct {
	calls int
}

func (r *recordingRelayer) Relay(ctx context.Context, payload []byte) relay.Response {
	r.calls++
	return relay.Response{Status: http.StatusOK, Body: []byte(`{"choices":[{"message":{"content":"Hi"}}]}`)}
}

func TestRouter_RelaysAnyPath(t *testing.T) {
	rec := &recordingRelayer{}
	r := New(handlers.NewProxyHandler(rec))

	for _, path := range []string{"/", "/v1/chat", "/deep/nested/path"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"messages":[]}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, rr.Code)
		}
		if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("%s: expected CORS header", path)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s: expected request id header", path)
		}
	}
	if rec.calls != 3 {
		t.Errorf("expected 3 relay calls, got %d", rec.calls)
	}
}

func TestRouter_PreflightNeverRelays(t *testing.T) {
	rec := &recordingRelayer{}
	r := New(handlers.NewProxyHandler(rec))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rr.Body.String())
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("unexpected allowed methods %q", got)
	}
	if rec.calls != 0 {
		t.Errorf("expected no relay calls, got %d", rec.calls)
	}
}

func TestRouter_Health(t *testing.T) {
	rec := &recordingRelayer{}
	r := New(handlers.NewProxyHandler(rec))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("unexpected health body %q", rr.Body.String())
	}
	if rec.calls != 0 {
		t.Errorf("health should not relay")
	}
}
