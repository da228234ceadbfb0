package main

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chatrelay/internal/config"
)

func TestRunChat_ExchangesEachLine(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Try the serum."}}]}`))
	}))
	defer srv.Close()
	defer log.SetOutput(os.Stderr)

	opts := &options{
		endpoint: srv.URL,
		store:    filepath.Join(t.TempDir(), "storage.json"),
		timeout:  time.Second,
	}
	cfg := &config.WidgetConfig{SystemPrompt: "sys", Greeting: "Hello there"}
	in := strings.NewReader("which serum?\n\nand for dry skin?\n/exit\n")
	var out bytes.Buffer

	if err := runChat(context.Background(), opts, cfg, in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 proxy calls, got %d", got)
	}
	text := out.String()
	if strings.Count(text, "│ Try the serum.") != 2 {
		t.Errorf("expected two replies, got %q", text)
	}
	if strings.Contains(text, "context canceled") {
		t.Errorf("submission ran with a cancelled context: %q", text)
	}
	for _, want := range []string{"│ Hello there", "Proxy: " + srv.URL, "Goodbye"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestRunChat_StopsWhenContextDone(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := &options{
		endpoint: "http://127.0.0.1:1/",
		store:    filepath.Join(t.TempDir(), "storage.json"),
		timeout:  time.Second,
	}
	cfg := &config.WidgetConfig{SystemPrompt: "sys", Greeting: "hi"}
	var out bytes.Buffer

	if err := runChat(ctx, opts, cfg, strings.NewReader("one\ntwo\n"), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out.String(), "│ two") {
		t.Errorf("expected loop to stop after cancellation, got %q", out.String())
	}
}
