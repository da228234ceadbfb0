package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"chatrelay/internal/middleware"
	"chatrelay/internal/models"
	"chatrelay/internal/relay"
)

const maxRequestBody = 16 << 20

type relayer interface {
	Relay(ctx context.Context, payload []byte) relay.Response
}

type ProxyHandler struct {
	relayer relayer
}

func NewProxyHandler(relayer relayer) *ProxyHandler {
	return &ProxyHandler{relayer: relayer}
}

// Relay accepts a chat payload on any path and answers with the upstream body
// or a JSON error. Preflight never reaches the upstream.
func (h *ProxyHandler) Relay(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		middleware.SetCORSHeaders(w.Header())
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.RelayError{Error: "Failed to read request body"})
		return
	}

	resp := h.relayer.Relay(r.Context(), body)
	if resp.Status != http.StatusOK {
		log.Printf("relay %s: status %d", r.Header.Get(middleware.RequestIDHeader), resp.Status)
	}
	writeRaw(w, resp.Status, resp.Body)
}

func (h *ProxyHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	middleware.SetCORSHeaders(w.Header())
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	middleware.SetCORSHeaders(w.Header())
	w.WriteHeader(status)
	w.Write(body)
}
