package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"chatrelay/internal/handlers"
	"chatrelay/internal/middleware"
)

func New(proxyHandler *handlers.ProxyHandler) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", proxyHandler.Health)

	// ──── Relay (any path, any method) ────
	r.HandleFunc("/", proxyHandler.Relay)
	r.HandleFunc("/*", proxyHandler.Relay)

	return r
}
