package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatrelay/internal/config"
	"chatrelay/internal/handlers"
	"chatrelay/internal/relay"
	"chatrelay/internal/router"
)

func main() {
	log.Println("🚀 Starting chat relay proxy...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.LoadProxy()
	log.Println("✓ Environment variables loaded")
	if cfg.APIKey == "" {
		log.Println("✗ OPENAI_API_KEY is not set; relay requests will fail with 500")
	}

	// ──── Step 2: Upstream Relay ────
	upstream := &http.Client{Timeout: cfg.UpstreamTimeout}
	relayer := relay.New(relay.Options{
		URL:                 cfg.UpstreamURL,
		Model:               cfg.Model,
		MaxCompletionTokens: cfg.MaxCompletionTokens,
	}, cfg.APIKey, upstream)
	log.Printf("✓ Relaying to %s (model %s, max %d tokens)", cfg.UpstreamURL, cfg.Model, cfg.MaxCompletionTokens)

	// ──── Step 3: Start HTTP Server ────
	r := router.New(handlers.NewProxyHandler(relayer))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Chat relay ready on http://localhost:%s (%s)", cfg.Port, cfg.Env)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
