// Package main provides a reference AG-UI HTTP server that runs stepper
// agents and streams their step lifecycle via Server-Sent Events (SSE).
//
// Each request starts a run whose instructions are the last user message.
// Configuration is the same as for cmd/stepper, plus:
//
//	STEPPER_PORT - Server port (default: 8000)
//
// Usage:
//
//	STEPPER_PROVIDER=anthropic go run ./cmd/aguiserver
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spetersoncode/stepper/internal/harness"
)

func main() {
	cfg, err := harness.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	profile, err := harness.LoadProfile(cfg.Profile)
	if err != nil {
		log.Fatalf("Profile error: %v", err)
	}

	h, err := harness.New(context.Background(), cfg, profile)
	if err != nil {
		log.Fatalf("Failed to build agent: %v", err)
	}
	defer h.Close(context.Background())

	handler := NewAgentHandler(h, cfg)

	mux := http.NewServeMux()
	mux.Handle("/api/agent", corsMiddleware(handler))
	mux.HandleFunc("/health", healthHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE needs no write timeout
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("AG-UI server starting on :%s", cfg.Port)
	log.Printf("Provider: %s", cfg.Provider)
	log.Printf("Endpoint: POST http://localhost:%s/api/agent", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
