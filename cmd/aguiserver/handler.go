package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/stepper/agent"
	"github.com/spetersoncode/stepper/agui"
	"github.com/spetersoncode/stepper/internal/harness"
)

// AgentHandler runs one agent loop per request and streams AG-UI events.
type AgentHandler struct {
	harness *harness.Harness
	config  *harness.Config
}

// NewAgentHandler creates a new handler for the given harness.
func NewAgentHandler(h *harness.Harness, cfg *harness.Config) *AgentHandler {
	return &AgentHandler{harness: h, config: cfg}
}

// ServeHTTP handles POST requests to run the agent and stream events via SSE.
func (h *AgentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := h.harness.Logger

	if r.Method != http.MethodPost {
		logger.Warn("method not allowed", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input agui.RunAgentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logger.Warn("invalid request body", "error", err)
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	prepared, err := input.Prepare()
	if err != nil {
		logger.Warn("invalid input", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var eventCount int
	obs := agui.NewObserver(func(ev aguievents.Event) error {
		eventCount++
		return writeSSE(w, flusher, ev)
	}, prepared.ThreadID, prepared.RunID)

	log := logger.With("run_id", obs.Mapper().RunID(), "thread_id", obs.Mapper().ThreadID())
	log.Info("request started", "message_count", len(prepared.Messages))

	run, endSpans := h.harness.NewRun(prepared.Instructions,
		agent.WithRunID(obs.Mapper().RunID()),
		agent.WithObserver(obs),
	)
	defer endSpans()

	if err := obs.Start(); err != nil {
		log.Error("failed to write SSE event", "error", err)
		return
	}

	result, err := agent.Loop(r.Context(), h.harness.Generator, run,
		agent.WithMaxSteps(h.config.MaxSteps),
		agent.WithTimeout(h.config.Timeout),
	)
	if err == nil {
		err = result.Error
	}

	if writeErr := obs.Finish(err); writeErr != nil {
		log.Error("failed to write SSE event", "error", writeErr)
	}

	duration := time.Since(start)
	if err != nil {
		log.Error("request failed",
			"duration_ms", duration.Milliseconds(),
			"events_sent", eventCount,
			"error", err,
		)
		return
	}
	log.Info("request completed",
		"duration_ms", duration.Milliseconds(),
		"events_sent", eventCount,
		"termination", result.Termination,
		"steps", len(result.Steps),
	)
}

// writeSSE writes an AG-UI event in SSE format.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev aguievents.Event) error {
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type(), string(data)); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	flusher.Flush()
	return nil
}

// corsMiddleware adds CORS headers for cross-origin frontend requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
