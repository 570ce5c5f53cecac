package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/portal-planner/internal/types"
)

// Stream statuses carried in every event payload.
const (
	StatusRunning  = "running"
	StatusError    = "error"
	StatusComplete = "complete"
)

// StreamEvent is the payload of one progress event.
type StreamEvent struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Step    string        `json:"step,omitempty"`
	Result  *types.Result `json:"result,omitempty"`
}

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event. An empty event name sends a plain message event,
// which browsers deliver to EventSource.onmessage.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if event != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteProgress sends a running event
func (s *SSEWriter) WriteProgress(step, message string) {
	s.WriteEvent("", StreamEvent{Status: StatusRunning, Step: step, Message: message}) //nolint:errcheck
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("", StreamEvent{Status: StatusError, Message: message}) //nolint:errcheck
}

// WriteComplete sends the final result
func (s *SSEWriter) WriteComplete(result *types.Result) {
	s.WriteEvent("", StreamEvent{Status: StatusComplete, Message: "Success", Result: result}) //nolint:errcheck
}
