package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
)

// ProgressHandler streams simulated tool progress over SSE. The stream
// is a pure function of the estimate parameter; it is the frontend's
// smooth progress bar, fully decoupled from real job state.
type ProgressHandler struct {
	logger arbor.ILogger
}

func NewProgressHandler(logger arbor.ILogger) *ProgressHandler {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &ProgressHandler{
		logger: logger.WithPrefix("progress"),
	}
}

// ProgressEvent is a single frame of the simulated stream. The state
// doubles as the SSE event name and the status field in the JSON body,
// so clients reading only data frames still see the lifecycle.
type ProgressEvent struct {
	Event       string `json:"status"`
	Progress    int    `json:"progress"`
	Message     string `json:"message,omitempty"`
	Tool        string `json:"tool,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

// SimulateProgress computes the full event sequence for an estimate:
// a started frame, evenly spaced running frames, and exactly one
// completed frame at 100.
func SimulateProgress(toolID string, estimateSeconds int) []ProgressEvent {
	steps := progressSteps(estimateSeconds)

	sequence := make([]ProgressEvent, 0, steps+1)
	sequence = append(sequence, ProgressEvent{
		Event:    "started",
		Progress: 0,
		Tool:     toolID,
		Message:  "Processing...",
	})

	for i := 1; i < steps; i++ {
		progress := i * 100 / steps
		message := "Processing..."
		if progress >= 80 {
			message = "Finalizing..."
		}
		sequence = append(sequence, ProgressEvent{
			Event:    "running",
			Progress: progress,
			Message:  message,
		})
	}

	sequence = append(sequence, ProgressEvent{
		Event:       "completed",
		Progress:    100,
		Message:     "Done",
		DownloadURL: fmt.Sprintf("/api/jobs/%s/download", toolID),
	})

	return sequence
}

// progressSteps clamps the step count to [10,50].
func progressSteps(estimateSeconds int) int {
	steps := estimateSeconds
	if steps < 10 {
		steps = 10
	}
	if steps > 50 {
		steps = 50
	}
	return steps
}

// StepDelay returns the pause between frames: the estimate spread over
// the steps, floored at 100ms and capped at 1s.
func StepDelay(estimateSeconds int) time.Duration {
	steps := progressSteps(estimateSeconds)
	delay := time.Duration(estimateSeconds) * time.Second / time.Duration(steps)
	if delay < 100*time.Millisecond {
		delay = 100 * time.Millisecond
	}
	if delay > time.Second {
		delay = time.Second
	}
	return delay
}

// StreamHandler handles GET /api/progress/{tool_id}?estimate=N.
func (h *ProgressHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	toolID := pathSegment(r.URL.Path, "/api/progress/")
	if toolID == "" {
		WriteError(w, http.StatusBadRequest, "tool id is required")
		return
	}

	estimate := 10
	if estimateStr := r.URL.Query().Get("estimate"); estimateStr != "" {
		parsed, err := strconv.Atoi(estimateStr)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, "estimate must be a non-negative integer")
			return
		}
		estimate = parsed
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}
	flusher.Flush()

	sequence := SimulateProgress(toolID, estimate)
	delay := StepDelay(estimate)

	for i, event := range sequence {
		if err := writeSSEEvent(w, event.Event, event); err != nil {
			return
		}
		flusher.Flush()

		if i == len(sequence)-1 {
			break
		}

		select {
		case <-r.Context().Done():
			return
		case <-time.After(delay):
		}
	}

	h.logger.Debug().
		Str("tool", toolID).
		Int("estimate", estimate).
		Int("frames", len(sequence)).
		Msg("Progress stream completed")
}

func writeSSEEvent(w http.ResponseWriter, event string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", jsonData)
	return err
}
