package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateProgress_Sequence(t *testing.T) {
	sequence := SimulateProgress("pdf_merger", 20)

	// 20 second estimate → 20 steps → started + 19 running + completed.
	require.Len(t, sequence, 21)

	assert.Equal(t, "started", sequence[0].Event)
	assert.Equal(t, 0, sequence[0].Progress)
	assert.Equal(t, "pdf_merger", sequence[0].Tool)

	last := sequence[len(sequence)-1]
	assert.Equal(t, "completed", last.Event)
	assert.Equal(t, 100, last.Progress)
	assert.Equal(t, "/api/jobs/pdf_merger/download", last.DownloadURL)

	// Exactly one completed event, progress strictly increasing.
	completed := 0
	prev := -1
	for _, event := range sequence {
		if event.Event == "completed" {
			completed++
		}
		assert.Greater(t, event.Progress+1, prev, "progress must not decrease")
		prev = event.Progress
	}
	assert.Equal(t, 1, completed)
}

func TestSimulateProgress_Messages(t *testing.T) {
	sequence := SimulateProgress("tool", 30)

	for _, event := range sequence {
		if event.Event != "running" {
			continue
		}
		if event.Progress >= 80 {
			assert.Equal(t, "Finalizing...", event.Message, "progress %d", event.Progress)
		} else {
			assert.Equal(t, "Processing...", event.Message, "progress %d", event.Progress)
		}
	}
}

func TestSimulateProgress_StepClamping(t *testing.T) {
	// Small estimates clamp up to 10 steps.
	assert.Len(t, SimulateProgress("t", 2), 11)
	// Large estimates clamp down to 50 steps.
	assert.Len(t, SimulateProgress("t", 300), 51)
}

func TestStepDelay(t *testing.T) {
	// 20s over 20 steps → 1s.
	assert.Equal(t, time.Second, StepDelay(20))
	// 2s over 10 steps → 200ms.
	assert.Equal(t, 200*time.Millisecond, StepDelay(2))
	// 0s estimate floors at 100ms.
	assert.Equal(t, 100*time.Millisecond, StepDelay(0))
	// 300s over 50 steps → 6s, capped at 1s.
	assert.Equal(t, time.Second, StepDelay(300))
}

func TestStreamHandler_EmitsSSE(t *testing.T) {
	h := NewProgressHandler(nil)

	req := httptest.NewRequest("GET", "/api/progress/word_counter?estimate=0", nil)
	w := httptest.NewRecorder()

	h.StreamHandler(w, req)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "event: started")
	assert.Contains(t, body, "event: running")
	assert.Contains(t, body, "event: completed")
	assert.Contains(t, body, `"download_url":"/api/jobs/word_counter/download"`)

	// The state is also carried in each data frame so clients reading
	// only message bodies see the lifecycle.
	assert.Contains(t, body, `"status":"started"`)
	assert.Contains(t, body, `"status":"running"`)
	assert.Contains(t, body, `"status":"completed"`)

	// Frames are ordered: started first, completed last.
	assert.Less(t, strings.Index(body, "event: started"), strings.Index(body, "event: completed"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(body), `"download_url":"/api/jobs/word_counter/download"}`))
}

func TestStreamHandler_BadEstimate(t *testing.T) {
	h := NewProgressHandler(nil)

	req := httptest.NewRequest("GET", "/api/progress/tool?estimate=abc", nil)
	w := httptest.NewRecorder()

	h.StreamHandler(w, req)
	assert.Equal(t, 400, w.Code)
}

func TestStreamHandler_MissingTool(t *testing.T) {
	h := NewProgressHandler(nil)

	req := httptest.NewRequest("GET", "/api/progress/", nil)
	w := httptest.NewRecorder()

	h.StreamHandler(w, req)
	assert.Equal(t, 400, w.Code)
}
