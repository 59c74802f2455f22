package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/models"
	"github.com/ternarybob/artifex/internal/services/events"
)

func TestWebSocketHandler_BroadcastsJobEvents(t *testing.T) {
	eventService := events.NewService(nil)
	defer eventService.Close()

	h := NewWebSocketHandler(eventService, nil)

	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Wait for the server side to register the client.
	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	job := &models.Job{
		ID:            "job_ws",
		ToolName:      "pdf_merger",
		Status:        models.JobStatusCompleted,
		Progress:      100,
		StartTime:     time.Now(),
		EstimatedTime: 5,
		Result:        &models.JobResult{Filename: "job_ws_merged.pdf", OutputPath: "/tmp/job_ws_merged.pdf"},
	}
	require.NoError(t, eventService.PublishSync(context.Background(), interfaces.Event{
		Type:    interfaces.EventJobCompleted,
		Payload: job,
	}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "job_completed", msg.Type)

	payload, ok := msg.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "job_ws", payload["job_id"])
	assert.Equal(t, "completed", payload["status"])
}

func TestWebSocketHandler_ClientCountAfterDisconnect(t *testing.T) {
	h := NewWebSocketHandler(nil, nil)

	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return h.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
