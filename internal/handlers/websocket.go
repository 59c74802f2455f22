package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is the envelope for every frame sent to clients.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocketHandler pushes job lifecycle events from the internal event
// bus to connected clients. Each connection gets its own write mutex so
// concurrent broadcasts never interleave frames.
type WebSocketHandler struct {
	logger       arbor.ILogger
	clients      map[*websocket.Conn]bool
	clientMutex  map[*websocket.Conn]*sync.Mutex
	mu           sync.RWMutex
	eventService interfaces.EventService
}

func NewWebSocketHandler(eventService interfaces.EventService, logger arbor.ILogger) *WebSocketHandler {
	if logger == nil {
		logger = common.GetLogger()
	}

	h := &WebSocketHandler{
		logger:       logger.WithPrefix("websocket"),
		clients:      make(map[*websocket.Conn]bool),
		clientMutex:  make(map[*websocket.Conn]*sync.Mutex),
		eventService: eventService,
	}

	if eventService != nil {
		h.subscribeToJobEvents()
	}

	return h
}

// subscribeToJobEvents wires every job lifecycle event type onto the
// broadcast path.
func (h *WebSocketHandler) subscribeToJobEvents() {
	eventTypes := []interfaces.EventType{
		interfaces.EventJobCreated,
		interfaces.EventJobProgress,
		interfaces.EventJobCompleted,
		interfaces.EventJobFailed,
	}

	for _, eventType := range eventTypes {
		messageType := string(eventType)
		if err := h.eventService.Subscribe(eventType, func(ctx context.Context, event interfaces.Event) error {
			h.broadcastJobEvent(messageType, event.Payload)
			return nil
		}); err != nil {
			h.logger.Error().Err(err).Str("event_type", messageType).Msg("Failed to subscribe to job events")
		}
	}
}

// broadcastJobEvent sends a job snapshot to every connected client.
func (h *WebSocketHandler) broadcastJobEvent(messageType string, payload interface{}) {
	msg := WSMessage{Type: messageType, Payload: payload}
	if job, ok := payload.(*models.Job); ok {
		msg.Payload = toJobResponse(job)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal job event")
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
		mutexes = append(mutexes, h.clientMutex[conn])
	}
	h.mu.RUnlock()

	for i, conn := range clients {
		mutex := mutexes[i]
		mutex.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to send job event to client")
		}
	}
}

// HandleWebSocket upgrades the connection and keeps it registered until
// the client goes away.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Msgf("WebSocket client connected (total: %d)", clientCount)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		delete(h.clientMutex, conn)
		remaining := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.Debug().Msgf("WebSocket client disconnected (remaining: %d)", remaining)
	}()

	// Read messages from client (keep connection alive)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
