package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/pkg/logger"
)

// Frame types sent by clients.
const (
	MessageTypePing     = "ping"
	MessageTypeRoute    = "route"
	MessageTypeMarkRead = "mark_read"
)

// WSMessage is the envelope of client frames.
type WSMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

type RouteData struct {
	Path string `json:"path"`
}

type MarkReadData struct {
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
}

// HandleClientMessage processes incoming WebSocket messages
func (m *Manager) HandleClientMessage(ctx context.Context, client *Client, messageBytes []byte) {
	var wsMessage WSMessage
	if err := json.Unmarshal(messageBytes, &wsMessage); err != nil {
		logger.Debug("WebSocket: invalid frame from %s: %v", client.UserID, err)
		m.sendErrorToClient(client, "Invalid message format")
		return
	}

	switch wsMessage.Type {
	case MessageTypePing:
		m.sendToClient(client, entity.NewRealtimeEvent(entity.EventPong, map[string]string{"status": "alive"}))

	case MessageTypeRoute:
		var data RouteData
		if err := json.Unmarshal(wsMessage.Data, &data); err != nil {
			m.sendErrorToClient(client, "Invalid route payload")
			return
		}
		client.SetRoute(strings.TrimSpace(data.Path))

	case MessageTypeMarkRead:
		m.handleMarkRead(ctx, client, wsMessage.Data)

	default:
		m.sendErrorToClient(client, "Unknown message type: "+wsMessage.Type)
	}
}

func (m *Manager) handleMarkRead(ctx context.Context, client *Client, raw json.RawMessage) {
	var data MarkReadData
	if err := json.Unmarshal(raw, &data); err != nil || data.ProductID == "" || data.UserID == "" {
		m.sendErrorToClient(client, "Invalid mark_read payload")
		return
	}

	m.mu.RLock()
	marker := m.readMarker
	m.mu.RUnlock()
	if marker == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := marker.MarkConversationRead(ctx, client.UserID, data.ProductID, data.UserID); err != nil {
		logger.Warn("WebSocket: mark_read failed for %s: %v", client.UserID, err)
		m.sendErrorToClient(client, "Failed to mark conversation as read")
	}
}

func (m *Manager) sendToClient(client *Client, event entity.RealtimeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode websocket event: %v", err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.owned[client]; !ok {
		return
	}
	select {
	case client.Send <- payload:
	default:
		logger.Warn("WebSocket: send buffer full for %s", client.UserID)
	}
}

func (m *Manager) sendErrorToClient(client *Client, errorMsg string) {
	m.sendToClient(client, entity.NewRealtimeEvent(entity.EventError, map[string]string{"error": errorMsg}))
}
