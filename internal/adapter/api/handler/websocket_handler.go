package handler

import (
	"context"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "comoresmarket/internal/infrastructure/websocket"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/logger"
	"comoresmarket/pkg/response"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
	upgrader  gorillaws.Upgrader
	baseCtx   context.Context
}

// NewWebSocketHandler accepts upgrades from the listed origins; "*" or an
// empty list accepts any origin. baseCtx outlives the upgrade request and
// bounds the work done for client frames.
func NewWebSocketHandler(baseCtx context.Context, wsManager *ws.Manager, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
		baseCtx:   baseCtx,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker admits browsers from the allowed origins only. Requests
// without an Origin header come from native clients and still need a token.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		logger.Warn("HandleWebSocket: upgrade failed for %s: %v", userID, err)
		return nil
	}

	client := ws.NewClient(userID, conn)
	h.wsManager.Register(h.baseCtx, client)

	go client.WritePump()
	go client.ReadPump(h.baseCtx, h.wsManager)

	return nil
}
