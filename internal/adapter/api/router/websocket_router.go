package router

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/handler"
)

// SetupWebSocketRouter mounts the realtime endpoint. Browsers cannot set
// headers on upgrades, so the ID token may come as ?token=.
func SetupWebSocketRouter(e *echo.Echo, mw Middlewares) {
	wsHandler := handler.GetWebSocketHandler()
	e.GET("/v1/ws", wsHandler.HandleWebSocket, mw.Auth.Authenticate)
}
