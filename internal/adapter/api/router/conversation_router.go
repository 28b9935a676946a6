package router

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/handler"
	"comoresmarket/internal/infrastructure/ratelimit"
)

func SetupConversationRouter(e *echo.Echo, mw Middlewares) {
	conversationHandler := handler.GetConversationHandler()

	conversations := e.Group("/v1/conversations")
	conversations.Use(mw.Auth.Authenticate)

	conversations.GET("", conversationHandler.ListConversations)
	conversations.GET("/:productId/:userId", conversationHandler.OpenConversation)
	conversations.PUT("/:productId/:userId/read", conversationHandler.MarkRead)
	conversations.POST("/:productId/:userId/messages", conversationHandler.SendMessage)
	conversations.POST("/:productId/:userId/images", conversationHandler.SendImage, mw.RateLimit.Limit(ratelimit.ActionUpload))
	conversations.DELETE("/:productId/:userId", conversationHandler.DeleteConversation)

	e.GET("/v1/messages/unread-count", conversationHandler.UnreadCount, mw.Auth.Authenticate)
}
