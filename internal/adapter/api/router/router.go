package router

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/middleware"
)

// Middlewares groups the request guards shared by the routers.
type Middlewares struct {
	Auth      *middleware.AuthMiddleware
	Admin     *middleware.AdminMiddleware
	RateLimit *middleware.RateLimitMiddleware
}

func Setup(e *echo.Echo, mw Middlewares) {
	SetupAuthRouter(e, mw)
	SetupListingRouter(e, mw)
	SetupProfileRouter(e, mw)
	SetupFavoriteRouter(e, mw)
	SetupConversationRouter(e, mw)
	SetupUploadRouter(e, mw)
	SetupAdminRouter(e, mw)
	SetupWebSocketRouter(e, mw)
	SetupSeoRouter(e)
	SetupHealthRouter(e)
}
