package router

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/handler"
	"comoresmarket/internal/infrastructure/ratelimit"
)

func SetupProfileRouter(e *echo.Echo, mw Middlewares) {
	profileHandler := handler.GetProfileHandler()

	e.GET("/v1/profiles/:id", profileHandler.GetSellerPage, mw.RateLimit.General)
	e.GET("/v1/pro", profileHandler.ProOffer, mw.Auth.Optional)

	me := e.Group("/v1/me")
	me.Use(mw.Auth.Authenticate)
	me.GET("", profileHandler.GetMe)
	me.PUT("", profileHandler.UpdateMe)
	me.POST("/avatar", profileHandler.UploadAvatar, mw.RateLimit.Limit(ratelimit.ActionUpload))
	me.DELETE("", profileHandler.DeleteMe)
}
