package router

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/handler"
	"comoresmarket/internal/infrastructure/ratelimit"
)

func SetupUploadRouter(e *echo.Echo, mw Middlewares) {
	uploadHandler := handler.GetUploadHandler()

	e.POST("/v1/uploads/:bucket", uploadHandler.Upload,
		mw.Auth.Authenticate,
		mw.RateLimit.Limit(ratelimit.ActionUpload),
	)
}
