package router

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/handler"
	"comoresmarket/internal/infrastructure/ratelimit"
)

func SetupAuthRouter(e *echo.Echo, mw Middlewares) {
	authHandler := handler.GetAuthHandler()

	public := e.Group("/v1/auth")
	public.Use(mw.RateLimit.Limit(ratelimit.ActionAuth))

	public.POST("/signup", authHandler.SignUp)
	public.POST("/verify", authHandler.VerifyEmail)
	public.POST("/verify/resend", authHandler.ResendVerification)
	public.POST("/signin", authHandler.SignIn)
	public.POST("/refresh", authHandler.Refresh)
	public.POST("/password/forgot", authHandler.ForgotPassword)
	public.POST("/password/reset", authHandler.ResetPassword)

	e.GET("/v1/auth/session", authHandler.Session, mw.Auth.Authenticate)
}
