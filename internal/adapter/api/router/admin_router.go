package router

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/handler"
)

func SetupAdminRouter(e *echo.Echo, mw Middlewares) {
	adminHandler := handler.GetAdminHandler()

	admin := e.Group("/v1/admin")
	admin.Use(mw.Auth.Authenticate)
	admin.Use(mw.Admin.AdminOnly)

	admin.GET("/stats", adminHandler.Stats)

	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/ban", adminHandler.SetBanned)
	admin.PUT("/users/:id/pro", adminHandler.SetPro)

	admin.GET("/listings", adminHandler.ListListings)
	admin.DELETE("/listings/:id", adminHandler.DeleteListing)

	admin.GET("/reports", adminHandler.ListReports)
	admin.PUT("/reports/:id/resolve", adminHandler.ResolveReport)
}
