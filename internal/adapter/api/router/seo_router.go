package router

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/handler"
)

func SetupSeoRouter(e *echo.Echo) {
	seoHandler := handler.GetSeoHandler()
	e.GET("/sitemap.xml", seoHandler.Sitemap)
	e.GET("/robots.txt", seoHandler.Robots)
	e.GET("/manifest.webmanifest", seoHandler.Manifest)
}
