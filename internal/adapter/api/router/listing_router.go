package router

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/handler"
)

func SetupListingRouter(e *echo.Echo, mw Middlewares) {
	listingHandler := handler.GetListingHandler()

	e.GET("/v1/categories", listingHandler.Categories)

	listings := e.Group("/v1/listings")
	listings.Use(mw.Auth.Optional)
	listings.Use(mw.RateLimit.General)
	listings.GET("", listingHandler.ListListings)
	listings.GET("/:id", listingHandler.GetListing)
	listings.POST("/:id/reports", listingHandler.ReportListing, requireUser)

	mine := e.Group("/v1/my-listings")
	mine.Use(mw.Auth.Authenticate)
	mine.Use(mw.RateLimit.General)
	mine.GET("", listingHandler.ListMyListings)
	mine.POST("", listingHandler.CreateListing)
	mine.GET("/stats", listingHandler.MyListingStats)
	mine.PUT("/:id", listingHandler.UpdateListing)
	mine.DELETE("/:id", listingHandler.DeleteListing)
	mine.GET("/:id/viewers", listingHandler.ListingViewers)
}
