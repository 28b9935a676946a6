package router

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/handler"
)

func SetupFavoriteRouter(e *echo.Echo, mw Middlewares) {
	favoriteHandler := handler.GetFavoriteHandler()

	favorites := e.Group("/v1/favorites")
	favorites.Use(mw.Auth.Authenticate)

	favorites.GET("", favoriteHandler.ListFavorites)
	favorites.POST("/:productId", favoriteHandler.AddFavorite)
	favorites.DELETE("/:productId", favoriteHandler.RemoveFavorite)
	favorites.GET("/:productId/status", favoriteHandler.FavoriteStatus)
}
