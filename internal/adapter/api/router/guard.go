package router

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/middleware"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/response"
)

// requireUser rejects anonymous requests on groups that use optional auth.
func requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if middleware.UserID(c) == "" {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}
		return next(c)
	}
}
