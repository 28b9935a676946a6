package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"comoresmarket/internal/usecase"
	"comoresmarket/pkg/response"
)

type SeoHandler struct {
	seoUseCase *usecase.SeoUseCase
}

func NewSeoHandler(seoUseCase *usecase.SeoUseCase) *SeoHandler {
	return &SeoHandler{
		seoUseCase: seoUseCase,
	}
}

func (h *SeoHandler) Sitemap(c echo.Context) error {
	body, err := h.seoUseCase.Sitemap(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	return c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, body)
}

func (h *SeoHandler) Robots(c echo.Context) error {
	return c.String(http.StatusOK, h.seoUseCase.Robots())
}

func (h *SeoHandler) Manifest(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/manifest+json")
	return c.JSON(http.StatusOK, h.seoUseCase.Manifest())
}
