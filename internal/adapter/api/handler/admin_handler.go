package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"comoresmarket/internal/domain/repository"
	"comoresmarket/internal/usecase"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/response"
	"comoresmarket/pkg/utils"
)

type AdminHandler struct {
	adminUseCase *usecase.AdminUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
	}
}

type toggleRequest struct {
	Value *bool `json:"value" validate:"required"`
}

func parseOptionalBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.BadRequest(name+" must be true or false", err)
	}
	return &value, nil
}

func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.adminUseCase.Stats(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	isPro, err := parseOptionalBool(c, "is_pro")
	if err != nil {
		return response.Error(c, err)
	}
	isBanned, err := parseOptionalBool(c, "is_banned")
	if err != nil {
		return response.Error(c, err)
	}
	pagination := utils.GetPaginationParams(c)

	users, total, err := h.adminUseCase.ListUsers(c.Request().Context(), repository.ProfileFilter{
		Query:    c.QueryParam("q"),
		IsPro:    isPro,
		IsBanned: isBanned,
	}, pagination)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, users, total, pagination.Page, pagination.PageSize)
}

func (h *AdminHandler) SetBanned(c echo.Context) error {
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	adminID := c.Get("uid").(string)
	profile, err := h.adminUseCase.SetBanned(c.Request().Context(), adminID, c.Param("id"), *req.Value)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *AdminHandler) SetPro(c echo.Context) error {
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	adminID := c.Get("uid").(string)
	profile, err := h.adminUseCase.SetPro(c.Request().Context(), adminID, c.Param("id"), *req.Value)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *AdminHandler) ListListings(c echo.Context) error {
	filter, err := productFilterFromQuery(c)
	if err != nil {
		return response.Error(c, err)
	}
	pagination := utils.GetPaginationParams(c)

	products, total, err := h.adminUseCase.ListListings(c.Request().Context(), filter, pagination)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, products, total, pagination.Page, pagination.PageSize)
}

func (h *AdminHandler) DeleteListing(c echo.Context) error {
	adminID := c.Get("uid").(string)

	if err := h.adminUseCase.DeleteListing(c.Request().Context(), adminID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Listing deleted",
	})
}

func (h *AdminHandler) ListReports(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	reports, total, err := h.adminUseCase.ListReports(c.Request().Context(), c.QueryParam("status"), pagination)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, reports, total, pagination.Page, pagination.PageSize)
}

func (h *AdminHandler) ResolveReport(c echo.Context) error {
	adminID := c.Get("uid").(string)

	report, err := h.adminUseCase.ResolveReport(c.Request().Context(), adminID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, report)
}
