package handler

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/middleware"
	"comoresmarket/internal/usecase"
	"comoresmarket/pkg/response"
	"comoresmarket/pkg/utils"
)

type ProfileHandler struct {
	profileUseCase *usecase.ProfileUseCase
}

func NewProfileHandler(profileUseCase *usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

type updateProfileRequest struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=80"`
	City        string `json:"city" validate:"max=80"`
	Island      string `json:"island" validate:"omitempty,island"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,km_phone"`
}

func (h *ProfileHandler) GetMe(c echo.Context) error {
	userID := c.Get("uid").(string)

	profile, err := h.profileUseCase.GetMe(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *ProfileHandler) UpdateMe(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)
	profile, err := h.profileUseCase.UpdateMe(c.Request().Context(), userID, usecase.UpdateProfileInput{
		FullName:    req.FullName,
		City:        req.City,
		Island:      req.Island,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	upload, err := openImage(c, "file")
	if err != nil {
		return response.Error(c, err)
	}
	defer upload.Close()

	userID := c.Get("uid").(string)
	profile, err := h.profileUseCase.UpdateAvatar(c.Request().Context(), userID, upload.file, upload.contentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *ProfileHandler) DeleteMe(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.profileUseCase.DeleteAccount(c.Request().Context(), userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Account deleted",
	})
}

func (h *ProfileHandler) GetSellerPage(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	page, err := h.profileUseCase.SellerPage(c.Request().Context(), c.Param("id"), pagination)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, page)
}

// ProOffer works for anonymous visitors too; signed-in users get their
// email in the prefilled activation message.
func (h *ProfileHandler) ProOffer(c echo.Context) error {
	offer, err := h.profileUseCase.ProOffer(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, offer)
}
