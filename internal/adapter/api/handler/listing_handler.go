package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"comoresmarket/internal/adapter/api/middleware"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/internal/usecase"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/response"
	"comoresmarket/pkg/utils"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
	admins         middleware.AdminChecker
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase, admins middleware.AdminChecker) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
		admins:         admins,
	}
}

type listingRequest struct {
	Title          string   `json:"title" validate:"required,min=3,max=100"`
	Description    string   `json:"description" validate:"max=5000"`
	Price          int64    `json:"price" validate:"min=0"`
	Images         []string `json:"images" validate:"required,min=1,dive,required"`
	CategoryID     string   `json:"category_id" validate:"required"`
	SubCategory    string   `json:"sub_category"`
	Island         string   `json:"location_island" validate:"required,island"`
	City           string   `json:"location_city" validate:"max=80"`
	WhatsappNumber string   `json:"whatsapp_number" validate:"omitempty,km_phone"`
}

func (r listingRequest) input() usecase.ListingInput {
	return usecase.ListingInput{
		Title:          r.Title,
		Description:    r.Description,
		Price:          r.Price,
		Images:         r.Images,
		CategoryID:     r.CategoryID,
		SubCategory:    r.SubCategory,
		Island:         r.Island,
		City:           r.City,
		WhatsappNumber: r.WhatsappNumber,
	}
}

type reportRequest struct {
	Reason  string `json:"reason" validate:"required,max=200"`
	Details string `json:"details" validate:"max=2000"`
}

func (h *ListingHandler) actor(c echo.Context) usecase.Actor {
	return usecase.Actor{
		UserID:  c.Get("uid").(string),
		IsAdmin: h.admins != nil && h.admins.IsAdminEmail(middleware.VerifiedEmail(c)),
	}
}

// parsePrice reads an optional non-negative integer price filter.
func parsePrice(c echo.Context, name string) (int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, errors.BadRequest(name+" must be a non-negative integer", err)
	}
	return value, nil
}

func productFilterFromQuery(c echo.Context) (repository.ProductFilter, error) {
	minPrice, err := parsePrice(c, "min_price")
	if err != nil {
		return repository.ProductFilter{}, err
	}
	maxPrice, err := parsePrice(c, "max_price")
	if err != nil {
		return repository.ProductFilter{}, err
	}

	return repository.ProductFilter{
		CategoryID:  c.QueryParam("category_id"),
		SubCategory: c.QueryParam("sub_category"),
		Island:      c.QueryParam("island"),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		Query:       c.QueryParam("q"),
		UserID:      c.QueryParam("user_id"),
	}, nil
}

func (h *ListingHandler) Categories(c echo.Context) error {
	return response.Success(c, h.listingUseCase.Categories())
}

func (h *ListingHandler) ListListings(c echo.Context) error {
	filter, err := productFilterFromQuery(c)
	if err != nil {
		return response.Error(c, err)
	}
	pagination := utils.GetPaginationParams(c)

	products, total, err := h.listingUseCase.List(c.Request().Context(), filter, pagination)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, products, total, pagination.Page, pagination.PageSize)
}

func (h *ListingHandler) GetListing(c echo.Context) error {
	detail, err := h.listingUseCase.Get(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

func (h *ListingHandler) ReportListing(c echo.Context) error {
	var req reportRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)
	report, err := h.listingUseCase.Report(c.Request().Context(), userID, c.Param("id"), req.Reason, req.Details)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, report)
}

func (h *ListingHandler) ListMyListings(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	products, total, err := h.listingUseCase.ListMine(c.Request().Context(), userID, pagination)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, products, total, pagination.Page, pagination.PageSize)
}

func (h *ListingHandler) CreateListing(c echo.Context) error {
	var req listingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)
	product, err := h.listingUseCase.Create(c.Request().Context(), userID, req.input())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, product)
}

func (h *ListingHandler) UpdateListing(c echo.Context) error {
	var req listingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	product, err := h.listingUseCase.Update(c.Request().Context(), h.actor(c), c.Param("id"), req.input())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ListingHandler) DeleteListing(c echo.Context) error {
	if err := h.listingUseCase.Delete(c.Request().Context(), h.actor(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Listing deleted",
	})
}

func (h *ListingHandler) MyListingStats(c echo.Context) error {
	userID := c.Get("uid").(string)

	stats, err := h.listingUseCase.Stats(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}

func (h *ListingHandler) ListingViewers(c echo.Context) error {
	userID := c.Get("uid").(string)

	viewers, err := h.listingUseCase.Viewers(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, viewers)
}
