package api

import (
	"github.com/go-playground/validator/v10"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/pkg/utils"
)

// CustomValidator plugs go-playground/validator into echo.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("km_phone", func(fl validator.FieldLevel) bool {
		_, ok := utils.NormalizeComorosPhone(fl.Field().String())
		return ok
	})
	v.RegisterValidation("island", func(fl validator.FieldLevel) bool {
		return entity.IsIsland(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
