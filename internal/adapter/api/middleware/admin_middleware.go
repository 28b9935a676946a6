package middleware

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/logger"
	"comoresmarket/pkg/response"
)

// AdminChecker decides admin membership from an email address.
type AdminChecker interface {
	IsAdminEmail(email string) bool
}

type AdminMiddleware struct {
	profileRepo repository.ProfileRepository
	checker     AdminChecker
}

func NewAdminMiddleware(profileRepo repository.ProfileRepository, checker AdminChecker) *AdminMiddleware {
	return &AdminMiddleware{
		profileRepo: profileRepo,
		checker:     checker,
	}
}

// AdminOnly must run after Authenticate. Only verified emails count: the
// token email first, then the stored profile email for tokens minted before
// verification.
func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid := UserID(c)
		if uid == "" {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}

		if !m.checker.IsAdminEmail(VerifiedEmail(c)) {
			profile, err := m.profileRepo.GetByID(c.Request().Context(), uid)
			if err != nil && !errors.IsNotFound(err) {
				return response.Error(c, err)
			}
			if profile == nil || !profile.EmailVerified || !m.checker.IsAdminEmail(profile.Email) {
				logger.Warn("AdminOnly: access denied for %s", uid)
				return response.Error(c, errors.Forbidden("Admin privileges required", nil))
			}
		}

		return next(c)
	}
}
