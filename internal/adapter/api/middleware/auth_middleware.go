package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/response"
)

// TokenVerifier checks Firebase ID tokens.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*entity.TokenInfo, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// bearerToken reads "Authorization: Bearer <token>", falling back to the
// token query parameter that browsers use for websocket upgrades.
func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	return c.QueryParam("token")
}

func (m *AuthMiddleware) verify(c echo.Context) (*entity.TokenInfo, error) {
	idToken := bearerToken(c)
	if idToken == "" {
		return nil, errors.Unauthorized("Authorization token is required", nil)
	}

	info, err := m.verifier.VerifyToken(c.Request().Context(), idToken)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}
	return info, nil
}

func setIdentity(c echo.Context, info *entity.TokenInfo) {
	c.Set("uid", info.UID)
	c.Set("email", info.Email)
	c.Set("email_verified", info.EmailVerified)
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		info, err := m.verify(c)
		if err != nil {
			return response.Error(c, err)
		}

		setIdentity(c, info)
		return next(c)
	}
}

// Optional identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (m *AuthMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if info, err := m.verify(c); err == nil {
			setIdentity(c, info)
		}
		return next(c)
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}

// VerifiedEmail returns the token email once its owner has proven it, or "".
func VerifiedEmail(c echo.Context) string {
	if verified, _ := c.Get("email_verified").(bool); !verified {
		return ""
	}
	email, _ := c.Get("email").(string)
	return email
}
